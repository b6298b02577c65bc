package webhook

import (
	"time"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/codec"
	"github.com/reoring/graphmap/node"
)

// From identifies the actor of a change.
type From struct {
	ID   string `graph:"id"`
	Name string `graph:"name"`
}

// graphTime reads created_time, which arrives either as unix seconds or as a
// graph timestamp string. Unreadable values yield the zero time.
func graphTime(v node.Value) time.Time {
	switch v.Kind() {
	case node.KindNumber:
		n, _ := v.Num()
		if secs, err := n.Int64(); err == nil {
			return codec.UnixTime(secs)
		}
	case node.KindString:
		s, _ := v.Str()
		if t, err := codec.ParseTime(s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type feedBase struct {
	ChangeMeta
	From        *From      `graph:"from"`
	Item        string     `graph:"item"`
	Verb        string     `graph:"verb"`
	PostID      string     `graph:"post_id"`
	ParentID    string     `graph:"parent_id"`
	Published   node.Value `graph:"published"`
	RawCreated  node.Value `graph:"created_time"`
	CreatedTime time.Time  `graph:"-"`
}

func (b *feedBase) MappingCompleted() error {
	b.CreatedTime = graphTime(b.RawCreated)
	return nil
}

// IsPublished reports the published flag, sent either as 0/1 or as a boolean.
// An absent flag counts as published.
func (b *feedBase) IsPublished() bool {
	switch b.Published.Kind() {
	case node.KindBool:
		v, _ := b.Published.Bool()
		return v
	case node.KindNumber:
		n, _ := b.Published.Num()
		return n != "0"
	}
	return true
}

// FeedAlbumValue is FEED_ALBUM_ADD and FEED_ALBUM_EDIT.
type FeedAlbumValue struct {
	feedBase
	AlbumID string `graph:"album_id"`
	Message string `graph:"message"`
}

// FeedCommentValue covers comment add, edit, hide, unhide and remove.
type FeedCommentValue struct {
	feedBase
	CommentID string     `graph:"comment_id"`
	Message   string     `graph:"message"`
	Photo     string     `graph:"photo"`
	Video     string     `graph:"video"`
	IsHidden  bool       `graph:"is_hidden"`
	Post      node.Value `graph:"post"`
}

// IsReply reports whether the comment answers another comment rather than
// the post itself.
func (v *FeedCommentValue) IsReply() bool { return v.ParentID != "" && v.ParentID != v.PostID }

type FeedEventValue struct {
	feedBase
	EventID   string `graph:"event_id"`
	Message   string `graph:"message"`
	StoryFbid string `graph:"story_fbid"`
}

type FeedLikeValue struct {
	feedBase
	UserID string `graph:"user_id"`
}

// FeedPhotoValue covers photo add, edit, hide, unhide and remove.
type FeedPhotoValue struct {
	feedBase
	PhotoID string                `graph:"photo_id"`
	Link    string                `graph:"link"`
	Message string                `graph:"message"`
	Photos  graphmap.List[string] `graph:"photos"`
}

// FeedPostValue covers post add, edit, hide, unhide and remove.
type FeedPostValue struct {
	feedBase
	Message     string                `graph:"message"`
	Link        string                `graph:"link"`
	Photos      graphmap.List[string] `graph:"photos"`
	IsHidden    bool                  `graph:"is_hidden"`
	RecipientID string                `graph:"recipient_id"`
	StatusType  string                `graph:"status_type"`
	MessageTags node.Value            `graph:"message_tags"`
}

type FeedReactionValue struct {
	feedBase
	ReactionType string `graph:"reaction_type"`
	CommentID    string `graph:"comment_id"`
}

type FeedShareValue struct {
	feedBase
	ShareID string `graph:"share_id"`
	Link    string `graph:"link"`
	Message string `graph:"message"`
}

type FeedStatusValue struct {
	feedBase
	Message  string                `graph:"message"`
	Photos   graphmap.List[string] `graph:"photos"`
	IsHidden bool                  `graph:"is_hidden"`
}

type FeedVideoValue struct {
	feedBase
	VideoID  string                `graph:"video_id"`
	Link     string                `graph:"link"`
	Message  string                `graph:"message"`
	Videos   graphmap.List[string] `graph:"videos"`
	IsHidden bool                  `graph:"is_hidden"`
}

// FeedVideoBlockMuteValue reports a copyright block that muted part of a video.
type FeedVideoBlockMuteValue struct {
	feedBase
	VideoID     string `graph:"video_id"`
	BlockLength int    `graph:"block_length"`
	Reason      string `graph:"reason"`
}
