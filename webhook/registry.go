package webhook

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	graphmap "github.com/reoring/graphmap"
)

// Factory returns a fresh, zero-valued shape to decode into.
type Factory func() ChangeValue

// Registry maps discriminator keys to shapes. It is read-only once built.
type Registry struct {
	factories map[string]Factory
}

func shape[T any, PT interface {
	*T
	ChangeValue
}]() Factory {
	return func() ChangeValue { return PT(new(T)) }
}

func register(m map[string]Factory, f Factory, keys ...string) {
	for _, k := range keys {
		m[k] = f
	}
}

var defaultRegistry = &Registry{factories: builtinFactories()}

func builtinFactories() map[string]Factory {
	m := map[string]Factory{}

	// page feed
	register(m, shape[FeedAlbumValue](), "FEED_ALBUM_ADD", "FEED_ALBUM_EDIT", "FEED_ALBUM_EDITED")
	register(m, shape[FeedCommentValue](),
		"FEED_COMMENT_ADD", "FEED_COMMENT_EDIT", "FEED_COMMENT_EDITED",
		"FEED_COMMENT_HIDE", "FEED_COMMENT_UNHIDE", "FEED_COMMENT_REMOVE")
	register(m, shape[FeedEventValue](), "FEED_EVENT_ADD", "FEED_EVENT_REMOVE")
	register(m, shape[FeedLikeValue](), "FEED_LIKE_ADD", "FEED_LIKE_REMOVE")
	register(m, shape[FeedPhotoValue](),
		"FEED_PHOTO_ADD", "FEED_PHOTO_EDITED", "FEED_PHOTO_HIDE",
		"FEED_PHOTO_UNHIDE", "FEED_PHOTO_REMOVE")
	register(m, shape[FeedPostValue](),
		"FEED_POST_ADD", "FEED_POST_EDITED", "FEED_POST_HIDE",
		"FEED_POST_UNHIDE", "FEED_POST_REMOVE")
	register(m, shape[FeedReactionValue](), "FEED_REACTION_ADD", "FEED_REACTION_EDIT", "FEED_REACTION_REMOVE")
	register(m, shape[FeedShareValue](),
		"FEED_SHARE_ADD", "FEED_SHARE_EDITED", "FEED_SHARE_HIDE",
		"FEED_SHARE_UNHIDE", "FEED_SHARE_REMOVE")
	register(m, shape[FeedStatusValue](),
		"FEED_STATUS_ADD", "FEED_STATUS_EDITED", "FEED_STATUS_HIDE",
		"FEED_STATUS_UNHIDE", "FEED_STATUS_REMOVE")
	register(m, shape[FeedVideoValue](),
		"FEED_VIDEO_ADD", "FEED_VIDEO_EDITED", "FEED_VIDEO_HIDE",
		"FEED_VIDEO_UNHIDE", "FEED_VIDEO_REMOVE")
	register(m, shape[FeedVideoBlockMuteValue](), "FEED_VIDEO_BLOCK_MUTE")

	// page ratings
	register(m, shape[RatingsCommentValue](), "RATINGS_COMMENT_ADD", "RATINGS_COMMENT_EDIT", "RATINGS_COMMENT_REMOVE")
	register(m, shape[RatingsLikeValue](), "RATINGS_LIKE_ADD", "RATINGS_LIKE_REMOVE")
	register(m, shape[RatingsRatingValue](), "RATINGS_RATING_ADD", "RATINGS_RATING_EDIT", "RATINGS_RATING_REMOVE")
	register(m, shape[RatingsReactionValue](), "RATINGS_REACTION_ADD", "RATINGS_REACTION_EDIT", "RATINGS_REACTION_REMOVE")

	// other page fields
	register(m, shape[MentionValue](),
		"MENTION_POST_ADD", "MENTION_POST_REMOVE", "MENTION_COMMENT_ADD", "MENTION_COMMENT_REMOVE")
	register(m, shape[LeadgenValue](), "LEADGEN")
	register(m, shape[ConversationValue](), "CONVERSATIONS")
	register(m, shape[PageLocationValue](), "LOCATION")
	register(m, shape[PageProposalValue](), "PAGE_UPCOMING_CHANGE", "PAGE_CHANGE_PROPOSAL")

	// permissions collapse to the bare verb
	register(m, shape[PermissionChangeValue](), "GRANTED", "REVOKED")

	// instagram
	register(m, shape[InstagramCommentValue](), "COMMENTS", "LIVE_COMMENTS")
	register(m, shape[InstagramMentionValue](), "MENTIONS")
	register(m, shape[InstagramStoryInsightsValue](), "STORY_INSIGHTS")

	// whatsapp business account
	register(m, shape[WhatsappMessagesValue](), "MESSAGES_WHATSAPP")
	register(m, shape[WhatsappTemplateStatusValue](), "MESSAGE_TEMPLATE_STATUS_UPDATE")
	register(m, shape[WhatsappPhoneQualityValue](), "PHONE_NUMBER_QUALITY_UPDATE")
	register(m, shape[WhatsappPhoneNameValue](), "PHONE_NUMBER_NAME_UPDATE")

	// user, verb supplied by the change
	register(m, shape[UserObjectValue](),
		"PHOTOS_ADD", "PHOTOS_UPDATE", "PHOTOS_DELETE",
		"VIDEOS_ADD", "VIDEOS_UPDATE", "VIDEOS_DELETE",
		"LIKES_ADD", "LIKES_DELETE",
		"FEED_ADD", "FEED_UPDATE", "FEED_DELETE")
	return m
}

// DefaultRegistry returns the built-in shapes.
func DefaultRegistry() *Registry { return defaultRegistry }

// NewRegistry returns the built-in shapes plus extra. Entries in extra
// replace built-in ones with the same key.
func NewRegistry(extra map[string]Factory) *Registry {
	m := builtinFactories()
	maps.Copy(m, extra)
	return &Registry{factories: m}
}

// Lookup returns the factory registered under key.
func (r *Registry) Lookup(key string) (Factory, bool) {
	f, ok := r.factories[key]
	return f, ok
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Len reports the number of registered keys.
func (r *Registry) Len() int { return len(r.factories) }

// Validate checks that every registered shape has valid bindings.
func (r *Registry) Validate() error {
	var errs []error
	for _, k := range r.Keys() {
		cv := r.factories[k]()
		if cv == nil {
			errs = append(errs, fmt.Errorf("webhook: factory for %s returned nil", k))
			continue
		}
		if err := graphmap.Validate(cv); err != nil {
			errs = append(errs, fmt.Errorf("webhook: %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
