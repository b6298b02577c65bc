package webhook

import (
	"time"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

type ratingsBase struct {
	ChangeMeta
	Item             string     `graph:"item"`
	Verb             string     `graph:"verb"`
	OpenGraphStoryID string     `graph:"open_graph_story_id"`
	ReviewerID       string     `graph:"reviewer_id"`
	ReviewerName     string     `graph:"reviewer_name"`
	RawCreated       node.Value `graph:"created_time"`
	CreatedTime      time.Time  `graph:"-"`
}

func (b *ratingsBase) MappingCompleted() error {
	b.CreatedTime = graphTime(b.RawCreated)
	return nil
}

type RatingsCommentValue struct {
	ratingsBase
	CommentID string `graph:"comment_id"`
	ParentID  string `graph:"parent_id"`
	Message   string `graph:"message"`
}

type RatingsLikeValue struct {
	ratingsBase
	ParentID string `graph:"parent_id"`
}

// RatingsRatingValue is a page review. Rating is the legacy star count; newer
// reviews carry RecommendationType instead.
type RatingsRatingValue struct {
	ratingsBase
	Rating             int    `graph:"rating"`
	ReviewText         string `graph:"review_text"`
	RecommendationType string `graph:"recommendation_type"`
}

// IsPositive reports a positive recommendation or a rating of 4 or more.
func (v *RatingsRatingValue) IsPositive() bool {
	if v.RecommendationType != "" {
		return v.RecommendationType == "positive"
	}
	return v.Rating >= 4
}

type RatingsReactionValue struct {
	ratingsBase
	ReactionType string `graph:"reaction_type"`
	ParentID     string `graph:"parent_id"`
}

// MentionValue is a page mention in a post or a comment.
type MentionValue struct {
	ChangeMeta
	Item       string `graph:"item"`
	Verb       string `graph:"verb"`
	PostID     string `graph:"post_id"`
	CommentID  string `graph:"comment_id"`
	SenderID   string `graph:"sender_id"`
	SenderName string `graph:"sender_name"`
	Message    string `graph:"message"`
}

// LeadgenValue announces a new lead form submission.
type LeadgenValue struct {
	ChangeMeta
	AdID        string     `graph:"ad_id"`
	AdgroupID   string     `graph:"adgroup_id"`
	FormID      string     `graph:"form_id"`
	LeadgenID   string     `graph:"leadgen_id"`
	PageID      string     `graph:"page_id"`
	RawCreated  node.Value `graph:"created_time"`
	CreatedTime time.Time  `graph:"-"`
}

func (v *LeadgenValue) MappingCompleted() error {
	v.CreatedTime = graphTime(v.RawCreated)
	return nil
}

type ConversationValue struct {
	ChangeMeta
	PageID   string `graph:"page_id"`
	ThreadID string `graph:"thread_id"`
}

// PermissionChangeValue is keyed GRANTED or REVOKED regardless of the field.
type PermissionChangeValue struct {
	ChangeMeta
	Verb      string                `graph:"verb"`
	TargetIDs graphmap.List[string] `graph:"target_ids"`
}

// Granted reports whether the permission was granted rather than revoked.
func (v *PermissionChangeValue) Granted() bool { return v.Verb == verbGranted }

type PageLocationValue struct {
	ChangeMeta
	Street    string  `graph:"street"`
	City      string  `graph:"city"`
	State     string  `graph:"state"`
	Zip       string  `graph:"zip"`
	Country   string  `graph:"country"`
	Latitude  float64 `graph:"latitude"`
	Longitude float64 `graph:"longitude"`
}

// PageProposalValue is a page_upcoming_change or page_change_proposal
// notification. ProposedValue and CurrentValue vary by field and stay raw.
type PageProposalValue struct {
	ChangeMeta
	ID             string     `graph:"id"`
	Field          string     `graph:"field"`
	Proposal       node.Value `graph:"proposal"`
	ProposedValue  node.Value `graph:"proposed_value"`
	CurrentValue   node.Value `graph:"current_value"`
	Category       string     `graph:"category"`
	RawProcessTime node.Value `graph:"process_time"`
	ProcessTime    time.Time  `graph:"-"`
}

func (v *PageProposalValue) MappingCompleted() error {
	v.ProcessTime = graphTime(v.RawProcessTime)
	return nil
}
