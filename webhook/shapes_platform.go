package webhook

import (
	"time"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// Instagram

type InstagramUser struct {
	ID       string `graph:"id"`
	Username string `graph:"username"`
}

type InstagramMedia struct {
	ID               string `graph:"id"`
	MediaProductType string `graph:"media_product_type"`
}

// InstagramCommentValue is COMMENTS and LIVE_COMMENTS.
type InstagramCommentValue struct {
	ChangeMeta
	ID       string          `graph:"id"`
	Text     string          `graph:"text"`
	ParentID string          `graph:"parent_id"`
	From     *InstagramUser  `graph:"from"`
	Media    *InstagramMedia `graph:"media"`
}

type InstagramMentionValue struct {
	ChangeMeta
	MediaID   string `graph:"media_id"`
	CommentID string `graph:"comment_id"`
}

type InstagramStoryInsightsValue struct {
	ChangeMeta
	MediaID     string `graph:"media_id"`
	Exits       int64  `graph:"exits"`
	Replies     int64  `graph:"replies"`
	Reach       int64  `graph:"reach"`
	TapsForward int64  `graph:"taps_forward"`
	TapsBack    int64  `graph:"taps_back"`
	Impressions int64  `graph:"impressions"`
}

// WhatsApp

type WhatsappMetadata struct {
	DisplayPhoneNumber string `graph:"display_phone_number"`
	PhoneNumberID      string `graph:"phone_number_id"`
}

type WhatsappContact struct {
	WaID    string `graph:"wa_id"`
	Profile struct {
		Name string `graph:"name"`
	} `graph:"profile"`
}

// WhatsappMessage is one inbound message. Bodies other than text stay raw
// under the key named by Type.
type WhatsappMessage struct {
	ID        string     `graph:"id"`
	From      string     `graph:"from"`
	Type      string     `graph:"type"`
	Timestamp time.Time  `graph:"timestamp"`
	Context   node.Value `graph:"context"`
	Text      struct {
		Body string `graph:"body"`
	} `graph:"text"`
	Image       node.Value `graph:"image"`
	Document    node.Value `graph:"document"`
	Interactive node.Value `graph:"interactive"`
	Reaction    node.Value `graph:"reaction"`
}

type WhatsappStatus struct {
	ID           string       `graph:"id"`
	RecipientID  string       `graph:"recipient_id"`
	Status       string       `graph:"status"`
	Timestamp    time.Time    `graph:"timestamp"`
	Conversation node.Value   `graph:"conversation"`
	Pricing      node.Value   `graph:"pricing"`
	Errors       []node.Value `graph:"errors"`
}

// WhatsappMessagesValue is MESSAGES_WHATSAPP: inbound messages and delivery
// statuses for a business phone number.
type WhatsappMessagesValue struct {
	ChangeMeta
	MessagingProduct string                         `graph:"messaging_product"`
	Metadata         WhatsappMetadata               `graph:"metadata"`
	Contacts         graphmap.List[WhatsappContact] `graph:"contacts"`
	Messages         graphmap.List[WhatsappMessage] `graph:"messages"`
	Statuses         graphmap.List[WhatsappStatus]  `graph:"statuses"`
	Errors           graphmap.List[node.Value]      `graph:"errors"`
}

type WhatsappTemplateStatusValue struct {
	ChangeMeta
	Event                   string `graph:"event"`
	MessageTemplateID       int64  `graph:"message_template_id"`
	MessageTemplateName     string `graph:"message_template_name"`
	MessageTemplateLanguage string `graph:"message_template_language"`
	Reason                  string `graph:"reason"`
}

type WhatsappPhoneQualityValue struct {
	ChangeMeta
	DisplayPhoneNumber string `graph:"display_phone_number"`
	Event              string `graph:"event"`
	CurrentLimit       string `graph:"current_limit"`
}

type WhatsappPhoneNameValue struct {
	ChangeMeta
	DisplayPhoneNumber    string `graph:"display_phone_number"`
	Decision              string `graph:"decision"`
	RequestedVerifiedName string `graph:"requested_verified_name"`
	RejectionReason       string `graph:"rejection_reason"`
}

// User family. These payloads carry no verb of their own; the verb sits next
// to the value in the change and is passed as the contextual verb.

type UserObjectValue struct {
	ChangeMeta
	ObjectID    string     `graph:"object_id"`
	RawCreated  node.Value `graph:"created_time"`
	CreatedTime time.Time  `graph:"-"`
}

func (v *UserObjectValue) MappingCompleted() error {
	v.CreatedTime = graphTime(v.RawCreated)
	return nil
}
