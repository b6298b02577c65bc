package webhook_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
	"github.com/reoring/graphmap/webhook"
)

func mustParse(t *testing.T, s string) node.Value {
	t.Helper()
	v, err := graphmap.ParseString(s)
	require.NoError(t, err)
	return v
}

func TestDiscriminatorKey(t *testing.T) {
	cases := []struct {
		field, payload, contextual, want string
	}{
		{"leadgen", `{}`, "", "LEADGEN"},
		{"feed", `{"item":"comment","verb":"add"}`, "", "FEED_COMMENT_ADD"},
		{"ratings", `{"item":"rating","verb":"remove"}`, "", "RATINGS_RATING_REMOVE"},
		{"permissions", `{"verb":"granted"}`, "", "GRANTED"},
		{"anything_else", `{"item":"x","verb":"revoked"}`, "update", "REVOKED"},
		{"photos", `{"object_id":"1"}`, "add", "PHOTOS_ADD"},
		{"feed", `{"item":"post","verb":"edited"}`, "update", "FEED_POST_EDITED_UPDATE"},
		{"messages", `{"messaging_product":"whatsapp"}`, "", "MESSAGES_WHATSAPP"},
		{"feed", `{"item":"","verb":"add"}`, "", "FEED_ADD"},
	}
	for _, tc := range cases {
		got := webhook.DiscriminatorKey(tc.field, mustParse(t, tc.payload), tc.contextual)
		assert.Equal(t, tc.want, got, "%s %s", tc.field, tc.payload)
	}
}

func TestResolve_PermissionOverride(t *testing.T) {
	for _, field := range []string{"permissions", "feed", "x"} {
		cv, err := webhook.Resolve(field, mustParse(t, `{"verb":"granted","target_ids":["1","2"]}`), "")
		require.NoError(t, err)
		assert.Equal(t, "GRANTED", cv.ChangeKey())
		pc, ok := cv.(*webhook.PermissionChangeValue)
		require.True(t, ok, "%T", cv)
		assert.True(t, pc.Granted())
		assert.Equal(t, []string{"1", "2"}, pc.TargetIDs.Items())
	}
}

func TestResolve_StringsAndArrays(t *testing.T) {
	cv, err := webhook.Resolve("name", mustParse(t, `"New Name"`), "")
	require.NoError(t, err)
	sv, ok := cv.(*webhook.StringValue)
	require.True(t, ok)
	assert.Equal(t, "New Name", sv.Value)
	assert.Equal(t, "NAME", sv.ChangeKey())

	cv, err = webhook.Resolve("emails", mustParse(t, `[{"a":1},"b"]`), "")
	require.NoError(t, err)
	lv, ok := cv.(*webhook.ListValue)
	require.True(t, ok)
	assert.Equal(t, 2, lv.Items.Len())
	assert.Equal(t, `{"a":1}`, lv.Items.At(0).String())

	cv, err = webhook.Resolve("count", mustParse(t, `3`), "")
	require.NoError(t, err)
	fb, ok := cv.(*webhook.FallbackValue)
	require.True(t, ok)
	assert.Equal(t, node.KindNumber, fb.Raw.Kind())
}

func TestResolve_UnknownFallsBackAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, nil))
	r := webhook.NewResolver(webhook.WithLogger(lg))

	payload := mustParse(t, `{"verb":"new_unseen_verb","x":[1]}`)
	for i := 0; i < 3; i++ {
		cv, err := r.Resolve("future_feature", payload, "")
		require.NoError(t, err)
		fb, ok := cv.(*webhook.FallbackValue)
		require.True(t, ok)
		assert.Equal(t, "FUTURE_FEATURE_NEW_UNSEEN_VERB", fb.ChangeKey())
		assert.True(t, node.Equal(payload, fb.Raw))
		x, ok := fb.Get("x")
		require.True(t, ok)
		assert.Equal(t, 1, x.Len())
	}
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "level=WARN"), out)
	assert.Contains(t, out, "key=FUTURE_FEATURE_NEW_UNSEEN_VERB")
	assert.Contains(t, out, `new_unseen_verb`)
}

func TestResolve_FeedComment(t *testing.T) {
	raw := mustParse(t, `{
		"from":{"id":"44","name":"Someone"},
		"item":"comment","verb":"add",
		"comment_id":"1_2","post_id":"1_1","parent_id":"1_1",
		"message":"nice","created_time":1336077726,"published":1,
		"post":{"status_type":"added_photos"}
	}`)
	cv, err := webhook.Resolve("feed", raw, "")
	require.NoError(t, err)
	c, ok := cv.(*webhook.FeedCommentValue)
	require.True(t, ok, "%T", cv)
	assert.Equal(t, "FEED_COMMENT_ADD", c.ChangeKey())
	assert.Equal(t, "1_2", c.CommentID)
	assert.Equal(t, "nice", c.Message)
	assert.Equal(t, "Someone", c.From.Name)
	assert.False(t, c.IsReply())
	assert.True(t, c.IsPublished())
	assert.True(t, c.CreatedTime.Equal(time.Date(2012, 5, 3, 20, 42, 6, 0, time.UTC)))
	assert.Equal(t, node.KindObject, c.Post.Kind())
}

func TestFeedComment_RoundTrip(t *testing.T) {
	raw := mustParse(t, `{
		"from":{"id":"44","name":"Someone"},
		"item":"comment","verb":"edited",
		"comment_id":"1_3","post_id":"1_1","parent_id":"1_2",
		"message":"edited","created_time":1336077726,"published":0,
		"is_hidden":true,"post":{"status_type":"added_photos","id":"1_1"}
	}`)
	cv, err := webhook.Resolve("feed", raw, "")
	require.NoError(t, err)
	c, ok := cv.(*webhook.FeedCommentValue)
	require.True(t, ok, "%T", cv)

	encoded, err := graphmap.Encode(c)
	require.NoError(t, err)
	back, err := webhook.Resolve("feed", encoded, "")
	require.NoError(t, err)
	again, ok := back.(*webhook.FeedCommentValue)
	require.True(t, ok, "%T", back)

	assert.Equal(t, c.ChangeKey(), again.ChangeKey())
	assert.Equal(t, c.From, again.From)
	assert.Equal(t, c.Item, again.Item)
	assert.Equal(t, c.Verb, again.Verb)
	assert.Equal(t, c.PostID, again.PostID)
	assert.Equal(t, c.ParentID, again.ParentID)
	assert.Equal(t, c.CommentID, again.CommentID)
	assert.Equal(t, c.Message, again.Message)
	assert.Equal(t, c.IsHidden, again.IsHidden)
	assert.True(t, again.IsReply())
	assert.False(t, again.IsPublished())
	assert.True(t, c.CreatedTime.Equal(again.CreatedTime))
	assert.True(t, node.Equal(c.Post, again.Post))
}

func TestResolve_RatingAndLeadgen(t *testing.T) {
	cv, err := webhook.Resolve("ratings", mustParse(t, `{"item":"rating","verb":"add","rating":5,"review_text":"good","reviewer_id":"9","created_time":"2012-05-03T20:42:06+0000"}`), "")
	require.NoError(t, err)
	rv, ok := cv.(*webhook.RatingsRatingValue)
	require.True(t, ok, "%T", cv)
	assert.Equal(t, 5, rv.Rating)
	assert.True(t, rv.IsPositive())
	assert.False(t, rv.CreatedTime.IsZero())

	cv, err = webhook.Resolve("leadgen", mustParse(t, `{"ad_id":"1","form_id":"2","leadgen_id":"3","page_id":"4","created_time":1336077726}`), "")
	require.NoError(t, err)
	lv, ok := cv.(*webhook.LeadgenValue)
	require.True(t, ok, "%T", cv)
	assert.Equal(t, "LEADGEN", lv.ChangeKey())
	assert.Equal(t, "3", lv.LeadgenID)
	assert.Equal(t, int64(1336077726), lv.CreatedTime.Unix())
}

func TestResolve_RegisteredShapeMismatchPropagates(t *testing.T) {
	_, err := webhook.Resolve("ratings", mustParse(t, `{"item":"rating","verb":"add","rating":{"stars":5}}`), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, graphmap.ErrTypeMismatch)
	e, _ := graphmap.AsError(err)
	assert.Equal(t, "rating", e.Path)
}

const userNotification = `{
  "object": "user",
  "entry": [{
    "id": "100", "uid": "100", "time": 1336077726,
    "changes": [
      {"field": "photos", "verb": "add", "value": {"object_id": "77", "created_time": 1336077726}},
      {"field": "name", "value": "Renamed"}
    ]
  }]
}`

func TestParseNotification_UserUsesContextualVerb(t *testing.T) {
	n, err := webhook.ParseNotification([]byte(userNotification))
	require.NoError(t, err)
	assert.Equal(t, "user", n.Object)
	require.Equal(t, 1, n.Entries.Len())
	e := n.Entries.At(0)
	assert.Equal(t, int64(1336077726), e.Time.Unix())
	require.Equal(t, 2, e.Changes.Len())

	photo, ok := e.Changes.At(0).Value.(*webhook.UserObjectValue)
	require.True(t, ok, "%T", e.Changes.At(0).Value)
	assert.Equal(t, "PHOTOS_ADD", photo.ChangeKey())
	assert.Equal(t, "77", photo.ObjectID)

	name, ok := e.Changes.At(1).Value.(*webhook.StringValue)
	require.True(t, ok)
	assert.Equal(t, "Renamed", name.Value)
}

func TestParseNotification_PageIgnoresSiblingVerb(t *testing.T) {
	in := `{"object":"page","entry":[{"id":"1","time":1336077726,"changes":[
		{"field":"feed","verb":"update","value":{"item":"post","verb":"add","post_id":"1_2","message":"hi"}},
		{"field":"brand_new","value":{"x":1}}
	]}]}`
	n, err := webhook.NewResolver(webhook.WithLogger(slog.New(slog.DiscardHandler))).ParseNotification([]byte(in))
	require.NoError(t, err)
	changes := n.Entries.At(0).Changes
	post, ok := changes.At(0).Value.(*webhook.FeedPostValue)
	require.True(t, ok, "%T", changes.At(0).Value)
	assert.Equal(t, "hi", post.Message)
	_, ok = changes.At(1).Value.(*webhook.FallbackValue)
	assert.True(t, ok, "one unknown change must not fail the batch")
}

func TestParseNotification_WhatsApp(t *testing.T) {
	in := `{"object":"whatsapp_business_account","entry":[{"id":"W","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"metadata":{"display_phone_number":"15550000000","phone_number_id":"P"},
		"contacts":[{"profile":{"name":"Kerry"},"wa_id":"16315551234"}],
		"messages":[{"from":"16315551234","id":"wamid.1","timestamp":"1336077726","text":{"body":"hello"},"type":"text"}]
	}}]}]}`
	n, err := webhook.ParseNotification([]byte(in))
	require.NoError(t, err)
	v, ok := n.Entries.At(0).Changes.At(0).Value.(*webhook.WhatsappMessagesValue)
	require.True(t, ok, "%T", n.Entries.At(0).Changes.At(0).Value)
	assert.Equal(t, "P", v.Metadata.PhoneNumberID)
	assert.Equal(t, "Kerry", v.Contacts.At(0).Profile.Name)
	msg := v.Messages.At(0)
	assert.Equal(t, "hello", msg.Text.Body)
	assert.Equal(t, int64(1336077726), msg.Timestamp.Unix())
}

func TestParseNotification_ErrorPathIsRebased(t *testing.T) {
	in := `{"object":"page","entry":[{"id":"1","changes":[
		{"field":"feed","value":{"item":"comment","verb":"add","comment_id":"ok"}},
		{"field":"ratings","value":{"item":"rating","verb":"add","rating":[{}]}}
	]}]}`
	n, err := webhook.ParseNotification([]byte(in))
	require.NoError(t, err)
	ch := n.Entries.At(0).Changes.At(1)
	require.Error(t, ch.Err)
	e, ok := graphmap.AsError(ch.Err)
	require.True(t, ok)
	assert.Equal(t, "entry[0].changes[1].value.rating", e.Path)
	assert.NoError(t, n.Entries.At(0).Changes.At(0).Err)
}

func TestParseNotification_BadChangeFallsBack(t *testing.T) {
	in := `{"object":"page","entry":[{"id":"1","changes":[
		{"field":"feed","value":{"item":"comment","verb":"add","comment_id":{"bad":1}}},
		{"field":"feed","value":{"item":"reaction","verb":"add","reaction_type":"like","post_id":"1_9"}},
		{"field":"mystery","value":{"a":1}}
	]}]}`
	n, err := webhook.ParseNotification([]byte(in))
	require.NoError(t, err)
	changes := n.Entries.At(0).Changes
	require.Equal(t, 3, changes.Len())

	bad := changes.At(0)
	assert.ErrorIs(t, bad.Err, graphmap.ErrTypeMismatch)
	e, ok := graphmap.AsError(bad.Err)
	require.True(t, ok)
	assert.Equal(t, "entry[0].changes[0].value.comment_id", e.Path)
	fb, ok := bad.Value.(*webhook.FallbackValue)
	require.True(t, ok, "%T", bad.Value)
	assert.Equal(t, "FEED_COMMENT_ADD", fb.ChangeKey())
	id, ok := fb.Get("comment_id")
	require.True(t, ok)
	assert.Equal(t, node.KindObject, id.Kind())

	reaction, ok := changes.At(1).Value.(*webhook.FeedReactionValue)
	require.True(t, ok, "%T", changes.At(1).Value)
	assert.Equal(t, "like", reaction.ReactionType)
	assert.NoError(t, changes.At(1).Err)

	_, ok = changes.At(2).Value.(*webhook.FallbackValue)
	assert.True(t, ok)
	assert.NoError(t, changes.At(2).Err)

	var n2 webhook.Notification
	require.NoError(t, graphmap.Unmarshal([]byte(in), &n2))
	err = webhook.NewResolver().ResolveAll(&n2)
	assert.ErrorIs(t, err, graphmap.ErrTypeMismatch)
	assert.NotNil(t, n2.Entries.At(0).Changes.At(1).Value)
}

func TestParseNotification_Messaging(t *testing.T) {
	in := `{"object":"page","entry":[{"id":"1","time":1336077726,"messaging":[
		{"sender":{"id":"S"},"recipient":{"id":"R"},"timestamp":1336077726000,"message":{"mid":"m1","text":"yo"}}
	]}]}`
	n, err := webhook.ParseNotification([]byte(in))
	require.NoError(t, err)
	m := n.Entries.At(0).Messaging.At(0)
	assert.Equal(t, "S", m.Sender.ID)
	assert.Equal(t, int64(1336077726), m.Time.Unix())
	text, _ := m.Message.Get("text")
	assert.Equal(t, `"yo"`, text.String())
}

func TestRegistry(t *testing.T) {
	reg := webhook.DefaultRegistry()
	assert.GreaterOrEqual(t, reg.Len(), 60)
	require.NoError(t, reg.Validate())
	for _, k := range []string{"FEED_COMMENT_ADD", "RATINGS_RATING_REMOVE", "LEADGEN", "GRANTED", "REVOKED", "MESSAGES_WHATSAPP"} {
		_, ok := reg.Lookup(k)
		assert.True(t, ok, k)
	}
	keys := reg.Keys()
	assert.IsIncreasing(t, keys)
}

type customValue struct {
	webhook.ChangeMeta
	Foo string `graph:"foo"`
}

func TestRegistry_Extend(t *testing.T) {
	reg := webhook.NewRegistry(map[string]webhook.Factory{
		"FUTURE_FEATURE": func() webhook.ChangeValue { return &customValue{} },
	})
	r := webhook.NewResolver(webhook.WithRegistry(reg))
	cv, err := r.Resolve("future_feature", mustParse(t, `{"foo":"bar"}`), "")
	require.NoError(t, err)
	c, ok := cv.(*customValue)
	require.True(t, ok, "%T", cv)
	assert.Equal(t, "bar", c.Foo)
	assert.Equal(t, "FUTURE_FEATURE", c.ChangeKey())

	_, builtin := webhook.DefaultRegistry().Lookup("FUTURE_FEATURE")
	assert.False(t, builtin)
}
