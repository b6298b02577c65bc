package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphmap "github.com/reoring/graphmap"
)

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "LANG", "DRIVER", "ON_DUPLICATE_KEY", "MAX_DEPTH", "MAX_BYTES", "STRICT_NUMBERS", "LOG_UNKNOWN_KEYS"} {
		t.Setenv("GRAPHMAP_"+k, "")
	}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &app{stdin: strings.NewReader(stdin), stdout: out, stderr: errOut}, out, errOut
}

func noEnv(t *testing.T) string { return filepath.Join(t.TempDir(), "none.env") }

func TestClassifyCmd(t *testing.T) {
	a, out, _ := newTestApp(t, `{"error":{"type":"OAuthException","message":"bad token","code":190}}`)
	require.NoError(t, a.classifyCmd([]string{"-env", noEnv(t), "-status", "400"}))
	assert.JSONEq(t, `{
		"shape":"modern","kind":"oauth","type":"OAuthException","code":190,"status":400,
		"message":"bad token",
		"error":"graph: oauth error OAuthException (code 190) [HTTP 400]: bad token"
	}`, out.String())

	a, out, _ = newTestApp(t, `{"data":[]}`)
	require.NoError(t, a.classifyCmd([]string{"-env", noEnv(t)}))
	assert.JSONEq(t, `{"shape":"none"}`, out.String())
}

func TestClassifyCmd_YAMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"error_code":4,"error_msg":"limit"}`), 0o644))

	a, out, _ := newTestApp(t, "")
	require.NoError(t, a.classifyCmd([]string{"-env", noEnv(t), "-format", "yaml", path}))
	s := out.String()
	assert.Contains(t, s, "shape: legacy_rest")
	assert.Contains(t, s, "kind: response_status")
	assert.Contains(t, s, "transient: true")
	assert.Contains(t, s, "retryable: true")
}

func TestClassifyCmd_BadFormat(t *testing.T) {
	a, _, _ := newTestApp(t, "{}")
	err := a.classifyCmd([]string{"-env", noEnv(t), "-format", "toml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}

const notification = `{"object":"page","entry":[{"id":"10","time":1600000000,"changes":[
	{"field":"feed","value":{"item":"comment","verb":"add","comment_id":"1_2","post_id":"1_1","message":"hi"}},
	{"field":"mystery","value":{"a":1}}
]}]}`

func TestWebhookCmd(t *testing.T) {
	a, out, errOut := newTestApp(t, notification)
	require.NoError(t, a.webhookCmd([]string{"-env", noEnv(t)}))

	var rep webhookReport
	require.NoError(t, graphmap.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "page", rep.Object)
	require.Len(t, rep.Changes, 2)

	c := rep.Changes[0]
	assert.Equal(t, "10", c.Entry)
	assert.Equal(t, "FEED_COMMENT_ADD", c.Key)
	assert.Equal(t, "FeedCommentValue", c.Shape)
	id, ok := c.Value.Get("comment_id")
	require.True(t, ok)
	assert.Equal(t, `"1_2"`, id.String())

	assert.Equal(t, "FallbackValue", rep.Changes[1].Shape)
	assert.Equal(t, "MYSTERY", rep.Changes[1].Key)
	assert.Contains(t, errOut.String(), "MYSTERY", "unmatched keys are logged")
}

func TestWebhookCmd_Dump(t *testing.T) {
	a, out, _ := newTestApp(t, notification)
	require.NoError(t, a.webhookCmd([]string{"-env", noEnv(t), "-dump"}))
	assert.Contains(t, out.String(), "CommentID")
	assert.Contains(t, out.String(), "1_2")
}

func TestWebhookCmd_ChangeError(t *testing.T) {
	body := `{"object":"page","entry":[{"id":"1","changes":[
		{"field":"ratings","value":{"item":"rating","verb":"add","rating":{"stars":5}}},
		{"field":"feed","value":{"item":"comment","verb":"add","comment_id":"1_2"}}
	]}]}`
	a, out, errOut := newTestApp(t, body)
	require.NoError(t, a.webhookCmd([]string{"-env", noEnv(t)}))

	var rep webhookReport
	require.NoError(t, graphmap.Unmarshal(out.Bytes(), &rep))
	require.Len(t, rep.Changes, 2)
	assert.Equal(t, "FallbackValue", rep.Changes[0].Shape)
	assert.Equal(t, "RATINGS_RATING_ADD", rep.Changes[0].Key)
	assert.Contains(t, rep.Changes[0].Error, "entry[0].changes[0].value.rating")
	assert.Equal(t, "FeedCommentValue", rep.Changes[1].Shape)
	assert.Empty(t, rep.Changes[1].Error)
	assert.Contains(t, errOut.String(), "entry[0].changes[0].value.rating")
}

func TestWebhookCmd_BadEnvelope(t *testing.T) {
	a, _, _ := newTestApp(t, `{"object":["page"],"entry":[]}`)
	err := a.webhookCmd([]string{"-env", noEnv(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, graphmap.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "object")
}

func TestFmtCmd(t *testing.T) {
	a, out, _ := newTestApp(t, `{ "b" : 1, "a" : [true, null] }`)
	require.NoError(t, a.fmtCmd([]string{"-env", noEnv(t)}))
	assert.Equal(t, "{\"b\":1,\"a\":[true,null]}\n", out.String())

	a, out, _ = newTestApp(t, `{"b":1,"a":"x"}`)
	require.NoError(t, a.fmtCmd([]string{"-env", noEnv(t), "-format", "yaml"}))
	assert.Equal(t, "b: 1\na: x\n", out.String())
}

func TestFmtCmd_DepthFromEnv(t *testing.T) {
	a, _, _ := newTestApp(t, `[[[1]]]`)
	t.Setenv("GRAPHMAP_MAX_DEPTH", "2")
	err := a.fmtCmd([]string{"-env", noEnv(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, graphmap.ErrMalformedPayload)
}

func TestSchemaCmd(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	require.NoError(t, a.schemaCmd([]string{"-env", noEnv(t)}))
	var keys []string
	require.NoError(t, graphmap.Unmarshal(out.Bytes(), &keys))
	assert.Contains(t, keys, "FEED_COMMENT_ADD")

	a, out, _ = newTestApp(t, "")
	require.NoError(t, a.schemaCmd([]string{"-env", noEnv(t), "FEED_COMMENT_ADD"}))
	v, err := graphmap.Parse(out.Bytes())
	require.NoError(t, err)
	ref, ok := v.Get("$ref")
	require.True(t, ok)
	assert.Equal(t, `"#/$defs/webhook.FeedCommentValue"`, ref.String())

	a, _, _ = newTestApp(t, "")
	assert.Error(t, a.schemaCmd([]string{"-env", noEnv(t), "NOPE"}))
}
