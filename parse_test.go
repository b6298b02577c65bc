package graphmap_test

import (
	"errors"
	"strings"
	"testing"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
	drvjson "github.com/reoring/graphmap/source/json"
)

func TestParse_PreservesOrderAndRoundTrips(t *testing.T) {
	in := `{"id":"123_456","message":"hi","likes":{"data":[],"summary":{"total_count":3}},"created_time":"2012-05-03T20:42:06+0000"}`
	v, err := graphmap.ParseString(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := graphmap.Stringify(v); got != in {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", got, in)
	}
	obj, _ := v.Object()
	if keys := strings.Join(obj.Keys(), ","); keys != "id,message,likes,created_time" {
		t.Fatalf("key order: %s", keys)
	}
}

func TestParse_NumbersKeepLiteralText(t *testing.T) {
	v, err := graphmap.ParseString(`[12345678901234567890, 1.50, -0, 2e3]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"12345678901234567890", "1.50", "-0", "2e3"}
	for i, w := range want {
		n, ok := v.Index(i).Num()
		if !ok || string(n) != w {
			t.Fatalf("element %d: got %q want %q", i, n, w)
		}
	}
}

func TestParse_MalformedIsTyped(t *testing.T) {
	cases := []string{``, `{`, `{"a":}`, `[1,]`, `{"a":1} x`, `nul`, `"\x"`}
	for _, in := range cases {
		_, err := graphmap.ParseString(in)
		if err == nil {
			t.Fatalf("%q: expected error", in)
		}
		if !errors.Is(err, graphmap.ErrMalformedPayload) {
			t.Fatalf("%q: expected malformed payload, got %v", in, err)
		}
		e, ok := graphmap.AsError(err)
		if !ok || e.Code != graphmap.CodeMalformedPayload {
			t.Fatalf("%q: expected *Error with malformed code, got %#v", in, err)
		}
	}
}

func TestParse_SingleQuoteEscape(t *testing.T) {
	v, err := graphmap.ParseString(`{"msg":"it\'s"}`, graphmap.ParseOpt{Driver: graphmap.BuiltinDriver()})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, _ := v.Get("msg")
	if s, _ := got.Str(); s != "it's" {
		t.Fatalf("got %q", s)
	}
}

func TestParse_DuplicateKey_Error(t *testing.T) {
	opt := graphmap.ParseOpt{OnDuplicateKey: graphmap.SeverityError}
	_, err := graphmap.ParseString(`[{"a":1,"a":2}]`, opt)
	e, ok := graphmap.AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Code != graphmap.CodeDuplicateKey || e.Path != "[0].a" {
		t.Fatalf("unexpected error: code=%s path=%s", e.Code, e.Path)
	}
}

func TestParse_DuplicateKey_WarnReportsAndKeepsLast(t *testing.T) {
	var seen []*graphmap.Error
	opt := graphmap.ParseOpt{
		OnDuplicateKey: graphmap.SeverityWarn,
		IssueSink:      func(e *graphmap.Error) { seen = append(seen, e) },
	}
	v, err := graphmap.ParseString(`{"a":1,"b":2,"a":3}`, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(seen) != 1 || seen[0].Code != graphmap.CodeDuplicateKey || seen[0].Path != "a" {
		t.Fatalf("unexpected issues: %v", seen)
	}
	if got := graphmap.Stringify(v); got != `{"a":3,"b":2}` {
		t.Fatalf("got %s", got)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	in := strings.Repeat("[", 10) + strings.Repeat("]", 10)
	if _, err := graphmap.ParseString(in, graphmap.ParseOpt{MaxDepth: 5}); !errors.Is(err, graphmap.ErrMalformedPayload) {
		t.Fatalf("expected depth failure, got %v", err)
	}
	if _, err := graphmap.ParseString(in, graphmap.ParseOpt{MaxDepth: -1}); err != nil {
		t.Fatalf("depth check disabled: %v", err)
	}
}

func TestParse_MaxBytes(t *testing.T) {
	opt := graphmap.ParseOpt{MaxBytes: 8}
	if _, err := graphmap.ParseString(`{"a":"0123456789"}`, opt); !errors.Is(err, graphmap.ErrMalformedPayload) {
		t.Fatalf("expected size failure, got %v", err)
	}
	if _, err := graphmap.ParseReader(strings.NewReader(`{"a":"0123456789"}`), opt); !errors.Is(err, graphmap.ErrMalformedPayload) {
		t.Fatalf("expected size failure from reader, got %v", err)
	}
	if _, err := graphmap.ParseReader(strings.NewReader(`[1,2]`), opt); err != nil {
		t.Fatalf("small input: %v", err)
	}
}

func TestParse_DriversAgree(t *testing.T) {
	in := `{"entry":[{"id":"1","time":1700000000,"changes":[{"field":"feed","value":{"item":"comment","verb":"add","ok":true,"x":null}}]}]}`
	drivers := []graphmap.JSONDriver{graphmap.BuiltinDriver(), drvjson.Driver(), graphmap.CurrentJSONDriver()}
	var first node.Value
	for i, d := range drivers {
		v, err := graphmap.ParseString(in, graphmap.ParseOpt{Driver: d})
		if err != nil {
			t.Fatalf("%s: %v", d.Name(), err)
		}
		if i == 0 {
			first = v
			continue
		}
		if !node.Equal(first, v) {
			t.Fatalf("%s disagrees: %s", d.Name(), graphmap.Stringify(v))
		}
	}
}
