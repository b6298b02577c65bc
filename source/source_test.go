package source_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphmap "github.com/reoring/graphmap"
	_ "github.com/reoring/graphmap/source"
	drvgojson "github.com/reoring/graphmap/source/gojson"
	drvjson "github.com/reoring/graphmap/source/json"
)

func drivers() []graphmap.JSONDriver {
	return []graphmap.JSONDriver{graphmap.BuiltinDriver(), drvjson.Driver(), drvgojson.Driver()}
}

func tokens(t *testing.T, src graphmap.Source) []graphmap.Token {
	t.Helper()
	var out []graphmap.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok)
	}
}

func TestDefaultDriver(t *testing.T) {
	assert.Equal(t, "go-json", graphmap.CurrentJSONDriver().Name())
}

func TestDrivers_TokenStream(t *testing.T) {
	in := []byte(`{"a":[1,"x",true,null],"b":{},"c":12345678901234567890.5}`)
	want := []graphmap.TokenKind{
		graphmap.TokenBeginObject,
		graphmap.TokenKey, graphmap.TokenBeginArray,
		graphmap.TokenNumber, graphmap.TokenString, graphmap.TokenBool, graphmap.TokenNull,
		graphmap.TokenEndArray,
		graphmap.TokenKey, graphmap.TokenBeginObject, graphmap.TokenEndObject,
		graphmap.TokenKey, graphmap.TokenNumber,
		graphmap.TokenEndObject,
	}
	for _, d := range drivers() {
		t.Run(d.Name(), func(t *testing.T) {
			toks := tokens(t, d.NewBytes(in))
			require.Len(t, toks, len(want))
			for i, k := range want {
				assert.Equal(t, k, toks[i].Kind, "token %d", i)
			}
			assert.Equal(t, "a", toks[1].String)
			assert.Equal(t, "1", toks[3].Number)
			assert.Equal(t, "x", toks[4].String)
			assert.True(t, toks[5].Bool)
			assert.Equal(t, "12345678901234567890.5", toks[12].Number, "number literals keep their text")
		})
	}
}

func TestDrivers_Malformed(t *testing.T) {
	for _, d := range drivers() {
		t.Run(d.Name(), func(t *testing.T) {
			_, err := graphmap.Parse([]byte(`{"a":}`), graphmap.ParseOpt{Driver: d})
			assert.ErrorIs(t, err, graphmap.ErrMalformedPayload)
		})
	}
}
