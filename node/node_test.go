package node_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/graphmap/node"
)

func TestObject_KeepsFirstSeenOrder(t *testing.T) {
	o := node.NewObject()
	o.Set("b", node.NumberValue("1"))
	o.Set("a", node.StringValue("x"))
	o.Set("b", node.NumberValue("2"))

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, ok := o.Get("b")
	require.True(t, ok)
	n, _ := v.Num()
	assert.Equal(t, node.Number("2"), n)

	o.Delete("b")
	assert.Equal(t, []string{"a"}, o.Keys())
	assert.False(t, o.Has("b"))
}

func TestStringify_ByteStable(t *testing.T) {
	o := node.NewObject()
	o.Set("z", node.ArrayValue(node.NumberValue("1"), node.BoolValue(true), node.NullValue()))
	o.Set("a", node.StringValue("line\n\"quoted\" \\ <b>"))
	v := node.ObjectValue(o)

	want := `{"z":[1,true,null],"a":"line\n\"quoted\" \\ <b>"}`
	assert.Equal(t, want, node.Stringify(v))
	assert.Equal(t, want, node.Stringify(v))

	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, want, string(b))
}

func TestStringify_ZeroValueIsNull(t *testing.T) {
	assert.Equal(t, "null", node.Stringify(node.Value{}))
	assert.False(t, node.Value{}.IsValid())
}

func TestNumber_Widths(t *testing.T) {
	i, err := node.Number("42").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	i, err = node.Number("3.0").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	_, err = node.Number("3.5").Int64()
	assert.ErrorIs(t, err, node.ErrNotIntegral)

	_, err = node.Number("9223372036854775808").Int64()
	assert.Error(t, err)

	bi, err := node.Number("123456789012345678901234567890").BigInt()
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, 0, bi.Cmp(want))

	f, err := node.Number("1.5e2").Float64()
	require.NoError(t, err)
	assert.Equal(t, 150.0, f)
}

func TestParseNumber_Grammar(t *testing.T) {
	for _, ok := range []string{"0", "-0", "12", "1.5", "1e10", "-2.5E-3"} {
		_, err := node.ParseNumber(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "-", "01", "1.", ".5", "1e", "+1", "NaN", "0x10"} {
		_, err := node.ParseNumber(bad)
		assert.ErrorIs(t, err, node.ErrInvalidNumber, bad)
	}
}

func TestEqual_NumbersByValue(t *testing.T) {
	assert.True(t, node.Equal(node.NumberValue("1"), node.NumberValue("1.0")))
	assert.True(t, node.Equal(node.NumberValue("100"), node.NumberValue("1e2")))
	assert.False(t, node.Equal(node.NumberValue("1"), node.StringValue("1")))

	a := node.NewObject()
	a.Set("x", node.NumberValue("1"))
	a.Set("y", node.NumberValue("2"))
	b := node.NewObject()
	b.Set("y", node.NumberValue("2"))
	b.Set("x", node.NumberValue("1"))
	assert.False(t, node.Equal(node.ObjectValue(a), node.ObjectValue(b)), "object order is significant")
}

func TestYAML_PreservesOrder(t *testing.T) {
	o := node.NewObject()
	o.Set("name", node.StringValue("page"))
	o.Set("fan_count", node.NumberValue("12"))
	o.Set("tags", node.ArrayValue(node.StringValue("a")))

	out, err := yaml.Marshal(node.ObjectValue(o))
	require.NoError(t, err)
	assert.Equal(t, "name: page\nfan_count: 12\ntags:\n    - a\n", string(out))
}
