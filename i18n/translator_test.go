package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	data := map[string]string{"expected": "object", "got": "array"}
	assert.Equal(t, "expected object, got array", T("type_mismatch", data))

	SetLanguage("ja")
	defer SetLanguage("en")
	assert.Equal(t, "object を期待しましたが array でした", T("type_mismatch", data))
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	assert.Equal(t, "X:overflow", T("overflow", nil))
}
