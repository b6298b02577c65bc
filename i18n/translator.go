package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for error codes.
// data provides optional values to embed in the message (for example,
// "expected" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Placeholders use
// the {name} form.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"malformed_payload": "malformed payload: {reason}",
		"invalid_binding":   "invalid binding for {type}: {reason}",
		"type_mismatch":     "expected {expected}, got {got}",
		"overflow":          "number {got} does not fit {expected}",
		"hook_failed":       "mapping completion hook of {type} failed",
	},
	"ja": {
		"malformed_payload": "不正なペイロードです: {reason}",
		"invalid_binding":   "{type} のバインディングが不正です: {reason}",
		"type_mismatch":     "{expected} を期待しましたが {got} でした",
		"overflow":          "数値 {got} は {expected} に収まりません",
		"hook_failed":       "{type} のマッピング完了フックが失敗しました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogue[t.lang][code]
	if !ok {
		msg, ok = catalogue["en"][code]
	}
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
