package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "min", "max" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogs = map[string]map[string]string{
	"en": {
		"invalid_type": "invalid type, expected {expected}",
		"required":     "required property missing",
		"unknown_key":  "property not declared in schema",
		"too_small":    "value {got} is below minimum {min}",
		"too_big":      "value {got} is above maximum {max}",
		"too_short":    "length {got} is shorter than {min}",
		"too_long":     "length {got} is longer than {max}",
		"invalid_enum": "value {got} is not in enum",
		"uniqueness":   "duplicate item",
	},
	"ja": {
		"invalid_type": "型が不正です（期待: {expected}）",
		"required":     "必須プロパティが不足しています",
		"unknown_key":  "スキーマに定義されていないプロパティです",
		"too_small":    "値 {got} が最小値 {min} 未満です",
		"too_big":      "値 {got} が最大値 {max} を超えています",
		"too_short":    "長さ {got} が {min} より短いです",
		"too_long":     "長さ {got} が {max} より長いです",
		"invalid_enum": "値 {got} は列挙値に含まれていません",
		"uniqueness":   "要素が重複しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogs[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
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
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
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
