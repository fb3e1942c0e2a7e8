package answer

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultWhatsAppNumber  = "96895525211"
	defaultWhatsAppMessage = "مرحبا، أريد المساعدة في خدمات تمهيد"
)

// defaultNoAnswerPhrases are matched case-insensitively as substrings of the
// model's reply. The first entry also catches the sentinel the system prompt
// instructs the model to emit.
var defaultNoAnswerPhrases = []string{
	"no_answer",
	"i don't know",
	"لا أعرف",
	"لا أملك",
}

// FallbackConfig controls when a model reply is rejected as a non-answer and
// what the caller gets instead.
type FallbackConfig struct {
	Phrases    []string // substring markers of a refused answer
	ContactURL string   // where the fallback message points the user
}

// DefaultFallbackConfig points fallbacks at the Tamhid WhatsApp contact.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		Phrases:    defaultNoAnswerPhrases,
		ContactURL: WhatsAppURL(defaultWhatsAppNumber, defaultWhatsAppMessage),
	}
}

// WhatsAppURL builds a wa.me deep link with a prefilled message.
func WhatsAppURL(number, message string) string {
	// wa.me expects %20 for spaces in the text parameter, not +.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, text)
}

// IsNoAnswer reports whether a trimmed model reply should be replaced by the
// fallback message. Empty replies always fall back.
func (c FallbackConfig) IsNoAnswer(reply string) bool {
	if strings.TrimSpace(reply) == "" {
		return true
	}
	lower := strings.ToLower(reply)
	for _, p := range c.Phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Text is the user-facing fallback message, in Arabic, carrying the contact
// link as Markdown.
func (c FallbackConfig) Text() string {
	return fmt.Sprintf("لم أجد إجابة دقيقة في قاعدة المعرفة. يمكنك التواصل معنا عبر واتساب للمزيد من التفاصيل: [اضغط هنا للتواصل](%s)", c.ContactURL)
}
