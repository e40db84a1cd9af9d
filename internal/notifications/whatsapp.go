package notifications

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildWhatsAppLink produces a wa.me deep link pre-filled with the message.
// Returns empty when no company number is configured.
func BuildWhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(message))
}
