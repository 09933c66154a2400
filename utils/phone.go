package utils

import (
	"errors"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultPhoneRegion = "ID"

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses local (08xx) or international input and returns E.164. Empty input stays empty.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// WhatsAppLink builds a wa.me link for an E.164 number.
func WhatsAppLink(e164, text string) string {
	if e164 == "" {
		return ""
	}
	link := "https://wa.me/" + strings.TrimPrefix(e164, "+")
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
