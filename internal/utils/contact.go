package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// placeholder domains LLMs tend to invent
var invalidEmailDomains = map[string]struct{}{
	"example.com": {},
	"test.com":    {},
	"email.com":   {},
	"teste.com":   {},
}

// NormalizePhone formats a Brazilian phone number with area code. Landlines
// (10 digits) give (XX) XXXX-XXXX, mobiles (11 digits) (XX) XXXXX-XXXX.
func NormalizePhone(phone string) (string, bool) {
	d := OnlyDigits(phone)
	switch len(d) {
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:], true
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:], true
	default:
		return "", false
	}
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks the address shape and rejects placeholder domains
func IsValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	_, invalid := invalidEmailDomains[domain]
	return !invalid
}

// IsWebsite reports whether s is an http or https URL
func IsWebsite(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
