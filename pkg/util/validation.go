package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLength      = 3
	NameMaxLength      = 60
	AddressMaxLength   = 400
	PasswordMinLength  = 8
	PasswordMaxLength  = 16
	StoreNameMinLength = 3
	StoreAddrMinLength = 10
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsStrongPassword enforces 8-16 characters with at least one uppercase
// letter and one character that is neither a letter nor a digit.
func IsStrongPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return false
	}

	var upper, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}
	return upper && special
}

// LengthBetween counts runes of the trimmed value.
func LengthBetween(value string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	return n >= min && n <= max
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
