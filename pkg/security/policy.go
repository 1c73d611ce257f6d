package security

import "unicode"

// DefaultMinPasswordLength applies when no minimum is configured.
const DefaultMinPasswordLength = 12

// PasswordPolicy describes what counts as a strong password.
type PasswordPolicy struct {
	MinLength int
}

// Satisfied reports whether password has the minimum length and at least one lowercase
// letter, one uppercase letter, one digit and one symbol.
func (p PasswordPolicy) Satisfied(password string) bool {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	if len([]rune(password)) < minLen {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
