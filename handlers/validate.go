package handlers

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hasLetter  = regexp.MustCompile(`[a-zA-Z]`)
	phoneShape = regexp.MustCompile(`^\+234\d{8,11}$`)
)

// validateName trims the name and rejects values with no alphabet
// characters or made up entirely of digits. Returns the cleaned name.
func validateName(name string) (string, error) {
	if !hasLetter.MatchString(name) {
		return "", fmt.Errorf("name must contain at least one alphabet character")
	}
	if digitsOnly(strings.ReplaceAll(strings.TrimSpace(name), " ", "")) {
		return "", fmt.Errorf("name cannot be only numbers")
	}
	return strings.TrimSpace(name), nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validatePhone enforces the +234 prefix followed by 8-11 digits.
func validatePhone(phone string) error {
	if !strings.HasPrefix(phone, "+234") {
		return fmt.Errorf("phone number must start with +234")
	}
	if !phoneShape.MatchString(phone) {
		return fmt.Errorf("phone number must have between 8 and 11 digits after +234")
	}
	return nil
}
