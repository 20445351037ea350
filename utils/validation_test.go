package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"jo@taxly.ai",
		"jo.smith+tax@example.co.uk",
		"USER_99@sub.domain.com",
	}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local.com",
		"no-at-sign.com",
		"user@",
		"user@.com",
		"user@domain",
		"spaces in@address.com",
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jo.Smith@Taxly.AI "); got != "jo.smith@taxly.ai" {
		t.Errorf("NormalizeEmail = %q, want jo.smith@taxly.ai", got)
	}
}
