package validator

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	v := NewURLValidator()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com/path", false},
		{"valid http", "http://example.com", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no scheme", "example.com", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"no host", "https://", true},
		{"too long", "https://example.com/" + strings.Repeat("a", 2048), true},
		{"localhost blocked", "http://localhost:9000/x", true},
		{"loopback blocked", "http://127.0.0.1/x", true},
		{"private range blocked", "http://192.168.1.10/x", true},
		{"ipv6 loopback blocked", "http://[::1]/x", true},
		{"ipv6 loopback with port blocked", "http://[::1]:8080/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateURL(%q) expected error, got nil", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateURL(%q) unexpected error: %v", tt.url, err)
			}
		})
	}
}

func TestValidateURLRejectsOwnHost(t *testing.T) {
	v := NewURLValidator().WithOwnHost("https://sho.rt")

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"own host", "https://sho.rt/abc123", true},
		{"own host with port", "https://sho.rt:8443/abc123", true},
		{"own host other scheme", "http://sho.rt/abc123", true},
		{"own host mixed case", "https://SHO.RT/abc123", true},
		{"other host", "https://example.com/page", false},
		{"own host as substring", "https://sho.rt.example.com/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateURL(%q) expected self-referential rejection, got nil", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateURL(%q) unexpected error: %v", tt.url, err)
			}
		})
	}
}

func TestValidateShortCode(t *testing.T) {
	v := NewURLValidator()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"simple", "abc123", false},
		{"single char", "x", false},
		{"fifty chars", strings.Repeat("a", 50), false},
		{"empty", "", true},
		{"fifty-one chars", strings.Repeat("a", 51), true},
		{"invalid char", "abc/123", true},
		{"space", "abc 123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateShortCode(tt.code)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateShortCode(%q) expected error, got nil", tt.code)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateShortCode(%q) unexpected error: %v", tt.code, err)
			}
		})
	}
}

func TestValidateCustomCode(t *testing.T) {
	v := NewURLValidator()

	// Optional: empty custom code is fine
	if err := v.ValidateCustomCode(""); err != nil {
		t.Errorf("empty custom code should be allowed, got: %v", err)
	}

	// Reserved route words are rejected regardless of case
	for _, code := range []string{"shorten", "health", "STATS", "Admin"} {
		if err := v.ValidateCustomCode(code); err == nil {
			t.Errorf("ValidateCustomCode(%q) expected reserved-word rejection", code)
		}
	}

	if err := v.ValidateCustomCode("my-link"); err != nil {
		t.Errorf("ValidateCustomCode(my-link) unexpected error: %v", err)
	}
}
