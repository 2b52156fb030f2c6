package errors

import (
	"strings"
	"testing"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "0b7d3c2e-8f57-4a43-9a57-0b1c2a6d9e10", false},
		{"valid simple", "local", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal ..", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFeatureID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"point-1", false},
		{"polyline-12", false},
		{"polygon-3", false},

		{"", true},
		{"point-0", true},
		{"circle-1", true},
		{"point", true},
		{"point-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateFeatureID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeatureID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLanguage(t *testing.T) {
	for _, lang := range []string{"", "en", "ar", "AR"} {
		if err := ValidateLanguage(lang); err != nil {
			t.Errorf("ValidateLanguage(%q) = %v, want nil", lang, err)
		}
	}
	if err := ValidateLanguage("fr"); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateLanguage(fr) = %v, want INVALID_INPUT", err)
	}
}
