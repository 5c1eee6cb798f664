package htmlsanitize_test

import (
	"testing"

	"github.com/artisanbridge/artisanbridge/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"plain", "Need 20kg of cotton yarn", "Need 20kg of cotton yarn"},
		{"trims", "  padded  ", "padded"},
		{"ampersand kept", "R&D for dyes", "R&D for dyes"},
		{"strips formatting", "<b>Bold</b> text", "Bold text"},
		{"drops script", "Hello<script>alert('xss')</script>", "Hello"},
		{"drops style", "<style>p{}</style>Hi", "Hi"},
		{"strips attributes", `<a href="javascript:alert(1)" onclick="x()">link</a>`, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainTextPtr(t *testing.T) {
	if htmlsanitize.PlainTextPtr(nil) != nil {
		t.Error("expected nil for nil input")
	}
	in := " <i>note</i> "
	got := htmlsanitize.PlainTextPtr(&in)
	if got == nil || *got != "note" {
		t.Errorf("PlainTextPtr = %v, want \"note\"", got)
	}
}
