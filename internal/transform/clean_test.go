package transform

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse spaces", "a   b\tc", "a b c"},
		{"single newline becomes space", "a\nb", "a b"},
		{"blank line kept", "a\n\nb", "a\n\nb"},
		{"many blank lines collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"windows line endings", "a\r\n\r\nb", "a\n\nb"},
		{"trim edges", "  \n a b \n\n ", "a b"},
		{"mixed whitespace around blank line", "a \n \t\n b", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckMinLength(t *testing.T) {
	if err := CheckMinLength("0123456789", MinDirectChars); err != nil {
		t.Errorf("10 chars should pass the direct minimum: %v", err)
	}
	if err := CheckMinLength("Hi.", MinDirectChars); err == nil {
		t.Error("3 chars should fail the direct minimum")
	}
	if err := CheckMinLength("0123456789", MinUploadChars); err == nil {
		t.Error("10 chars should fail the upload minimum")
	}
}
