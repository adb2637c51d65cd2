package transform

import (
	"reflect"
	"testing"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello world. How are you? Fine!", []string{"Hello world.", "How are you?", "Fine!"}},
		{"No terminator here", []string{"No terminator here"}},
		{"Version 1.2 is out. It works.", []string{"Version 1.2 is out.", "It works."}},
		{"He said \"stop.\" Then left.", []string{"He said \"stop.\"", "Then left."}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := Sentences(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Sentences(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLetterTokens(t *testing.T) {
	got := letterTokens("foo-bar 42 baz's qux")
	want := []string{"foo", "bar", "baz", "s", "qux"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("letterTokens = %v, want %v", got, want)
	}
}

func TestWordCount(t *testing.T) {
	if got := wordCount("one two  three\nfour"); got != 4 {
		t.Errorf("wordCount = %d, want 4", got)
	}
	if got := wordCount("  "); got != 0 {
		t.Errorf("wordCount of blanks = %d, want 0", got)
	}
}
