package transform

import (
	"strings"
	"testing"
)

const quizText = "Kubernetes orchestrates containers across a cluster of machines. " +
	"Scheduling decisions consider resource requests and node capacity every time. " +
	"Networking overlays connect pods through virtual interfaces on each host."

func TestGenerateQuiz_Template(t *testing.T) {
	questions := GenerateQuiz(quizText, 3)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	first := questions[0]
	if first.Text != "Question 1: Explain the concept of 'Kubernetes' in this context" {
		t.Errorf("question text = %q", first.Text)
	}
	if len(first.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(first.Options))
	}
	// The template always marks the first option correct. Keep asserting the
	// current behavior; changing it is a product decision.
	if first.CorrectAnswer != first.Options[0] {
		t.Errorf("correct answer %q is not the first option %q", first.CorrectAnswer, first.Options[0])
	}
	if first.Points != 1 {
		t.Errorf("points = %d, want 1", first.Points)
	}
	if !strings.Contains(first.Explanation, "Kubernetes") {
		t.Errorf("explanation should mention the focus keyword: %q", first.Explanation)
	}
}

func TestGenerateQuiz_SequentialNumbering(t *testing.T) {
	questions := GenerateQuiz(quizText, 5)
	for i, q := range questions {
		prefix := "Question " + string(rune('1'+i)) + ":"
		if !strings.HasPrefix(q.Text, prefix) {
			t.Errorf("question %d text = %q, want prefix %q", i, q.Text, prefix)
		}
	}
}

func TestGenerateQuiz_DistinctSentences(t *testing.T) {
	questions := GenerateQuiz(quizText, 10)
	seen := make(map[string]bool)
	for _, q := range questions {
		if seen[q.Explanation] {
			t.Errorf("duplicate question source: %q", q.Explanation)
		}
		seen[q.Explanation] = true
	}
	if len(questions) > 3 {
		t.Errorf("more questions than qualifying sentences: %d", len(questions))
	}
}

func TestGenerateQuiz_SkipsShortSentences(t *testing.T) {
	questions := GenerateQuiz("Too short. Also brief. Nope.", 5)
	if len(questions) != 0 {
		t.Errorf("expected no questions, got %d", len(questions))
	}
}

func TestGenerateQuiz_NonPositiveCount(t *testing.T) {
	if got := GenerateQuiz(quizText, 0); len(got) != 0 {
		t.Errorf("count 0 should yield nothing, got %d", len(got))
	}
	if got := GenerateQuiz(quizText, -2); len(got) != 0 {
		t.Errorf("negative count should yield nothing, got %d", len(got))
	}
}

func TestFocusKeyword(t *testing.T) {
	kw, ok := focusKeyword("The little Raft protocol elects a leader.")
	if !ok || kw != "little" {
		t.Errorf("focus keyword = %q ok=%v, want little", kw, ok)
	}
	if _, ok := focusKeyword("the and of 123 x."); ok {
		t.Error("expected no focus keyword")
	}
}
