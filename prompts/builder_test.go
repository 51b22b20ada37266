package prompts

import (
	"strings"
	"testing"

	apperrors "law-agent/errors"
	"law-agent/search"
)

func TestBuildGrounded(t *testing.T) {
	passages := []search.ScoredPassage{
		{Score: 0.9, Text: "Article 12. Data subjects may withdraw consent.", PageNumber: 12},
		{Score: 0.8, Text: "Article 30. Breach notification duties.", PageNumber: 47},
	}

	prompt, err := BuildGrounded("Can I withdraw consent?", passages)
	if err != nil {
		t.Fatalf("BuildGrounded() error = %v", err)
	}
	if !strings.Contains(prompt, "[Page 12] Article 12. Data subjects may withdraw consent.") {
		t.Errorf("prompt missing formatted first passage:\n%s", prompt)
	}
	if !strings.Contains(prompt, "[Page 47] Article 30. Breach notification duties.") {
		t.Errorf("prompt missing formatted second passage:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Can I withdraw consent?") {
		t.Errorf("prompt missing the question:\n%s", prompt)
	}
	// Passages are separated by a blank line
	if !strings.Contains(prompt, "consent.\n\n[Page 47]") {
		t.Errorf("passages not blank-line separated:\n%s", prompt)
	}
}

func TestBuildGroundedInvalidInput(t *testing.T) {
	valid := []search.ScoredPassage{{Score: 1, Text: "text", PageNumber: 3}}

	tests := []struct {
		name     string
		query    string
		passages []search.ScoredPassage
	}{
		{"empty_query", "  ", valid},
		{"no_passages", "question", nil},
		{"passages_without_text", "question", []search.ScoredPassage{{Score: 1, Text: " ", PageNumber: 3}}},
		{"passages_without_page", "question", []search.ScoredPassage{{Score: 1, Text: "text", PageNumber: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildGrounded(tt.query, tt.passages); !apperrors.IsInvalidInput(err) {
				t.Errorf("BuildGrounded() error = %v, want invalid input", err)
			}
		})
	}
}

func TestBuildGroundedWithCustomTemplate(t *testing.T) {
	passages := []search.ScoredPassage{{Score: 1, Text: "text", PageNumber: 3}}

	prompt, err := BuildGroundedWith("Context:\n%s\nQ: %s", "question", passages)
	if err != nil {
		t.Fatalf("BuildGroundedWith() error = %v", err)
	}
	if prompt != "Context:\n[Page 3] text\nQ: question" {
		t.Errorf("BuildGroundedWith() = %q", prompt)
	}

	if _, err := BuildGroundedWith("no placeholders", "question", passages); !apperrors.IsInvalidInput(err) {
		t.Errorf("template without placeholders: error = %v, want invalid input", err)
	}
}

func TestBuildDirect(t *testing.T) {
	prompt := BuildDirect("What is personal data?")
	if !strings.Contains(prompt, "What is personal data?") {
		t.Errorf("BuildDirect() missing question:\n%s", prompt)
	}
	if !strings.Contains(prompt, "general knowledge") {
		t.Errorf("BuildDirect() missing general-knowledge instruction:\n%s", prompt)
	}
}

func TestCitationSuffix(t *testing.T) {
	tests := []struct {
		name     string
		passages []search.ScoredPassage
		want     string
	}{
		{
			name: "deduplicated_and_sorted",
			passages: []search.ScoredPassage{
				{PageNumber: 9}, {PageNumber: 5}, {PageNumber: 5},
			},
			want: "Reference: Pages 5, 9.",
		},
		{
			name:     "single_page",
			passages: []search.ScoredPassage{{PageNumber: 12}},
			want:     "Reference: Pages 12.",
		},
		{
			name:     "no_pages",
			passages: []search.ScoredPassage{{PageNumber: 0}},
			want:     "",
		},
		{
			name:     "empty",
			passages: nil,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CitationSuffix(tt.passages); got != tt.want {
				t.Errorf("CitationSuffix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyAndRefineContainQuery(t *testing.T) {
	if got := Classify("is my data safe"); !strings.Contains(got, "is my data safe") {
		t.Errorf("Classify() missing query:\n%s", got)
	}
	if got := Refine("is my data safe"); !strings.Contains(got, "is my data safe") {
		t.Errorf("Refine() missing query:\n%s", got)
	}
}
