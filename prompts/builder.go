package prompts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "law-agent/errors"
	"law-agent/search"
)

// Classify renders the forced-choice routing prompt for a query.
func Classify(query string) string {
	return fmt.Sprintf(classifyQuery, query)
}

// Refine renders the retrieval-oriented query rewrite prompt.
func Refine(query string) string {
	return fmt.Sprintf(refineQuery, query)
}

// BuildDirect wraps the bare question with general-knowledge-only instructions.
func BuildDirect(query string) string {
	return fmt.Sprintf(directAnswer, query)
}

// BuildGrounded renders the default grounded prompt from the query and
// ranked passages.
func BuildGrounded(query string, passages []search.ScoredPassage) (string, error) {
	return BuildGroundedWith("", query, passages)
}

// BuildGroundedWith renders a grounded prompt using a caller-supplied
// template; an empty template selects the default. Templates interpolate
// two values in order: the formatted excerpts and the question.
func BuildGroundedWith(template string, query string, passages []search.ScoredPassage) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "query is empty")
	}

	formatted := make([]string, 0, len(passages))
	for _, p := range passages {
		if strings.TrimSpace(p.Text) == "" || p.PageNumber == 0 {
			continue
		}
		formatted = append(formatted, fmt.Sprintf("[Page %d] %s", p.PageNumber, p.Text))
	}
	if len(formatted) == 0 {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "no usable passages in context")
	}

	if template == "" {
		template = groundedAnswer
	}
	if strings.Count(template, "%s") != 2 {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "prompt template must interpolate excerpts and question")
	}

	return fmt.Sprintf(template, strings.Join(formatted, "\n\n"), query), nil
}

// CitationSuffix builds the reference line listing the distinct sorted page
// numbers used, e.g. "Reference: Pages 12, 47." Empty when no passage
// carries a page reference.
func CitationSuffix(passages []search.ScoredPassage) string {
	seen := make(map[int]struct{}, len(passages))
	var pages []int
	for _, p := range passages {
		if p.PageNumber == 0 {
			continue
		}
		if _, ok := seen[p.PageNumber]; ok {
			continue
		}
		seen[p.PageNumber] = struct{}{}
		pages = append(pages, p.PageNumber)
	}
	if len(pages) == 0 {
		return ""
	}
	sort.Ints(pages)

	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("Reference: Pages %s.", strings.Join(parts, ", "))
}
