package corpus

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	apperrors "law-agent/errors"

	"go.uber.org/zap"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeCorpusFile(t, "sentence_chunk,page_number,embedding\n"+
		"Article 1. Personal data is protected.,5,[0.1 0.2 0.3]\n"+
		"Article 2. Consent is required.,9,[0.4 0.5 0.6]\n")

	store, err := Load(path, logger)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", store.Size())
	}
	if store.Dim() != 3 {
		t.Fatalf("Dim() = %d, want 3", store.Dim())
	}

	rec := store.RecordAt(1)
	if rec.PageNumber != 9 {
		t.Errorf("RecordAt(1).PageNumber = %d, want 9", rec.PageNumber)
	}
	if rec.Text != "Article 2. Consent is required." {
		t.Errorf("RecordAt(1).Text = %q", rec.Text)
	}
	if got := store.VectorAt(0); len(got) != 3 || got[0] != float32(0.1) {
		t.Errorf("VectorAt(0) = %v", got)
	}
	if rows, cols := store.Matrix().Dims(); rows != 2 || cols != 3 {
		t.Errorf("Matrix().Dims() = (%d, %d), want (2, 3)", rows, cols)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if !apperrors.IsCorpusLoad(err) {
		t.Fatalf("Load() error = %v, want corpus load error", err)
	}
}

func TestLoadMalformedEmbedding(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"missing_brackets", "text,5,0.1 0.2 0.3"},
		{"bad_float", "text,5,[0.1 zz 0.3]"},
		{"empty_vector", "text,5,[]"},
		{"bad_page", "text,five,[0.1 0.2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCorpusFile(t, "sentence_chunk,page_number,embedding\n"+tt.row+"\n")
			if _, err := Load(path, nil); !apperrors.IsCorpusLoad(err) {
				t.Errorf("Load() error = %v, want corpus load error", err)
			}
		})
	}
}

func TestLoadDimensionMismatch(t *testing.T) {
	path := writeCorpusFile(t, "sentence_chunk,page_number,embedding\n"+
		"a,1,[0.1 0.2]\n"+
		"b,2,[0.1 0.2 0.3]\n")
	if _, err := Load(path, nil); !apperrors.IsCorpusLoad(err) {
		t.Fatalf("Load() error = %v, want corpus load error", err)
	}
}

func TestLoadEmptyCorpus(t *testing.T) {
	path := writeCorpusFile(t, "sentence_chunk,page_number,embedding\n")
	store, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", store.Size())
	}
	if store.Matrix() != nil {
		t.Errorf("Matrix() = %v, want nil for empty corpus", store.Matrix())
	}
}

func TestParseEmbeddingRoundTrip(t *testing.T) {
	original := []float32{0.123456, -1.5, 0, 3.25e-4, 42}

	parsed, err := ParseEmbedding(FormatEmbedding(original))
	if err != nil {
		t.Fatalf("ParseEmbedding() error = %v", err)
	}
	if len(parsed) != len(original) {
		t.Fatalf("round trip length = %d, want %d", len(parsed), len(original))
	}
	for i := range original {
		if diff := math.Abs(float64(parsed[i] - original[i])); diff > 1e-6 {
			t.Errorf("value %d: got %v, want %v", i, parsed[i], original[i])
		}
	}
}

func TestParseEmbeddingWhitespace(t *testing.T) {
	vec, err := ParseEmbedding("  [ 0.1   0.2\t0.3 ]  ")
	if err != nil {
		t.Fatalf("ParseEmbedding() error = %v", err)
	}
	if len(vec) != 3 || vec[2] != float32(0.3) {
		t.Errorf("ParseEmbedding() = %v", vec)
	}
}
