package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "law-agent/errors"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// PassageRecord is one chunk of the source legal text with its provenance
// and precomputed embedding. Records are immutable after load.
type PassageRecord struct {
	Text       string
	PageNumber int
	Embedding  []float32
}

// Store owns the passage corpus and the dense matrix of stacked embedding
// vectors (rows = passages). It is built once at startup and shared
// read-only by all requests.
type Store struct {
	records []PassageRecord
	matrix  *mat.Dense
	dim     int
}

// Load reads the passage CSV (columns sentence_chunk, page_number, embedding)
// and builds the store. Any unreadable or malformed row aborts the load;
// there is no partial-corpus mode.
func Load(path string, logger *zap.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrCorpusLoad, "open corpus %s: %v", path, err)
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrCorpusLoad, "read corpus %s: %v", path, err)
	}

	store, err := FromRecords(records)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Loaded passage corpus",
			zap.String("path", path),
			zap.Int("passages", store.Size()),
			zap.Int("dimension", store.Dim()))
	}
	return store, nil
}

// FromRecords builds a store from already-parsed records, validating that
// every embedding shares one dimensionality.
func FromRecords(records []PassageRecord) (*Store, error) {
	if len(records) == 0 {
		return &Store{}, nil
	}

	dim := len(records[0].Embedding)
	for i, rec := range records {
		if len(rec.Embedding) != dim {
			return nil, apperrors.WrapErrorf(apperrors.ErrCorpusLoad,
				"row %d: embedding dimension %d does not match %d", i, len(rec.Embedding), dim)
		}
	}
	if dim == 0 {
		return nil, apperrors.WrapError(apperrors.ErrCorpusLoad, "embeddings have zero dimension")
	}

	matrix := mat.NewDense(len(records), dim, nil)
	for i, rec := range records {
		for j, v := range rec.Embedding {
			matrix.Set(i, j, float64(v))
		}
	}

	return &Store{records: records, matrix: matrix, dim: dim}, nil
}

// Size returns the number of passages in the corpus.
func (s *Store) Size() int {
	return len(s.records)
}

// Dim returns the embedding dimensionality, 0 for an empty corpus.
func (s *Store) Dim() int {
	return s.dim
}

// RecordAt returns the passage at the given corpus row.
func (s *Store) RecordAt(i int) PassageRecord {
	return s.records[i]
}

// VectorAt returns the embedding at the given corpus row.
func (s *Store) VectorAt(i int) []float32 {
	return s.records[i].Embedding
}

// Matrix returns the dense matrix of stacked embeddings, nil for an empty
// corpus. Callers must treat it as read-only.
func (s *Store) Matrix() *mat.Dense {
	return s.matrix
}

func readRecords(r io.Reader) ([]PassageRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	textCol, pageCol, embCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "sentence_chunk":
			textCol = i
		case "page_number":
			pageCol = i
		case "embedding":
			embCol = i
		}
	}
	if textCol < 0 || pageCol < 0 || embCol < 0 {
		return nil, fmt.Errorf("header missing required columns (have %v)", header)
	}

	var records []PassageRecord
	row := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++
		if len(fields) <= textCol || len(fields) <= pageCol || len(fields) <= embCol {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", row, embCol+1, len(fields))
		}

		page, err := parsePageNumber(fields[pageCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: page number %q: %w", row, fields[pageCol], err)
		}
		embedding, err := ParseEmbedding(fields[embCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		records = append(records, PassageRecord{
			Text:       fields[textCol],
			PageNumber: page,
			Embedding:  embedding,
		})
	}
	return records, nil
}

func parsePageNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// Some export tools write integer columns as floats ("5.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
