package search

import (
	"math"
	"sort"

	"law-agent/corpus"

	"gonum.org/v1/gonum/mat"
)

// Norms below this are treated as zero to avoid NaN propagation when
// normalizing degenerate vectors.
const normEpsilon = 1e-12

// ScoredPassage is one ranked retrieval result. Score is a cosine
// similarity in [-1, 1].
type ScoredPassage struct {
	Score      float64
	Text       string
	PageNumber int
}

// Engine ranks the corpus against a query vector by cosine similarity.
// The row-normalized matrix is computed once at construction; the engine
// is safe for concurrent use.
type Engine struct {
	store      *corpus.Store
	normalized *mat.Dense
}

func NewEngine(store *corpus.Store) *Engine {
	e := &Engine{store: store}
	if store.Size() == 0 {
		return e
	}

	rows, cols := store.Matrix().Dims()
	normalized := mat.NewDense(rows, cols, nil)
	normalized.Copy(store.Matrix())
	for i := 0; i < rows; i++ {
		normalizeRow(normalized.RawRowView(i))
	}
	e.normalized = normalized
	return e
}

// Search returns up to k passages ranked by descending cosine similarity
// against the query vector. Equal scores keep corpus order. An empty
// corpus or dimension mismatch yields an empty result.
func (e *Engine) Search(query []float32, k int) []ScoredPassage {
	if e.store.Size() == 0 || k <= 0 || len(query) != e.store.Dim() {
		return nil
	}

	q := make([]float64, len(query))
	for i, v := range query {
		q[i] = float64(v)
	}
	normalizeRow(q)

	rows, _ := e.normalized.Dims()
	scores := mat.NewVecDense(rows, nil)
	scores.MulVec(e.normalized, mat.NewVecDense(len(q), q))

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	// Stable: ties retain corpus order
	sort.SliceStable(idx, func(a, b int) bool {
		return scores.AtVec(idx[a]) > scores.AtVec(idx[b])
	})

	if k > rows {
		k = rows
	}
	results := make([]ScoredPassage, 0, k)
	for _, i := range idx[:k] {
		rec := e.store.RecordAt(i)
		results = append(results, ScoredPassage{
			Score:      scores.AtVec(i),
			Text:       rec.Text,
			PageNumber: rec.PageNumber,
		})
	}
	return results
}

// normalizeRow scales v to unit length in place. Vectors with a norm below
// machine epsilon are left as-is rather than divided by (near) zero.
func normalizeRow(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm < normEpsilon {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
