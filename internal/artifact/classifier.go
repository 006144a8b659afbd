package artifact

import (
	"errors"
	"fmt"
)

const (
	KindDecisionTree = "decision_tree"
	KindRandomForest = "random_forest"

	leafMarker = -1
)

var (
	ErrMalformedModel = errors.New("malformed model")
	ErrFeatureCount   = errors.New("feature row has wrong length")
)

// Classifier maps one encoded feature row to a class code.
type Classifier interface {
	Predict(row []float64) (int, error)
	NumClasses() int
	NumFeatures() int
}

// TreeSpec is one fitted tree in parallel-array form. Node i is a leaf
// when ChildrenLeft[i] == -1; otherwise a sample goes left when
// row[Feature[i]] <= Threshold[i].
type TreeSpec struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// ModelSpec is the serialized form of the brand classifier.
type ModelSpec struct {
	Kind      string     `json:"kind"`
	NFeatures int        `json:"n_features"`
	NClasses  int        `json:"n_classes"`
	Trees     []TreeSpec `json:"trees"`
}

// TreeEnsemble averages the normalized leaf distributions of its trees and
// returns the arg-max class. A single decision tree is an ensemble of one.
type TreeEnsemble struct {
	kind      string
	nFeatures int
	nClasses  int
	trees     []TreeSpec
}

// NewTreeEnsemble validates spec and builds a classifier from it.
func NewTreeEnsemble(spec ModelSpec) (*TreeEnsemble, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &TreeEnsemble{
		kind:      spec.Kind,
		nFeatures: spec.NFeatures,
		nClasses:  spec.NClasses,
		trees:     spec.Trees,
	}, nil
}

func (m *TreeEnsemble) Kind() string     { return m.kind }
func (m *TreeEnsemble) NumClasses() int  { return m.nClasses }
func (m *TreeEnsemble) NumFeatures() int { return m.nFeatures }

func (m *TreeEnsemble) Predict(row []float64) (int, error) {
	if len(row) != m.nFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(row), m.nFeatures)
	}

	votes := make([]float64, m.nClasses)
	for i := range m.trees {
		dist := m.trees[i].leafValue(row)
		var total float64
		for _, v := range dist {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range dist {
			votes[c] += v / total
		}
	}

	best := 0
	for c := 1; c < len(votes); c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return best, nil
}

func (t *TreeSpec) leafValue(row []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leafMarker {
		if row[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

func (s ModelSpec) Validate() error {
	switch s.Kind {
	case KindDecisionTree:
		if len(s.Trees) != 1 {
			return fmt.Errorf("%w: decision_tree needs exactly one tree, got %d", ErrMalformedModel, len(s.Trees))
		}
	case KindRandomForest:
		if len(s.Trees) == 0 {
			return fmt.Errorf("%w: random_forest has no trees", ErrMalformedModel)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrMalformedModel, s.Kind)
	}

	if s.NFeatures <= 0 {
		return fmt.Errorf("%w: n_features must be positive", ErrMalformedModel)
	}
	if s.NClasses <= 0 {
		return fmt.Errorf("%w: n_classes must be positive", ErrMalformedModel)
	}

	for i := range s.Trees {
		if err := s.Trees[i].validate(s.NFeatures, s.NClasses); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// validate also guarantees traversal terminates: every child index is
// strictly greater than its parent.
func (t *TreeSpec) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("%w: empty tree", ErrMalformedModel)
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("%w: node arrays differ in length", ErrMalformedModel)
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafMarker {
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("%w: leaf %d has %d class values, want %d", ErrMalformedModel, i, len(t.Value[i]), nClasses)
			}
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("%w: node %d has children out of range", ErrMalformedModel, i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrMalformedModel, i, t.Feature[i])
		}
	}
	return nil
}
