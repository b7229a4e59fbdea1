package forest

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Config holds the forest hyperparameters. Defaults match the training
// pipeline this replaces: 100 trees, unlimited-ish depth, sqrt feature
// subsampling.
type Config struct {
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

func DefaultConfig() Config {
	return Config{
		NumTrees: 100,
		MaxDepth: 16,
		MinLeaf:  1,
		Seed:     42,
	}
}

// Forest is a trained random forest classifier. Immutable after training.
type Forest struct {
	Trees      []Tree
	NumClasses int
}

// Train fits a random forest on the given rows. Each tree sees a bootstrap
// sample of the rows and considers sqrt(d) random features per split. All
// randomness flows from cfg.Seed, so training is reproducible.
func Train(rows [][]float64, labels []int, numClasses int, cfg Config) (*Forest, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train forest on empty dataset")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("row/label count mismatch: %d vs %d", len(rows), len(labels))
	}
	if cfg.NumTrees <= 0 {
		return nil, fmt.Errorf("forest needs at least one tree")
	}

	dims := len(rows[0])
	maxFeatures := int(math.Sqrt(float64(dims)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	f := &Forest{
		Trees:      make([]Tree, cfg.NumTrees),
		NumClasses: numClasses,
	}

	for t := 0; t < cfg.NumTrees; t++ {
		bootstrap := make([]int, len(rows))
		for i := range bootstrap {
			bootstrap[i] = rng.Intn(len(rows))
		}
		f.Trees[t] = growTree(rows, labels, bootstrap, numClasses, cfg.MaxDepth, cfg.MinLeaf, maxFeatures, rng)
	}

	return f, nil
}

// PredictProba averages per-tree class distributions. The result sums to 1.
func (f *Forest) PredictProba(row []float64) []float64 {
	probs := make([]float64, f.NumClasses)
	for i := range f.Trees {
		floats.Add(probs, f.Trees[i].predictProba(row))
	}
	floats.Scale(1/float64(len(f.Trees)), probs)
	return probs
}

// Predict returns the index of the most probable class.
func (f *Forest) Predict(row []float64) int {
	return floats.MaxIdx(f.PredictProba(row))
}
