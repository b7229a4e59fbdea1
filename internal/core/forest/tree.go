package forest

import (
	"math"
	"math/rand"
)

// Node is one node of a classification tree. Interior nodes route on
// Feature <= Threshold; leaves carry the class distribution of the training
// samples that reached them. Fields are exported for gob serialization.
type Node struct {
	Feature   int
	Threshold float64
	Left      int // node index, -1 for leaf
	Right     int
	Probs     []float64
}

// Tree is a single CART classification tree stored as a flat node slice with
// the root at index 0.
type Tree struct {
	Nodes []Node
}

func (t *Tree) predictProba(row []float64) []float64 {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.Left < 0 {
			return node.Probs
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

type treeBuilder struct {
	rows        [][]float64
	labels      []int
	numClasses  int
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

func growTree(rows [][]float64, labels, sampleIdx []int, numClasses, maxDepth, minLeaf, maxFeatures int, rng *rand.Rand) Tree {
	b := &treeBuilder{
		rows:        rows,
		labels:      labels,
		numClasses:  numClasses,
		maxDepth:    maxDepth,
		minLeaf:     minLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
	}
	b.build(sampleIdx, 0)
	return Tree{Nodes: b.nodes}
}

// build grows the subtree for the given samples and returns its node index.
func (b *treeBuilder) build(sampleIdx []int, depth int) int {
	counts := make([]float64, b.numClasses)
	for _, i := range sampleIdx {
		counts[b.labels[i]]++
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1})

	if depth >= b.maxDepth || len(sampleIdx) < 2*b.minLeaf || pure(counts) {
		b.nodes[idx].Probs = normalize(counts)
		return idx
	}

	feature, threshold, ok := b.bestSplit(sampleIdx, counts)
	if !ok {
		b.nodes[idx].Probs = normalize(counts)
		return idx
	}

	var left, right []int
	for _, i := range sampleIdx {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		b.nodes[idx].Probs = normalize(counts)
		return idx
	}

	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = b.build(left, depth+1)
	b.nodes[idx].Right = b.build(right, depth+1)
	return idx
}

// bestSplit evaluates a random feature subset and returns the split with the
// lowest weighted Gini impurity.
func (b *treeBuilder) bestSplit(sampleIdx []int, totalCounts []float64) (int, float64, bool) {
	dims := len(b.rows[0])
	candidates := b.rng.Perm(dims)[:b.maxFeatures]

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, feature := range candidates {
		ordered := make([]valueLabel, len(sampleIdx))
		for i, s := range sampleIdx {
			ordered[i] = valueLabel{b.rows[s][feature], b.labels[s]}
		}
		sortByValue(ordered)

		leftCounts := make([]float64, b.numClasses)
		rightCounts := append([]float64(nil), totalCounts...)
		nLeft, nRight := 0.0, float64(len(sampleIdx))

		for i := 0; i < len(ordered)-1; i++ {
			leftCounts[ordered[i].label]++
			rightCounts[ordered[i].label]--
			nLeft++
			nRight--

			if ordered[i].value == ordered[i+1].value {
				continue
			}

			gini := (nLeft*giniImpurity(leftCounts, nLeft) + nRight*giniImpurity(rightCounts, nRight)) / (nLeft + nRight)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feature
				bestThreshold = (ordered[i].value + ordered[i+1].value) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

type valueLabel struct {
	value float64
	label int
}

func sortByValue(vl []valueLabel) {
	// Insertion sort keeps ties in input order, which keeps tree growth
	// deterministic for a fixed seed.
	for i := 1; i < len(vl); i++ {
		for j := i; j > 0 && vl[j].value < vl[j-1].value; j-- {
			vl[j], vl[j-1] = vl[j-1], vl[j]
		}
	}
}

func giniImpurity(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func pure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func normalize(counts []float64) []float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	probs := make([]float64, len(counts))
	if total == 0 {
		return probs
	}
	for i, c := range counts {
		probs[i] = c / total
	}
	return probs
}
