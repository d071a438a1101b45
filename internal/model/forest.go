package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// leafChild marks the absence of a child node
const leafChild = -1

type nodeSpec struct {
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Left      int       `json:"left" yaml:"left"`
	Right     int       `json:"right" yaml:"right"`
	Value     []float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

func (n nodeSpec) isLeaf() bool {
	return n.Left == leafChild && n.Right == leafChild
}

type treeSpec struct {
	Nodes []nodeSpec `json:"nodes" yaml:"nodes"`
}

type tree struct {
	nodes []nodeSpec
	// leaf class probabilities, indexed like nodes; nil for split nodes
	probs [][]float64
}

// Forest is a random forest of binary decision trees. A sample goes left
// when x[feature] <= threshold. Per-tree leaf weights are normalized to
// probabilities and averaged across trees; the predicted class is the
// argmax, first class winning ties.
type Forest struct {
	nFeatures int
	classes   []types.Label
	trees     []tree
}

func newForest(a *artifact) (*Forest, error) {
	if err := checkClasses(a.Classes); err != nil {
		return nil, err
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}

	f := &Forest{
		nFeatures: a.NFeatures,
		classes:   append([]types.Label(nil), a.Classes...),
		trees:     make([]tree, 0, len(a.Trees)),
	}

	for ti, spec := range a.Trees {
		t, err := buildTree(spec, a.NFeatures, len(a.Classes))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		f.trees = append(f.trees, t)
	}

	return f, nil
}

func buildTree(spec treeSpec, nFeatures, nClasses int) (tree, error) {
	n := len(spec.Nodes)
	if n == 0 {
		return tree{}, fmt.Errorf("tree has no nodes")
	}

	t := tree{
		nodes: append([]nodeSpec(nil), spec.Nodes...),
		probs: make([][]float64, n),
	}

	for i, node := range t.nodes {
		if node.isLeaf() {
			if len(node.Value) != nClasses {
				return tree{}, fmt.Errorf("node %d: leaf has %d values for %d classes", i, len(node.Value), nClasses)
			}
			for _, v := range node.Value {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return tree{}, fmt.Errorf("node %d: leaf weight %v is invalid", i, v)
				}
			}
			sum := floats.Sum(node.Value)
			if sum <= 0 {
				return tree{}, fmt.Errorf("node %d: leaf weights sum to zero", i)
			}
			p := append([]float64(nil), node.Value...)
			floats.Scale(1/sum, p)
			t.probs[i] = p
			continue
		}

		if node.Feature < 0 || node.Feature >= nFeatures {
			return tree{}, fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		if math.IsNaN(node.Threshold) {
			return tree{}, fmt.Errorf("node %d: threshold is NaN", i)
		}
		// children always come after their parent, which rules out cycles
		if node.Left <= i || node.Left >= n || node.Right <= i || node.Right >= n {
			return tree{}, fmt.Errorf("node %d: child indices (%d, %d) out of range", i, node.Left, node.Right)
		}
	}

	return t, nil
}

func (t tree) leaf(x []float64) []float64 {
	i := 0
	for {
		node := t.nodes[i]
		if node.isLeaf() {
			return t.probs[i]
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

func (f *Forest) Kind() string { return KindRandomForest }

func (f *Forest) NumFeatures() int { return f.nFeatures }

func (f *Forest) Classes() []types.Label {
	return append([]types.Label(nil), f.classes...)
}

// NumTrees returns the ensemble size
func (f *Forest) NumTrees() int { return len(f.trees) }

// Probabilities returns the averaged class probabilities for one sample,
// in the order of Classes.
func (f *Forest) Probabilities(features []float64) ([]float64, error) {
	if err := checkFeatureCount(features, f.nFeatures); err != nil {
		return nil, err
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %d is not finite: %v", i, v)
		}
	}

	probs := make([]float64, len(f.classes))
	for _, t := range f.trees {
		floats.Add(probs, t.leaf(features))
	}
	floats.Scale(1/float64(len(f.trees)), probs)
	return probs, nil
}

// Predict returns the most probable class for one sample
func (f *Forest) Predict(features []float64) (types.Label, error) {
	probs, err := f.Probabilities(features)
	if err != nil {
		return "", err
	}
	return f.classes[floats.MaxIdx(probs)], nil
}
