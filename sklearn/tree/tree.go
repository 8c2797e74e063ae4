// Package tree implements CART regression trees.
//
// DecisionTreeRegressor splits on the threshold that most reduces the sum of
// squared errors of the target, scanning each feature in sorted order with
// running sums so one node costs O(n log n) per feature. Leaves predict the
// mean target of their samples.
//
// The fitted tree is a flat slice of nodes so it gob-encodes compactly as
// part of a forest.
package tree

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/pkg/errors"
)

// Node is one tree node. Left and Right index into DecisionTreeRegressor.Nodes;
// both are -1 for a leaf. Samples with X[Feature] <= Threshold go left.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Impurity  float64
	NSamples  int
	Depth     int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// DecisionTreeRegressor is a CART regressor.
type DecisionTreeRegressor struct {
	State *model.StateManager

	MaxDepth        int // 0 = unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // features tried per split, 0 = all
	RandomState     int64

	Nodes              []Node
	NFeatures          int
	FeatureImportances []float64
}

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.MaxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum node size that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples in each child.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.MinSamplesLeaf = n
	}
}

// WithMaxFeatures draws n candidate features per split; 0 tries all.
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.MaxFeatures = n
	}
}

// WithRandomState seeds the feature sampling.
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.RandomState = seed
	}
}

// NewDecisionTreeRegressor creates an unfitted tree. Defaults match
// scikit-learn: unlimited depth, min_samples_split 2, min_samples_leaf 1.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		State:           model.NewStateManager(),
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// Name returns "DecisionTreeRegressor".
func (dt *DecisionTreeRegressor) Name() string {
	return "DecisionTreeRegressor"
}

// Fit grows the tree on every row of X.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	r, _ := X.Dims()
	sample := make([]int, r)
	for i := range sample {
		sample[i] = i
	}
	return dt.FitSample(X, y, sample)
}

// FitSample grows the tree on the rows of X listed in sample. Rows may
// repeat, which is how a forest passes a bootstrap draw.
func (dt *DecisionTreeRegressor) FitSample(X, y mat.Matrix, sample []int) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 || len(sample) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("DecisionTreeRegressor.Fit", "y must be a column vector")
	}
	if dt.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.MinSamplesLeaf)
	}
	if dt.State == nil {
		dt.State = model.NewStateManager()
	}

	b := &builder{
		dt:    dt,
		cols:  make([][]float64, c),
		y:     make([]float64, r),
		imp:   make([]float64, c),
		rng:   rand.New(rand.NewSource(dt.RandomState)),
		feats: make([]int, c),
	}
	for j := 0; j < c; j++ {
		b.cols[j] = mat.Col(nil, j, X)
		b.feats[j] = j
	}
	for i := 0; i < r; i++ {
		b.y[i] = y.At(i, 0)
	}

	idx := make([]int, len(sample))
	copy(idx, sample)
	dt.Nodes = dt.Nodes[:0]
	b.grow(idx, 0)

	var total float64
	for _, v := range b.imp {
		total += v
	}
	if total > 0 {
		for j := range b.imp {
			b.imp[j] /= total
		}
	}
	dt.FeatureImportances = b.imp
	dt.NFeatures = c
	dt.State.SetFitted()
	dt.State.SetDimensions(c, len(sample))
	return nil
}

type builder struct {
	dt    *DecisionTreeRegressor
	cols  [][]float64
	y     []float64
	imp   []float64
	rng   *rand.Rand
	feats []int
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	nLeft     int
}

// grow appends the subtree for idx and returns its node index.
func (b *builder) grow(idx []int, depth int) int {
	dt := b.dt
	var sum, sumSq float64
	for _, i := range idx {
		v := b.y[i]
		sum += v
		sumSq += v * v
	}
	n := float64(len(idx))
	sse := sumSq - sum*sum/n
	if sse < 0 {
		sse = 0
	}

	id := len(dt.Nodes)
	dt.Nodes = append(dt.Nodes, Node{
		Left:     -1,
		Right:    -1,
		Value:    sum / n,
		Impurity: sse / n,
		NSamples: len(idx),
		Depth:    depth,
	})

	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) ||
		len(idx) < dt.MinSamplesSplit ||
		len(idx) < 2*dt.MinSamplesLeaf ||
		sse <= 1e-12*n {
		return id
	}

	best, ok := b.bestSplit(idx, sum, sse)
	if !ok {
		return id
	}

	// Partition idx in place by the chosen feature.
	col := b.cols[best.feature]
	sort.SliceStable(idx, func(a, c int) bool {
		return col[idx[a]] < col[idx[c]]
	})
	left, right := idx[:best.nLeft], idx[best.nLeft:]

	b.imp[best.feature] += best.gain
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)

	node := &dt.Nodes[id]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = l
	node.Right = r
	return id
}

func (b *builder) candidateFeatures() []int {
	k := b.dt.MaxFeatures
	if k <= 0 || k >= len(b.feats) {
		return b.feats
	}
	b.rng.Shuffle(len(b.feats), func(i, j int) {
		b.feats[i], b.feats[j] = b.feats[j], b.feats[i]
	})
	out := append([]int(nil), b.feats[:k]...)
	sort.Ints(out)
	return out
}

// bestSplit scans every candidate feature in sorted order. Gain is the drop
// in total squared error: sse - (sseLeft + sseRight).
func (b *builder) bestSplit(idx []int, sum, sse float64) (split, bool) {
	minLeaf := b.dt.MinSamplesLeaf
	n := len(idx)
	order := make([]int, n)
	best := split{feature: -1}

	for _, f := range b.candidateFeatures() {
		col := b.cols[f]
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool {
			return col[order[a]] < col[order[c]]
		})

		var lSum, lSq float64
		var totalSq float64
		for _, i := range order {
			totalSq += b.y[i] * b.y[i]
		}
		for k := 0; k < n-1; k++ {
			v := b.y[order[k]]
			lSum += v
			lSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < minLeaf {
				continue
			}
			if nr < minLeaf {
				break
			}
			x0, x1 := col[order[k]], col[order[k+1]]
			if x0 == x1 {
				continue
			}

			rSum := sum - lSum
			rSq := totalSq - lSq
			child := (lSq - lSum*lSum/float64(nl)) + (rSq - rSum*rSum/float64(nr))
			gain := sse - child
			if gain > best.gain+1e-12 {
				best = split{feature: f, threshold: (x0 + x1) / 2, gain: gain, nLeft: nl}
			}
		}
	}
	return best, best.feature >= 0
}

// Predict returns an n×1 matrix of leaf means.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Predict")
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != dt.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", dt.NFeatures, c, 1)
	}
	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, dt.PredictRow(row))
	}
	return out, nil
}

// PredictRow walks one feature row to its leaf. The tree must be fitted and
// len(row) must equal NFeatures.
func (dt *DecisionTreeRegressor) PredictRow(row []float64) float64 {
	n := &dt.Nodes[0]
	for !n.IsLeaf() {
		if row[n.Feature] <= n.Threshold {
			n = &dt.Nodes[n.Left]
		} else {
			n = &dt.Nodes[n.Right]
		}
	}
	return n.Value
}

// IsFitted reports whether Fit has succeeded.
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.State.IsFitted() && len(dt.Nodes) > 0
}

// GetDepth returns the depth of the deepest leaf.
func (dt *DecisionTreeRegressor) GetDepth() int {
	depth := 0
	for _, n := range dt.Nodes {
		if n.Depth > depth {
			depth = n.Depth
		}
	}
	return depth
}

// GetNLeaves returns the number of leaves.
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	leaves := 0
	for i := range dt.Nodes {
		if dt.Nodes[i].IsLeaf() {
			leaves++
		}
	}
	return leaves
}

// GetFeatureImportances returns a copy of the normalized impurity decrease
// per feature.
func (dt *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	return append([]float64(nil), dt.FeatureImportances...)
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         dt.MaxDepth,
		"min_samples_split": dt.MinSamplesSplit,
		"min_samples_leaf":  dt.MinSamplesLeaf,
		"max_features":      dt.MaxFeatures,
		"random_state":      dt.RandomState,
	}
}

func (dt *DecisionTreeRegressor) String() string {
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_leaf=%d, nodes=%d)",
		dt.MaxDepth, dt.MinSamplesLeaf, len(dt.Nodes))
}
