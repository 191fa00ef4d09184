package forecast

import (
	"cmp"
	"context"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region forest-config
// ForestConfig controls the random forest regressor.
type ForestConfig struct {
	Trees   int    // number of bootstrap trees
	Seed    uint64 // base seed; tree i draws from PCG(Seed, i)
	Workers int    // concurrent tree fits; <= 0 means GOMAXPROCS
}

// DefaultForestConfig mirrors the forecaster used to generate the seed data.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:   100,
		Seed:    42,
		Workers: 0,
	}
}
// #endregion forest-config

// #region forest
// Forest is a bagged ensemble of multi-output regression trees. Each tree is
// grown to purity on a bootstrap sample using every feature at each split.
type Forest struct {
	config ForestConfig
}

// NewForest creates a forest forecaster.
func NewForest(config ForestConfig) *Forest {
	if config.Trees <= 0 {
		config.Trees = DefaultForestConfig().Trees
	}
	return &Forest{config: config}
}

// Fit grows the trees concurrently. The result does not depend on Workers.
func (f *Forest) Fit(ctx context.Context, samples []Sample) (Model, error) {
	if len(samples) == 0 {
		return nil, ErrInsufficientHistory
	}

	ds := newDataset(samples)
	trees := make([]*treeNode, f.config.Trees)

	workers := f.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(f.config.Seed, uint64(i)))
			trees[i] = ds.grow(ds.bootstrap(rng))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &forestModel{trees: trees}, nil
}

type forestModel struct {
	trees []*treeNode
}

// Predict averages the leaf values of every tree.
func (m *forestModel) Predict(ctx context.Context, key state.DayKey) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x := features(key)
	out := make([]float64, state.NumActivities)
	for _, t := range m.trees {
		leaf := t.find(x)
		for j := range out {
			out[j] += leaf[j]
		}
	}
	for j := range out {
		out[j] /= float64(len(m.trees))
	}
	return out, nil
}
// #endregion forest

// #region tree
type treeNode struct {
	value     [state.NumActivities]float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) find(x [numFeatures]float64) [state.NumActivities]float64 {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

type dataset struct {
	x [][numFeatures]float64
	y [][state.NumActivities]float64
}

func newDataset(samples []Sample) *dataset {
	ds := &dataset{
		x: make([][numFeatures]float64, len(samples)),
		y: make([][state.NumActivities]float64, len(samples)),
	}
	for i, s := range samples {
		ds.x[i] = features(s.Key)
		for j, v := range s.Activities {
			ds.y[i][j] = float64(v)
		}
	}
	return ds
}

func (ds *dataset) bootstrap(rng *rand.Rand) []int {
	n := len(ds.x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

// impurityEpsilon treats nodes whose squared error is below it as pure.
const impurityEpsilon = 1e-9

func (ds *dataset) grow(idx []int) *treeNode {
	n := &treeNode{value: ds.mean(idx)}
	if len(idx) < 2 || ds.sse(idx) <= impurityEpsilon {
		return n
	}

	feature, threshold, ok := ds.bestSplit(idx)
	if !ok {
		return n
	}

	var left, right []int
	for _, i := range idx {
		if ds.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	n.feature = feature
	n.threshold = threshold
	n.left = ds.grow(left)
	n.right = ds.grow(right)
	return n
}

// bestSplit scans every boundary between distinct feature values and keeps
// the one with the lowest summed squared error across all outputs. Ties go to
// the first candidate found, which keeps trees deterministic.
func (ds *dataset) bestSplit(idx []int) (int, float64, bool) {
	bestErr := 0.0
	bestFeature, bestThreshold := 0, 0.0
	found := false

	order := slices.Clone(idx)
	for f := 0; f < numFeatures; f++ {
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(ds.x[a][f], ds.x[b][f])
		})

		var total, totalSq [state.NumActivities]float64
		for _, i := range order {
			for j, v := range ds.y[i] {
				total[j] += v
				totalSq[j] += v * v
			}
		}

		var leftSum, leftSq [state.NumActivities]float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			for j, v := range ds.y[i] {
				leftSum[j] += v
				leftSq[j] += v * v
			}
			lo, hi := ds.x[i][f], ds.x[order[k+1]][f]
			if lo == hi {
				continue
			}
			nl := float64(k + 1)
			nr := float64(len(order) - k - 1)
			var e float64
			for j := range leftSum {
				rs := total[j] - leftSum[j]
				rq := totalSq[j] - leftSq[j]
				e += leftSq[j] - leftSum[j]*leftSum[j]/nl
				e += rq - rs*rs/nr
			}
			if !found || e < bestErr {
				bestErr = e
				bestFeature = f
				bestThreshold = (lo + hi) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (ds *dataset) mean(idx []int) [state.NumActivities]float64 {
	var out [state.NumActivities]float64
	if len(idx) == 0 {
		return out
	}
	for _, i := range idx {
		for j, v := range ds.y[i] {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(idx))
	}
	return out
}

func (ds *dataset) sse(idx []int) float64 {
	m := ds.mean(idx)
	var e float64
	for _, i := range idx {
		for j, v := range ds.y[i] {
			d := v - m[j]
			e += d * d
		}
	}
	return e
}
// #endregion tree
