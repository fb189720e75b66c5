package detector

import (
	"math"
	"math/rand"
	"sync"

	"github.com/sentinelops/sentinel/internal/logger"
)

const (
	defaultNumTrees      = 100
	defaultSubsampleSize = 64
	defaultTrainSamples  = 50
	defaultScoreCutoff   = 0.6
)

// IsolationForestDetector scores samples with an isolation forest trained
// lazily on the metric's history. Training happens once, when enough samples
// have accumulated; it is repeated only on an explicit Reset.
type IsolationForestDetector struct {
	mu           sync.Mutex
	forest       *forest
	numTrees     int
	subsample    int
	trainSamples int
	scoreCutoff  float64
	rng          *rand.Rand
}

type IsolationForestConfig struct {
	NumTrees      int
	SubsampleSize int
	TrainSamples  int
	ScoreCutoff   float64
	Seed          int64
}

func NewIsolationForest(cfg IsolationForestConfig) *IsolationForestDetector {
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = defaultNumTrees
	}
	if cfg.SubsampleSize <= 0 {
		cfg.SubsampleSize = defaultSubsampleSize
	}
	if cfg.TrainSamples <= 0 {
		cfg.TrainSamples = defaultTrainSamples
	}
	if cfg.ScoreCutoff <= 0 {
		cfg.ScoreCutoff = defaultScoreCutoff
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	return &IsolationForestDetector{
		numTrees:     cfg.NumTrees,
		subsample:    cfg.SubsampleSize,
		trainSamples: cfg.TrainSamples,
		scoreCutoff:  cfg.ScoreCutoff,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (d *IsolationForestDetector) Method() string {
	return MethodIsolationForest
}

func (d *IsolationForestDetector) IsTrained() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.forest != nil
}

// Reset discards the trained model; the next Detect call with enough history
// retrains it.
func (d *IsolationForestDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forest = nil
}

func (d *IsolationForestDetector) Detect(window []float64, current float64) Result {
	d.mu.Lock()
	if d.forest == nil {
		if len(window) < d.trainSamples {
			d.mu.Unlock()
			return Result{Method: MethodInsufficientData}
		}
		d.forest = fitForest(window, d.numTrees, d.subsample, d.rng)
		logger.Debugf("Isolation forest trained on %d samples", len(window))
	}
	f := d.forest
	d.mu.Unlock()

	score := f.score(current)
	isAnomaly := score > d.scoreCutoff

	confidence := 0.0
	if isAnomaly {
		confidence = math.Min(maxConfidence, score)
	}

	// The band is reported from the trailing window for display consistency;
	// the verdict itself comes from the model score.
	recent := tail(window, defaultWindowSize)
	m := mean(recent)
	sd := stddev(recent, m)

	return Result{
		IsAnomaly:  isAnomaly,
		Confidence: confidence,
		Expected:   expectedRange(m, sd, 2.0),
		Method:     MethodIsolationForest,
	}
}

// forest is a one-dimensional isolation forest. Anomaly score follows the
// standard formulation: s(x, n) = 2^(-E(h(x))/c(n)).
type forest struct {
	trees   []*isoTree
	cFactor float64
}

type isoTree struct {
	splitValue float64
	left       *isoTree
	right      *isoTree
	lo         float64
	hi         float64
	size       int
	leaf       bool
}

func fitForest(data []float64, numTrees, subsampleSize int, rng *rand.Rand) *forest {
	// c(n) normalizes against the per-tree sample size, which is the
	// subsample size unless the window is smaller.
	effective := len(data)
	if subsampleSize < effective {
		effective = subsampleSize
	}

	f := &forest{
		trees:   make([]*isoTree, numTrees),
		cFactor: avgPathLength(effective),
	}

	maxHeight := int(math.Ceil(math.Log2(float64(subsampleSize))))
	for i := range f.trees {
		sample := subsample(data, subsampleSize, rng)
		f.trees[i] = buildTree(sample, 0, maxHeight, rng)
	}
	return f
}

func subsample(data []float64, size int, rng *rand.Rand) []float64 {
	n := len(data)
	if size >= n {
		out := make([]float64, n)
		copy(out, data)
		return out
	}

	indices := rng.Perm(n)[:size]
	out := make([]float64, size)
	for i, idx := range indices {
		out[i] = data[idx]
	}
	return out
}

func buildTree(data []float64, depth, maxHeight int, rng *rand.Rand) *isoTree {
	t := &isoTree{size: len(data)}
	if len(data) == 0 {
		t.leaf = true
		return t
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	t.lo, t.hi = minVal, maxVal

	if len(data) == 1 || depth >= maxHeight || minVal == maxVal {
		t.leaf = true
		return t
	}

	t.splitValue = minVal + rng.Float64()*(maxVal-minVal)

	var left, right []float64
	for _, v := range data {
		if v < t.splitValue {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		t.leaf = true
		return t
	}

	t.left = buildTree(left, depth+1, maxHeight, rng)
	t.right = buildTree(right, depth+1, maxHeight, rng)
	return t
}

func (t *isoTree) pathLength(v float64, depth int) float64 {
	// A value beyond everything this node saw would be separated by the
	// first split drawn past the data range, so it counts as isolated one
	// level down. Without this, a query outside the training range rides
	// down to the nearest extreme leaf and inherits its size credit, which
	// over duplicate-heavy windows keeps even absurd values below the
	// cutoff.
	if v < t.lo || v > t.hi {
		return float64(depth) + 1
	}
	if t.leaf {
		return float64(depth) + avgPathLength(t.size)
	}
	if v < t.splitValue {
		return t.left.pathLength(v, depth+1)
	}
	return t.right.pathLength(v, depth+1)
}

func (f *forest) score(v float64) float64 {
	if f.cFactor == 0 {
		return 0.5
	}

	total := 0.0
	for _, t := range f.trees {
		total += t.pathLength(v, 0)
	}
	avg := total / float64(len(f.trees))
	return math.Pow(2, -avg/f.cFactor)
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search, used to normalize scores and to credit unbuilt branches.
func avgPathLength(n int) float64 {
	switch {
	case n > 2:
		fn := float64(n)
		return 2.0*(math.Log(fn-1.0)+0.5772156649) - 2.0*(fn-1.0)/fn
	case n == 2:
		return 1.0
	default:
		return 0.0
	}
}
