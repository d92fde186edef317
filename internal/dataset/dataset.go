package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Use int

const (
	Unused Use = iota
	Input
	Target
)

// Range is the span of a column before scaling.
type Range struct {
	Minimum float64
	Maximum float64
}

// DataSet keeps variables column-major and splits instances into
// training, selection (held-out) and testing partitions.
type DataSet struct {
	names     []string
	columns   [][]float64
	uses      []Use
	active    []bool
	training  []int
	selection []int
	testing   []int
}

// New builds a data set where every instance is used for training.
func New(columns [][]float64, names []string, uses []Use) (*DataSet, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("data set has no variables")
	}
	if len(names) != len(columns) || len(uses) != len(columns) {
		return nil, fmt.Errorf("data set has %v columns, %v names and %v uses", len(columns), len(names), len(uses))
	}
	var samples = len(columns[0])
	for i, column := range columns {
		if len(column) != samples {
			return nil, fmt.Errorf("column %v has %v samples, want %v", names[i], len(column), samples)
		}
	}
	var ds = &DataSet{
		names:   names,
		columns: columns,
		uses:    uses,
	}
	ds.active = make([]bool, len(ds.InputIndices()))
	for i := range ds.active {
		ds.active[i] = true
	}
	ds.training = sequence(samples)
	return ds, nil
}

func (ds *DataSet) SampleCount() int        { return len(ds.columns[0]) }
func (ds *DataSet) VariableCount() int      { return len(ds.columns) }
func (ds *DataSet) Names() []string         { return ds.names }
func (ds *DataSet) Uses() []Use             { return ds.uses }
func (ds *DataSet) TrainingIndices() []int  { return ds.training }
func (ds *DataSet) SelectionIndices() []int { return ds.selection }
func (ds *DataSet) TestingIndices() []int   { return ds.testing }
func (ds *DataSet) HeldOutSampleCount() int { return len(ds.selection) }

func (ds *DataSet) InputIndices() []int {
	return ds.indicesOf(Input)
}

func (ds *DataSet) TargetIndices() []int {
	return ds.indicesOf(Target)
}

func (ds *DataSet) indicesOf(use Use) []int {
	var result []int
	for i, u := range ds.uses {
		if u == use {
			result = append(result, i)
		}
	}
	return result
}

func (ds *DataSet) Column(index int) []float64 {
	return append([]float64(nil), ds.columns[index]...)
}

// LinearCorrelations returns pearson correlations inputs x targets over all
// instances. A constant column has zero correlation.
func (ds *DataSet) LinearCorrelations() *mat.Dense {
	var inputs, targets = ds.InputIndices(), ds.TargetIndices()
	if len(inputs) == 0 || len(targets) == 0 {
		return nil
	}
	var result = mat.NewDense(len(inputs), len(targets), nil)
	for i, input := range inputs {
		for j, target := range targets {
			var r = stat.Correlation(ds.columns[input], ds.columns[target], nil)
			if math.IsNaN(r) {
				r = 0
			}
			result.Set(i, j, math.Max(-1, math.Min(1, r)))
		}
	}
	return result
}

// SetActiveInputs restricts the inputs fed to the model; mask is over InputIndices.
func (ds *DataSet) SetActiveInputs(mask selection.InputMask) error {
	if len(mask) != len(ds.active) {
		return fmt.Errorf("%w: mask has %v inputs, data set has %v", selection.ErrInvalidArgument, len(mask), len(ds.active))
	}
	if mask.Count() == 0 {
		return fmt.Errorf("%w: at least one input must be active", selection.ErrInvalidArgument)
	}
	copy(ds.active, mask)
	return nil
}

// ActiveInputs returns variable indices of the active inputs.
func (ds *DataSet) ActiveInputs() []int {
	var inputs = ds.InputIndices()
	var result = make([]int, 0, len(inputs))
	for i, index := range inputs {
		if ds.active[i] {
			result = append(result, index)
		}
	}
	return result
}

// Split shuffles instances and assigns them to the three partitions.
func (ds *DataSet) Split(trainingRatio, selectionRatio float64, seed int64) error {
	if trainingRatio < 0 || selectionRatio < 0 || trainingRatio+selectionRatio > 1 {
		return fmt.Errorf("%w: bad split ratios %v %v", selection.ErrInvalidArgument, trainingRatio, selectionRatio)
	}
	var samples = sequence(ds.SampleCount())
	var rnd = rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	var trainingSize = int(math.Round(trainingRatio * float64(len(samples))))
	var selectionSize = int(math.Round(selectionRatio * float64(len(samples))))
	selectionSize = min(selectionSize, len(samples)-trainingSize)
	ds.training = samples[:trainingSize]
	ds.selection = samples[trainingSize : trainingSize+selectionSize]
	ds.testing = samples[trainingSize+selectionSize:]
	return nil
}

// ScaleInputsMinimumMaximum scales every input column to [-1,1].
func (ds *DataSet) ScaleInputsMinimumMaximum() []Range {
	var inputs = ds.InputIndices()
	var ranges = make([]Range, len(inputs))
	for i, index := range inputs {
		var column = ds.columns[index]
		var lo, hi = floats.Min(column), floats.Max(column)
		ranges[i] = Range{Minimum: lo, Maximum: hi}
		if hi == lo {
			continue
		}
		for k, v := range column {
			column[k] = 2*(v-lo)/(hi-lo) - 1
		}
	}
	return ranges
}

// Matrix gathers variables for the given instances, one row per instance.
func (ds *DataSet) Matrix(samples []int, variables []int) *mat.Dense {
	if len(samples) == 0 || len(variables) == 0 {
		return nil
	}
	var result = mat.NewDense(len(samples), len(variables), nil)
	for i, sample := range samples {
		for j, variable := range variables {
			result.Set(i, j, ds.columns[variable][sample])
		}
	}
	return result
}

// Value returns one cell.
func (ds *DataSet) Value(sample, variable int) float64 {
	return ds.columns[variable][sample]
}

// InputIndex returns the position in uses of the n-th input.
// It returns len(uses) when there are not enough inputs.
func InputIndex(uses []Use, n int) int {
	var j = 0
	for i, use := range uses {
		if use != Input {
			continue
		}
		if j == n {
			return i
		}
		j++
	}
	return len(uses)
}

func sequence(n int) []int {
	var result = make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}
