package selection

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

type fakeModel struct {
	inputs    int
	weights   []float64
	perturbed int
	randomize int
	empty     bool
}

func (m *fakeModel) ActiveInputCount() int { return m.inputs }
func (m *fakeModel) GrowInput()            { m.inputs++ }
func (m *fakeModel) IsEmpty() bool         { return m.empty }

func (m *fakeModel) PruneInput(index int) error {
	if index < 0 || index >= m.inputs || m.inputs == 1 {
		return ErrInvalidArgument
	}
	m.inputs--
	return nil
}

func (m *fakeModel) PerturbWeights(magnitude float64) { m.perturbed++ }
func (m *fakeModel) RandomizeWeightsNormal()          { m.randomize++ }

func (m *fakeModel) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

func (m *fakeModel) Predict(inputs mat.Matrix) (*mat.Dense, error) {
	var rows, _ = inputs.Dims()
	return mat.NewDense(rows, 1, nil), nil
}

type fakeDataSet struct {
	columns [][]float64
	inputs  []int
	targets []int
	heldOut int
	active  InputMask
}

func (d *fakeDataSet) VariableCount() int         { return len(d.columns) }
func (d *fakeDataSet) InputIndices() []int        { return d.inputs }
func (d *fakeDataSet) TargetIndices() []int       { return d.targets }
func (d *fakeDataSet) HeldOutSampleCount() int    { return d.heldOut }
func (d *fakeDataSet) Column(index int) []float64 { return append([]float64(nil), d.columns[index]...) }

func (d *fakeDataSet) TrainingIndices() []int {
	var result = make([]int, len(d.columns[0]))
	for i := range result {
		result[i] = i
	}
	return result
}

func (d *fakeDataSet) LinearCorrelations() *mat.Dense {
	var result = mat.NewDense(len(d.inputs), len(d.targets), nil)
	for i, input := range d.inputs {
		for j, target := range d.targets {
			result.Set(i, j, correlation(d.columns[input], d.columns[target]))
		}
	}
	return result
}

func (d *fakeDataSet) SetActiveInputs(mask InputMask) error {
	d.active = mask.Clone()
	return nil
}

type fakeObjective struct {
	model   *fakeModel
	dataSet *fakeDataSet
}

func (o *fakeObjective) HasModel() bool    { return o.model != nil }
func (o *fakeObjective) Model() IModel     { return o.model }
func (o *fakeObjective) HasDataSet() bool  { return o.dataSet != nil }
func (o *fakeObjective) DataSet() IDataSet { return o.dataSet }

var errTraining = errors.New("training diverged")

// fakeDriver replays scripted outcomes; after the script is exhausted it
// repeats the last one. The model weights become the call number.
type fakeDriver struct {
	objective *fakeObjective
	outcomes  []TrialOutcome
	calls     int
	failAt    int
}

func newFakeDriver(inputs int, outcomes ...TrialOutcome) *fakeDriver {
	var columns = make([][]float64, inputs+1)
	for i := range columns {
		columns[i] = []float64{0, 1, 2, 3}
	}
	var ds = &fakeDataSet{columns: columns, targets: []int{inputs}, heldOut: 2}
	for i := 0; i < inputs; i++ {
		ds.inputs = append(ds.inputs, i)
	}
	return &fakeDriver{
		objective: &fakeObjective{
			model:   &fakeModel{inputs: inputs},
			dataSet: ds,
		},
		outcomes: outcomes,
	}
}

func (d *fakeDriver) HasObjective() bool               { return d.objective != nil }
func (d *fakeDriver) Objective() IObjective            { return d.objective }
func (d *fakeDriver) MainAlgorithmKind() AlgorithmKind { return GradientDescent }

func (d *fakeDriver) RunTraining(ctx context.Context) (RawResult, error) {
	d.calls++
	if d.failAt != 0 && d.calls == d.failAt {
		return nil, errTraining
	}
	d.objective.model.weights = []float64{float64(d.calls)}
	var outcome = d.outcomes[min(d.calls, len(d.outcomes))-1]
	return GradientDescentResult{
		FinalPerformance:          outcome.Training,
		FinalSelectionPerformance: outcome.Selection,
		Epochs:                    1,
	}, nil
}
