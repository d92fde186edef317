package mlp

import (
	"fmt"

	"github.com/ChizhovVadim/InputSelection/internal/dataset"
	"github.com/ChizhovVadim/InputSelection/internal/ml"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"gonum.org/v1/gonum/mat"
)

// Objective is the mean squared error of a network over a data set.
type Objective struct {
	network *Network
	dataSet *dataset.DataSet
	cost    ml.IModelCost
}

func NewObjective(network *Network, dataSet *dataset.DataSet) *Objective {
	return &Objective{
		network: network,
		dataSet: dataSet,
		cost:    &ml.MSECost{},
	}
}

func (o *Objective) HasModel() bool   { return o.network != nil }
func (o *Objective) HasDataSet() bool { return o.dataSet != nil }

func (o *Objective) Model() selection.IModel {
	return o.network
}

func (o *Objective) DataSet() selection.IDataSet {
	return o.dataSet
}

func (o *Objective) Network() *Network {
	return o.network
}

type sample struct {
	input  []float64
	target []float64
}

// samples materializes active inputs and targets of the given instances.
func (o *Objective) samples(instances []int) []sample {
	var inputs = o.dataSet.ActiveInputs()
	var targets = o.dataSet.TargetIndices()
	var result = make([]sample, len(instances))
	for i, instance := range instances {
		var s = sample{
			input:  make([]float64, len(inputs)),
			target: make([]float64, len(targets)),
		}
		for j, variable := range inputs {
			s.input[j] = o.dataSet.Value(instance, variable)
		}
		for j, variable := range targets {
			s.target[j] = o.dataSet.Value(instance, variable)
		}
		result[i] = s
	}
	return result
}

// loss is the average cost per sample and output.
func (o *Objective) loss(samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total float64
	for i := range samples {
		var predicted = o.network.Forward(samples[i].input)
		for j, target := range samples[i].target {
			total += o.cost.Cost(predicted[j], target)
		}
	}
	return total / float64(len(samples)*o.network.OutputCount())
}

// accumulate runs back-propagation over samples, gradients stay in the layers.
// The returned loss and the gradients are scaled like loss.
func (o *Objective) accumulate(samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var scale = 1 / float64(len(samples)*o.network.OutputCount())
	var total float64
	var outputErrors = make([]float64, o.network.OutputCount())
	for i := range samples {
		var predicted = o.network.Forward(samples[i].input)
		for j, target := range samples[i].target {
			total += o.cost.Cost(predicted[j], target)
			outputErrors[j] = o.cost.CostPrime(predicted[j], target) * scale
		}
		o.network.backward(outputErrors)
	}
	return total * scale
}

// TrainingLoss and SelectionLoss evaluate the current weights.
func (o *Objective) TrainingLoss() float64 {
	return o.loss(o.samples(o.dataSet.TrainingIndices()))
}

func (o *Objective) SelectionLoss() float64 {
	return o.loss(o.samples(o.dataSet.SelectionIndices()))
}

// jacobian fills one row per (sample, output) with d output / d parameter
// and the matching residual output - target.
func (o *Objective) jacobian(samples []sample, jacobian *mat.Dense, residuals *mat.VecDense) {
	var outputs = o.network.OutputCount()
	var unit = make([]float64, outputs)
	o.network.resetGradients()
	for i := range samples {
		var predicted = o.network.Forward(samples[i].input)
		for j, target := range samples[i].target {
			var row = i*outputs + j
			residuals.SetVec(row, predicted[j]-target)
			unit[j] = 1
			o.network.backward(unit)
			unit[j] = 0
			o.network.gradients(jacobian.RawRowView(row))
		}
	}
}

// TestingLoss evaluates parameters on the testing partition.
func (o *Objective) TestingLoss(parameters []float64) (float64, error) {
	var testing = o.dataSet.TestingIndices()
	if len(testing) == 0 {
		return 0, fmt.Errorf("%w: no testing instances", selection.ErrConfiguration)
	}
	if err := o.network.SetWeights(parameters); err != nil {
		return 0, err
	}
	var targets = o.dataSet.TargetIndices()
	predictions, err := o.network.Predict(o.dataSet.Matrix(testing, o.dataSet.ActiveInputs()))
	if err != nil {
		return 0, err
	}
	var expected = o.dataSet.Matrix(testing, targets)
	var total float64
	for i := range testing {
		for j := range targets {
			total += o.cost.Cost(predictions.At(i, j), expected.At(i, j))
		}
	}
	return total / float64(len(testing)*len(targets)), nil
}
