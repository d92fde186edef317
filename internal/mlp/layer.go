package mlp

import (
	"math/rand"

	"github.com/ChizhovVadim/InputSelection/internal/ml"
)

type Neuron struct {
	Activation float64
	Error      float64
	Prime      float64
}

type Layer struct {
	activationFn ml.IActivationFn
	inputs       []float64
	outputs      []Neuron
	weights      ml.Matrix
	biases       ml.Matrix
	wGradients   ml.Gradients
	bGradients   ml.Gradients
}

func NewLayer(
	inputSize int,
	outputSize int,
	activationFn ml.IActivationFn,
) *Layer {
	return &Layer{
		outputs:      make([]Neuron, outputSize),
		activationFn: activationFn,
		weights:      ml.NewMatrix(outputSize, inputSize),
		biases:       ml.NewMatrix(outputSize, 1),
		wGradients:   ml.NewGradients(outputSize, inputSize),
		bGradients:   ml.NewGradients(outputSize, 1),
	}
}

func (layer *Layer) InitWeights(rnd *rand.Rand) *Layer {
	var outputSize = layer.weights.Rows
	var inputSize = layer.weights.Cols
	var variance = 2.0 / float64(inputSize+outputSize)
	ml.InitUniform(rnd, layer.weights.Data, variance)
	return layer
}

func (layer *Layer) InputSize() int  { return layer.weights.Cols }
func (layer *Layer) OutputSize() int { return layer.weights.Rows }

func (layer *Layer) Forward(inputs []float64) []Neuron {
	layer.inputs = inputs
	for outputIndex := range layer.outputs {
		var x = layer.biases.Data[outputIndex]
		for inputIndex, inputValue := range inputs {
			x += layer.weights.Get(outputIndex, inputIndex) * inputValue
		}
		var n = &layer.outputs[outputIndex]
		n.Activation = layer.activationFn.Sigma(x)
		n.Prime = layer.activationFn.SigmaPrime(x)
	}
	return layer.outputs
}

// Backward accumulates gradients of the last Forward call and propagates
// errors into inputErrors (may be nil for the first layer).
func (layer *Layer) Backward(inputErrors []float64) {
	for inputIndex := range inputErrors {
		inputErrors[inputIndex] = 0
	}
	for outputIndex := range layer.outputs {
		var n = &layer.outputs[outputIndex]
		var x = n.Error * n.Prime
		layer.bGradients.Add(outputIndex, 0, x)
		for inputIndex, inputValue := range layer.inputs {
			layer.wGradients.Add(outputIndex, inputIndex, x*inputValue)
			if inputErrors != nil {
				inputErrors[inputIndex] += layer.weights.Get(outputIndex, inputIndex) * x
			}
		}
	}
}

func (layer *Layer) ApplyGradients(learningRate float64) {
	layer.wGradients.Apply(&layer.weights, learningRate)
	layer.bGradients.Apply(&layer.biases, learningRate)
}

// resetGradients drops accumulated values and Adam moments, used after a resize.
func (layer *Layer) resetGradients() {
	layer.wGradients = ml.NewGradients(layer.weights.Rows, layer.weights.Cols)
	layer.bGradients = ml.NewGradients(layer.biases.Rows, 1)
}

func (layer *Layer) parameterCount() int {
	return len(layer.weights.Data) + len(layer.biases.Data)
}
