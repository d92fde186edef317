package mlp

import (
	"fmt"
	"math/rand"

	"github.com/ChizhovVadim/InputSelection/internal/ml"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"gonum.org/v1/gonum/mat"
)

// Network is a multilayer perceptron whose input width can grow and shrink.
// Hidden layers use tanh, the output layer uses the given activation.
type Network struct {
	rnd    *rand.Rand
	layers []*Layer
	errors [][]float64
}

func NewNetwork(inputs int, hiddenNeurons []int, outputs int, outputActivation ml.IActivationFn, seed int64) *Network {
	var n = &Network{rnd: rand.New(rand.NewSource(seed))}
	var inputSize = inputs
	for _, hidden := range hiddenNeurons {
		n.layers = append(n.layers, NewLayer(inputSize, hidden, &ml.TanhActivation{}).InitWeights(n.rnd))
		inputSize = hidden
	}
	n.layers = append(n.layers, NewLayer(inputSize, outputs, outputActivation).InitWeights(n.rnd))
	n.errors = make([][]float64, len(n.layers))
	for i := 1; i < len(n.layers); i++ {
		n.errors[i] = make([]float64, n.layers[i].InputSize())
	}
	return n
}

func (n *Network) IsEmpty() bool {
	return len(n.layers) == 0
}

func (n *Network) ActiveInputCount() int {
	if n.IsEmpty() {
		return 0
	}
	return n.layers[0].InputSize()
}

func (n *Network) OutputCount() int {
	if n.IsEmpty() {
		return 0
	}
	return n.layers[len(n.layers)-1].OutputSize()
}

// GrowInput appends one input with small random weights.
func (n *Network) GrowInput() {
	var layer = n.layers[0]
	var column = make([]float64, layer.OutputSize())
	ml.InitUniform(n.rnd, column, 2.0/float64(layer.InputSize()+1+layer.OutputSize()))
	layer.weights.AppendCol(column)
	layer.resetGradients()
}

func (n *Network) PruneInput(index int) error {
	var layer = n.layers[0]
	if index < 0 || index >= layer.InputSize() {
		return fmt.Errorf("%w: input %v out of range [0,%v)", selection.ErrInvalidArgument, index, layer.InputSize())
	}
	if layer.InputSize() == 1 {
		return fmt.Errorf("%w: cannot prune the last input", selection.ErrInvalidArgument)
	}
	layer.weights.RemoveCol(index)
	layer.resetGradients()
	return nil
}

func (n *Network) PerturbWeights(magnitude float64) {
	for _, layer := range n.layers {
		ml.Perturb(n.rnd, layer.weights.Data, magnitude)
		ml.Perturb(n.rnd, layer.biases.Data, magnitude)
	}
}

func (n *Network) RandomizeWeightsNormal() {
	for _, layer := range n.layers {
		ml.InitNorm(n.rnd, layer.weights.Data, 0, 1)
		ml.InitNorm(n.rnd, layer.biases.Data, 0, 1)
	}
}

func (n *Network) ParameterCount() int {
	var count = 0
	for _, layer := range n.layers {
		count += layer.parameterCount()
	}
	return count
}

// Weights returns a copy of all parameters: per layer weights then biases.
func (n *Network) Weights() []float64 {
	var result = make([]float64, 0, n.ParameterCount())
	for _, layer := range n.layers {
		result = append(result, layer.weights.Data...)
		result = append(result, layer.biases.Data...)
	}
	return result
}

func (n *Network) SetWeights(weights []float64) error {
	if len(weights) != n.ParameterCount() {
		return fmt.Errorf("%w: got %v parameters, want %v", selection.ErrInvalidArgument, len(weights), n.ParameterCount())
	}
	var offset = 0
	for _, layer := range n.layers {
		offset += copy(layer.weights.Data, weights[offset:])
		offset += copy(layer.biases.Data, weights[offset:])
	}
	return nil
}

// Forward returns output activations for one sample.
func (n *Network) Forward(inputs []float64) []float64 {
	var x = inputs
	for _, layer := range n.layers {
		var outputs = layer.Forward(x)
		var activations = make([]float64, len(outputs))
		for i := range outputs {
			activations[i] = outputs[i].Activation
		}
		x = activations
	}
	return x
}

// backward propagates dCost/dOutput of the last Forward call.
func (n *Network) backward(outputErrors []float64) {
	var last = n.layers[len(n.layers)-1]
	for i := range last.outputs {
		last.outputs[i].Error = outputErrors[i]
	}
	for layerIndex := len(n.layers) - 1; layerIndex >= 0; layerIndex-- {
		var layer = n.layers[layerIndex]
		if layerIndex == 0 {
			layer.Backward(nil)
			continue
		}
		var inputErrors = n.errors[layerIndex]
		layer.Backward(inputErrors)
		var prev = n.layers[layerIndex-1]
		for i := range prev.outputs {
			prev.outputs[i].Error = inputErrors[i]
		}
	}
}

func (n *Network) applyGradients(learningRate float64) {
	for _, layer := range n.layers {
		layer.ApplyGradients(learningRate)
	}
}

// resetGradients drops accumulated values and Adam moments.
func (n *Network) resetGradients() {
	for _, layer := range n.layers {
		layer.wGradients.Reset()
		layer.bGradients.Reset()
	}
}

// gradients copies accumulated gradients in Weights order and resets them.
func (n *Network) gradients(dst []float64) {
	var offset = 0
	for _, layer := range n.layers {
		layer.wGradients.Values(dst[offset : offset+len(layer.weights.Data)])
		offset += len(layer.weights.Data)
		layer.bGradients.Values(dst[offset : offset+len(layer.biases.Data)])
		offset += len(layer.biases.Data)
		layer.wGradients.Reset()
		layer.bGradients.Reset()
	}
}

// Predict computes outputs for every row of inputs.
func (n *Network) Predict(inputs mat.Matrix) (*mat.Dense, error) {
	var rows, cols = inputs.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("%w: no input rows", selection.ErrInvalidArgument)
	}
	if cols != n.ActiveInputCount() {
		return nil, fmt.Errorf("%w: got %v input columns, network has %v inputs", selection.ErrInvalidArgument, cols, n.ActiveInputCount())
	}
	var result = mat.NewDense(rows, n.OutputCount(), nil)
	var x = make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := range x {
			x[j] = inputs.At(i, j)
		}
		result.SetRow(i, n.Forward(x))
	}
	return result, nil
}
