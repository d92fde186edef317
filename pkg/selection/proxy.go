package selection

import (
	"math"

	"github.com/ChizhovVadim/InputSelection/internal/ml"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// proxyMaxIterations bounds the BFGS run of one logistic proxy fit.
const proxyMaxIterations = 200

// logisticProxy is a single input, single output unit y = sigmoid(w*x + b)
// fitted by mean squared error.
type logisticProxy struct {
	weight float64
	bias   float64
}

func (p *logisticProxy) output(x float64) float64 {
	return ml.Sigmoid(p.weight*x + p.bias)
}

// fitLogisticProxy scales inputs to [-1,1], fits the unit with BFGS from a fixed
// starting point and returns the fitted unit and its outputs on inputs.
func fitLogisticProxy(inputs, targets []float64) (*logisticProxy, []float64, error) {
	var scaled = scaleMinimumMaximum(inputs)
	var n = float64(len(scaled))

	var problem = optimize.Problem{
		Func: func(x []float64) float64 {
			var cost float64
			for i, input := range scaled {
				var e = ml.Sigmoid(x[0]*input+x[1]) - targets[i]
				cost += e * e
			}
			return cost / n
		},
		Grad: func(grad, x []float64) {
			grad[0], grad[1] = 0, 0
			for i, input := range scaled {
				var y = ml.Sigmoid(x[0]*input + x[1])
				var delta = 2 * (y - targets[i]) * y * (1 - y) / n
				grad[0] += delta * input
				grad[1] += delta
			}
		},
	}
	var settings = &optimize.Settings{
		MajorIterations:   proxyMaxIterations,
		GradientThreshold: 1e-9,
	}
	var result, err = optimize.Minimize(problem, []float64{0.1, 0}, settings, &optimize.BFGS{})
	if result == nil {
		return nil, nil, err
	}
	// a failed line search near the optimum still leaves a usable location
	var proxy = &logisticProxy{weight: result.X[0], bias: result.X[1]}
	var outputs = make([]float64, len(scaled))
	for i, input := range scaled {
		outputs[i] = proxy.output(input)
	}
	return proxy, outputs, nil
}

// correlation is the pearson correlation, 0 when either side is constant.
func correlation(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

func scaleMinimumMaximum(values []float64) []float64 {
	var result = make([]float64, len(values))
	if len(values) == 0 {
		return result
	}
	var lo, hi = floats.Min(values), floats.Max(values)
	if hi == lo {
		return result
	}
	for i, v := range values {
		result[i] = 2*(v-lo)/(hi-lo) - 1
	}
	return result
}
