package ml

import "math"

type IActivationFn interface {
	Sigma(x float64) float64
	SigmaPrime(x float64) float64
}

type IdentityActivation struct{}

func (*IdentityActivation) Sigma(x float64) float64      { return x }
func (*IdentityActivation) SigmaPrime(x float64) float64 { return 1 }

type TanhActivation struct{}

func (*TanhActivation) Sigma(x float64) float64 {
	return math.Tanh(x)
}

func (*TanhActivation) SigmaPrime(x float64) float64 {
	var y = math.Tanh(x)
	return 1 - y*y
}

type SigmoidActivation struct{}

func (s *SigmoidActivation) Sigma(x float64) float64 {
	return Sigmoid(x)
}

func (s *SigmoidActivation) SigmaPrime(x float64) float64 {
	var y = Sigmoid(x)
	return y * (1 - y)
}
