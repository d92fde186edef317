package ml

import (
	"math"
	"math/rand"
)

func InitUniform(rnd *rand.Rand, data []float64, variance float64) {
	var uniformVariance = 1.0 / 12
	var scale = math.Sqrt(variance / uniformVariance)
	for i := range data {
		data[i] = (rnd.Float64() - 0.5) * scale
	}
}

func InitNorm(rnd *rand.Rand, data []float64, mean, stDev float64) {
	for i := range data {
		data[i] = rnd.NormFloat64()*stDev + mean
	}
}

// Perturb adds uniform noise in [-magnitude, magnitude].
func Perturb(rnd *rand.Rand, data []float64, magnitude float64) {
	for i := range data {
		data[i] += (2*rnd.Float64() - 1) * magnitude
	}
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
