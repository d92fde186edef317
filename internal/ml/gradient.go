package ml

import "math"

const (
	Beta1 = 0.9
	Beta2 = 0.999
)

// Gradient accumulates the derivative of one weight and keeps Adam moments.
type Gradient struct {
	Value float64
	M1    float64
	M2    float64
}

type Gradients struct {
	Data []Gradient
	Rows int
	Cols int
}

func (g *Gradient) Calculate(learningRate float64) float64 {

	if g.Value == 0 {
		// nothing to calculate
		return 0
	}

	g.M1 = g.M1*Beta1 + g.Value*(1-Beta1)
	g.M2 = g.M2*Beta2 + (g.Value*g.Value)*(1-Beta2)

	return learningRate * g.M1 / (math.Sqrt(g.M2) + 1e-8)
}

func NewGradients(rows, cols int) Gradients {
	return Gradients{
		Data: make([]Gradient, cols*rows),
		Rows: rows,
		Cols: cols,
	}
}

func (g *Gradients) Add(row, col int, delta float64) {
	g.Data[col*g.Rows+row].Value += delta
}

// Apply makes one Adam step on m and resets accumulated values.
func (g *Gradients) Apply(m *Matrix, learningRate float64) {
	for i := range g.Data {
		m.Data[i] -= g.Data[i].Calculate(learningRate)
		g.Data[i].Value = 0
	}
}

// Values copies accumulated values into dst without resetting them.
func (g *Gradients) Values(dst []float64) {
	for i := range g.Data {
		dst[i] = g.Data[i].Value
	}
}

func (g *Gradients) Reset() {
	for i := range g.Data {
		g.Data[i] = Gradient{}
	}
}
