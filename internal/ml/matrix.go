package ml

// Matrix is stored column-major.
type Matrix struct {
	Data []float64
	Rows int
	Cols int
}

func NewMatrix(rows, cols int) Matrix {
	return Matrix{
		Data: make([]float64, rows*cols),
		Rows: rows,
		Cols: cols,
	}
}

func (m *Matrix) Get(row, col int) float64 {
	return m.Data[col*m.Rows+row]
}

func (m *Matrix) Set(row, col int, value float64) {
	m.Data[col*m.Rows+row] = value
}

// AppendCol appends a column at the end.
func (m *Matrix) AppendCol(values []float64) {
	m.Data = append(m.Data, values...)
	m.Cols++
}

// RemoveCol deletes column col.
func (m *Matrix) RemoveCol(col int) {
	var start = col * m.Rows
	m.Data = append(m.Data[:start], m.Data[start+m.Rows:]...)
	m.Cols--
}
