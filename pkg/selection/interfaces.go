package selection

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// ITrainingDriver runs one full optimization of the model owned by its objective.
// RunTraining blocks and mutates the model weights in place.
type ITrainingDriver interface {
	HasObjective() bool
	Objective() IObjective
	MainAlgorithmKind() AlgorithmKind
	RunTraining(ctx context.Context) (RawResult, error)
}

type IObjective interface {
	HasModel() bool
	Model() IModel
	HasDataSet() bool
	DataSet() IDataSet
}

type IModel interface {
	ActiveInputCount() int
	GrowInput()
	PruneInput(index int) error
	PerturbWeights(magnitude float64)
	RandomizeWeightsNormal()
	Weights() []float64
	Predict(inputs mat.Matrix) (*mat.Dense, error)
	IsEmpty() bool
}

type IDataSet interface {
	VariableCount() int
	InputIndices() []int
	TargetIndices() []int
	Column(index int) []float64
	LinearCorrelations() *mat.Dense
	HeldOutSampleCount() int
	TrainingIndices() []int
}

// IInputMasker is implemented by data sets that can restrict the variables
// fed to the model. Runner calls it before resizing the model.
type IInputMasker interface {
	SetActiveInputs(mask InputMask) error
}
