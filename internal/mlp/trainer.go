package mlp

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/ChizhovVadim/InputSelection/internal/dataset"
	"github.com/ChizhovVadim/InputSelection/internal/ml"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

type TrainerConfig struct {
	Algorithm      selection.AlgorithmKind `yaml:"algorithm" validate:"gte=0,lte=5"`
	Epochs         int                     `yaml:"epochs" validate:"gte=1"`
	BatchSize      int                     `yaml:"batch_size" validate:"gte=1"`
	LearningRate   float64                 `yaml:"learning_rate" validate:"gt=0"`
	HiddenNeurons  []int                   `yaml:"hidden_neurons" validate:"dive,gte=1"`
	Classification bool                    `yaml:"classification"`
	Seed           int64                   `yaml:"seed"`
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Algorithm:     selection.QuasiNewton,
		Epochs:        100,
		BatchSize:     32,
		LearningRate:  1e-2,
		HiddenNeurons: []int{4},
	}
}

var validate = validator.New()

func (c TrainerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", selection.ErrInvalidArgument, err)
	}
	return nil
}

// UserFunc trains the objective by custom means. Its payload is reported as is.
type UserFunc func(ctx context.Context, objective *Objective) (any, error)

// Trainer drives the network of its objective with one main algorithm.
type Trainer struct {
	objective *Objective
	config    TrainerConfig
	rnd       *rand.Rand
	logger    *zap.Logger
	UserFunc  UserFunc
}

func NewTrainer(objective *Objective, config TrainerConfig, logger *zap.Logger) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{
		objective: objective,
		config:    config,
		rnd:       rand.New(rand.NewSource(config.Seed)),
		logger:    logger,
	}, nil
}

// Build creates a network sized for the active inputs and targets of ds.
func Build(ds *dataset.DataSet, config TrainerConfig, logger *zap.Logger) (*Trainer, error) {
	var outputActivation ml.IActivationFn = &ml.IdentityActivation{}
	if config.Classification {
		outputActivation = &ml.SigmoidActivation{}
	}
	var inputs, targets = len(ds.ActiveInputs()), len(ds.TargetIndices())
	if inputs == 0 || targets == 0 {
		return nil, fmt.Errorf("%w: data set has %v inputs and %v targets", selection.ErrConfiguration, inputs, targets)
	}
	var network = NewNetwork(inputs, config.HiddenNeurons, targets, outputActivation, config.Seed)
	return NewTrainer(NewObjective(network, ds), config, logger)
}

func (t *Trainer) HasObjective() bool { return t.objective != nil }

func (t *Trainer) Objective() selection.IObjective {
	return t.objective
}

func (t *Trainer) MainAlgorithmKind() selection.AlgorithmKind {
	return t.config.Algorithm
}

// TestingLoss loads parameters into the network and scores the testing partition.
func (t *Trainer) TestingLoss(parameters []float64) (float64, error) {
	return t.objective.TestingLoss(parameters)
}

func (t *Trainer) RunTraining(ctx context.Context) (selection.RawResult, error) {
	if t.objective == nil || t.objective.network == nil || t.objective.dataSet == nil {
		return nil, fmt.Errorf("%w: trainer has no objective", selection.ErrConfiguration)
	}
	switch t.config.Algorithm {
	case selection.NoAlgorithm:
		return selection.NoneResult{}, nil
	case selection.GradientDescent:
		return t.gradientDescent(ctx)
	case selection.ConjugateGradient:
		return t.conjugateGradient(ctx)
	case selection.QuasiNewton:
		return t.quasiNewton(ctx)
	case selection.LevenbergMarquardt:
		return t.levenbergMarquardt(ctx)
	case selection.UserDefined:
		if t.UserFunc == nil {
			return selection.UserDefinedResult{}, nil
		}
		payload, err := t.UserFunc(ctx, t.objective)
		if err != nil {
			return nil, err
		}
		return selection.UserDefinedResult{Payload: payload}, nil
	default:
		return nil, fmt.Errorf("%w: %v", selection.ErrUnsupportedAlgorithm, t.config.Algorithm)
	}
}

// gradientDescent is minibatch Adam over shuffled training samples.
func (t *Trainer) gradientDescent(ctx context.Context) (selection.RawResult, error) {
	var o = t.objective
	var training = o.samples(o.dataSet.TrainingIndices())
	var validation = o.samples(o.dataSet.SelectionIndices())
	o.network.resetGradients()

	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t.rnd.Shuffle(len(training), func(i, j int) {
			training[i], training[j] = training[j], training[i]
		})
		for i := 0; i < len(training); i += t.config.BatchSize {
			var batch = training[i:min(i+t.config.BatchSize, len(training))]
			o.accumulate(batch)
			o.network.applyGradients(t.config.LearningRate)
		}
	}

	var result = selection.GradientDescentResult{
		FinalPerformance:          o.loss(training),
		FinalSelectionPerformance: o.loss(validation),
		Epochs:                    t.config.Epochs,
	}
	t.logger.Debug("gradient descent finished",
		zap.Int("epochs", result.Epochs),
		zap.Float64("training", result.FinalPerformance),
		zap.Float64("selection", result.FinalSelectionPerformance))
	return result, nil
}

func (t *Trainer) conjugateGradient(ctx context.Context) (selection.RawResult, error) {
	var recorder = &historyRecorder{ctx: ctx, objective: t.objective}
	var _, err = t.minimize(ctx, &optimize.CG{}, recorder)
	if err != nil {
		return nil, err
	}
	recorder.append(t.objective)
	return selection.ConjugateGradientResult{
		PerformanceHistory:          recorder.training,
		SelectionPerformanceHistory: recorder.selection,
	}, nil
}

func (t *Trainer) quasiNewton(ctx context.Context) (selection.RawResult, error) {
	var result, err = t.minimize(ctx, &optimize.BFGS{}, nil)
	if err != nil {
		return nil, err
	}
	var r = selection.QuasiNewtonResult{
		Iterations: result.Stats.MajorIterations,
		Status:     result.Status.String(),
	}
	r.Final.Performance = t.objective.TrainingLoss()
	r.Final.SelectionPerformance = t.objective.SelectionLoss()
	return r, nil
}

const (
	initialDamping = 1e-3
	maximumDamping = 1e10
)

// levenbergMarquardt solves (JtJ + damping*I) step = Jt r over all training
// samples per iteration. A step is kept only when it lowers the loss.
func (t *Trainer) levenbergMarquardt(ctx context.Context) (selection.RawResult, error) {
	var o = t.objective
	var training = o.samples(o.dataSet.TrainingIndices())
	var parameters = o.network.ParameterCount()
	var rows = len(training) * o.network.OutputCount()
	if rows == 0 {
		return nil, fmt.Errorf("%w: no training instances", selection.ErrConfiguration)
	}

	var jacobian = mat.NewDense(rows, parameters, nil)
	var residuals = mat.NewVecDense(rows, nil)
	var hessian = mat.NewSymDense(parameters, nil)
	var system = mat.NewDense(parameters, parameters, nil)
	var gradient, step mat.VecDense

	var damping = initialDamping
	var weights = o.network.Weights()
	var loss = o.loss(training)
	var iteration = 0
	for ; iteration < t.config.Epochs && damping < maximumDamping; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.jacobian(training, jacobian, residuals)
		hessian.SymOuterK(1, jacobian.T())
		gradient.MulVec(jacobian.T(), residuals)

		var improved = false
		for damping < maximumDamping {
			system.Copy(hessian)
			for i := 0; i < parameters; i++ {
				system.Set(i, i, system.At(i, i)+damping)
			}
			if err := step.SolveVec(system, &gradient); err != nil {
				damping *= 10
				continue
			}
			var candidate = make([]float64, parameters)
			for i := range candidate {
				candidate[i] = weights[i] - step.AtVec(i)
			}
			if err := o.network.SetWeights(candidate); err != nil {
				return nil, err
			}
			var candidateLoss = o.loss(training)
			if candidateLoss < loss && !math.IsNaN(candidateLoss) {
				weights, loss = candidate, candidateLoss
				damping = math.Max(damping/10, 1e-12)
				improved = true
				break
			}
			damping *= 10
		}
		if !improved {
			break
		}
	}
	if err := o.network.SetWeights(weights); err != nil {
		return nil, err
	}

	var result = selection.LevenbergMarquardtResult{
		FinalPerformance:          loss,
		FinalSelectionPerformance: o.SelectionLoss(),
		FinalDamping:              damping,
	}
	t.logger.Debug("levenberg-marquardt finished",
		zap.Int("iterations", iteration),
		zap.Float64("damping", damping),
		zap.Float64("training", result.FinalPerformance),
		zap.Float64("selection", result.FinalSelectionPerformance))
	return result, nil
}

// minimize runs a gonum method over the flattened weights and leaves the
// best point found in the network.
func (t *Trainer) minimize(ctx context.Context, method optimize.Method, recorder optimize.Recorder) (*optimize.Result, error) {
	var o = t.objective
	var training = o.samples(o.dataSet.TrainingIndices())
	// callbacks cannot fail, the first error is kept and reported after the run
	var callbackErr error
	var setWeights = func(x []float64) {
		if err := o.network.SetWeights(x); err != nil && callbackErr == nil {
			callbackErr = err
		}
	}
	var problem = optimize.Problem{
		Func: func(x []float64) float64 {
			setWeights(x)
			return o.loss(training)
		},
		Grad: func(grad, x []float64) {
			setWeights(x)
			o.network.resetGradients()
			o.accumulate(training)
			o.network.gradients(grad)
		},
	}
	var settings = &optimize.Settings{
		MajorIterations: t.config.Epochs,
		Recorder:        recorder,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 20,
		},
	}
	var result, err = optimize.Minimize(problem, o.network.Weights(), settings, method)
	if callbackErr != nil {
		return nil, callbackErr
	}
	if result == nil {
		return nil, fmt.Errorf("%v failed: %w", t.config.Algorithm, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	// iteration and convergence limits are reported as err, the location is still usable
	if err := o.network.SetWeights(result.X); err != nil {
		return nil, err
	}
	t.logger.Debug("optimization finished",
		zap.Stringer("algorithm", t.config.Algorithm),
		zap.Stringer("status", result.Status),
		zap.Int("iterations", result.Stats.MajorIterations),
		zap.Float64("loss", result.F),
		zap.NamedError("reason", err))
	return result, nil
}

// historyRecorder records training and selection losses at every major iteration.
type historyRecorder struct {
	ctx       context.Context
	objective *Objective
	training  []float64
	selection []float64
	weights   []float64
}

func (r *historyRecorder) Init() error {
	r.training = r.training[:0]
	r.selection = r.selection[:0]
	return nil
}

func (r *historyRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if op != optimize.MajorIteration {
		return nil
	}
	r.weights = r.objective.network.Weights()
	if err := r.objective.network.SetWeights(loc.X); err != nil {
		return err
	}
	r.training = append(r.training, loc.F)
	r.selection = append(r.selection, r.objective.SelectionLoss())
	return r.objective.network.SetWeights(r.weights)
}

// append adds the final point, so the last elements describe the trained network.
func (r *historyRecorder) append(o *Objective) {
	r.training = append(r.training, o.TrainingLoss())
	r.selection = append(r.selection, o.SelectionLoss())
}
