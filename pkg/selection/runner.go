package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// PerturbationMagnitude is applied to all weights after the inputs are reconfigured.
	PerturbationMagnitude = 0.5

	tracerName = "github.com/ChizhovVadim/InputSelection/pkg/selection"
)

// Runner evaluates input subsets against one training driver.
// Calls are serialized: the runner owns the model for the duration of an evaluation,
// trial N starts from the weights trial N-1 left.
type Runner struct {
	mu      sync.Mutex
	driver  ITrainingDriver
	config  Config
	history *History
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Runner)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(r *Runner) { r.metrics = metrics }
}

// WithHistory shares a cache between runners that own independent models.
func WithHistory(history *History) Option {
	return func(r *Runner) { r.history = history }
}

func NewRunner(driver ITrainingDriver, config Config, options ...Option) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var r = &Runner{
		driver:  driver,
		config:  config,
		history: NewHistory(),
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

func (r *Runner) Check() error {
	return Check(r.driver)
}

func (r *Runner) History() *History {
	return r.history
}

func (r *Runner) Config() Config {
	return r.config
}

// Evaluate scores mask with the configured policy and trials number.
func (r *Runner) Evaluate(ctx context.Context, mask InputMask) (Evaluation, error) {
	return r.EvaluateWith(ctx, mask, r.config.Policy, r.config.TrialsNumber)
}

// EvaluateWith trains the model restricted to mask trials times and aggregates the
// outcomes by policy. A mask is trained at most once per history: a full cache hit
// returns the stored pair without training.
func (r *Runner) EvaluateWith(ctx context.Context, mask InputMask, policy AggregationPolicy, trials int) (Evaluation, error) {
	if mask.Count() == 0 {
		return Evaluation{}, fmt.Errorf("%w: number of inputs must be greater or equal than 1", ErrInvalidArgument)
	}
	if trials < 1 {
		return Evaluation{}, fmt.Errorf("%w: number of trials must be greater than 0", ErrInvalidArgument)
	}
	if policy < Minimum || policy > Mean {
		return Evaluation{}, fmt.Errorf("%w: unknown performance calculation method %v", ErrInvalidArgument, policy)
	}
	if r.driver == nil || !r.driver.HasObjective() {
		return Evaluation{}, fmt.Errorf("%w: training driver has no objective", ErrConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "selection.Evaluate", trace.WithAttributes(
		attribute.String("mask", mask.Key()),
		attribute.String("policy", policy.String()),
		attribute.Int("trials", trials),
	))
	defer span.End()

	var known, _ = r.history.Lookup(mask)
	if known.Full() {
		r.metrics.observeEvaluation(resultHit)
		span.SetAttributes(attribute.Bool("cached", true))
		var parameters, _ = r.history.ParametersFor(mask)
		return Evaluation{Outcome: known.Outcome(), Parameters: parameters, Cached: true}, nil
	}

	var evaluation, err = r.train(ctx, mask, policy, trials, known)
	if err != nil {
		r.metrics.observeEvaluation(resultError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Evaluation{}, err
	}
	if known.HasTraining || known.HasSelection {
		r.metrics.observeEvaluation(resultPartial)
	} else {
		r.metrics.observeEvaluation(resultMiss)
	}

	r.history.Record(mask, evaluation.Outcome, evaluation.Parameters)
	r.logger.Info("inputs evaluated",
		zap.Stringer("inputs", mask),
		zap.Float64("training", evaluation.Outcome.Training),
		zap.Float64("selection", evaluation.Outcome.Selection),
		zap.Int("trials", evaluation.Trials))
	return evaluation, nil
}

func (r *Runner) train(ctx context.Context, mask InputMask, policy AggregationPolicy, trials int, known Lookup) (Evaluation, error) {
	var objective = r.driver.Objective()
	if !objective.HasModel() {
		return Evaluation{}, fmt.Errorf("%w: objective has no model", ErrConfiguration)
	}
	var model = objective.Model()
	if err := r.setInputs(objective, model, mask); err != nil {
		return Evaluation{}, err
	}

	var kind = r.driver.MainAlgorithmKind()
	var agg = newAggregator(policy, known)
	for trial := 1; trial <= trials; trial++ {
		if trial > 1 {
			model.RandomizeWeightsNormal()
		}
		current, err := r.runTrial(ctx, kind, trial)
		if err != nil {
			return Evaluation{}, err
		}
		agg.add(current, model.Weights)
	}
	return Evaluation{
		Outcome:    agg.outcome,
		Parameters: append([]float64(nil), agg.parameters...),
		Trials:     agg.trials,
	}, nil
}

func (r *Runner) runTrial(ctx context.Context, kind AlgorithmKind, trial int) (TrialOutcome, error) {
	ctx, span := r.tracer.Start(ctx, "selection.Trial", trace.WithAttributes(
		attribute.Int("trial", trial),
		attribute.String("algorithm", kind.String()),
	))
	defer span.End()

	var start = time.Now()
	raw, err := r.driver.RunTraining(ctx)
	if err != nil {
		span.RecordError(err)
		return TrialOutcome{}, fmt.Errorf("training trial %v failed: %w", trial, err)
	}
	r.metrics.observeTrial(kind, time.Since(start))

	current, err := ExtractPerformance(raw, kind)
	if err != nil {
		return TrialOutcome{}, err
	}
	r.logger.Debug("trial finished",
		zap.Int("trial", trial),
		zap.Float64("training", current.Training),
		zap.Float64("selection", current.Selection),
		zap.Duration("elapsed", time.Since(start)))
	return current, nil
}

// setInputs resizes the model one input at a time to match mask, then perturbs
// the weights to leave the previous parameter state.
func (r *Runner) setInputs(objective IObjective, model IModel, mask InputMask) error {
	if objective.HasDataSet() {
		var dataSet = objective.DataSet()
		if candidates := len(dataSet.InputIndices()); candidates != len(mask) {
			return fmt.Errorf("%w: mask has %v inputs, data set has %v", ErrInvalidArgument, len(mask), candidates)
		}
		if masker, ok := dataSet.(IInputMasker); ok {
			if err := masker.SetActiveInputs(mask); err != nil {
				return err
			}
		}
	}

	var target = mask.Count()
	var current = model.ActiveInputCount()
	for i := target; i < current; i++ {
		if err := model.PruneInput(0); err != nil {
			return err
		}
	}
	for i := current; i < target; i++ {
		model.GrowInput()
	}
	if n := model.ActiveInputCount(); n != target {
		return fmt.Errorf("%w: model has %v inputs after resize, want %v", ErrConfiguration, n, target)
	}
	model.PerturbWeights(PerturbationMagnitude)
	return nil
}
