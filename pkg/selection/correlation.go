package selection

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Scorer ranks candidate inputs by their correlation with the targets.
// It never touches the evaluation history.
type Scorer struct {
	dataSet    IDataSet
	regression bool
	threads    int
	logger     *zap.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

type ScorerOption func(*Scorer)

func WithScorerLogger(logger *zap.Logger) ScorerOption {
	return func(s *Scorer) { s.logger = logger }
}

func WithScorerMetrics(metrics *Metrics) ScorerOption {
	return func(s *Scorer) { s.metrics = metrics }
}

func NewScorer(dataSet IDataSet, config Config, options ...ScorerOption) *Scorer {
	var s = &Scorer{
		dataSet:    dataSet,
		regression: config.Regression,
		threads:    max(1, config.Threads),
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// ScoreAllInputs returns the inputs x targets correlation matrix.
// Regression: signed linear correlations of the raw columns in [-1,1].
// Otherwise: logistic proxy correlations in [0,1].
func (s *Scorer) ScoreAllInputs(ctx context.Context) (*mat.Dense, error) {
	if s.dataSet == nil {
		return nil, fmt.Errorf("%w: data set is nil", ErrConfiguration)
	}
	ctx, span := s.tracer.Start(ctx, "selection.ScoreAllInputs", trace.WithAttributes(
		attribute.Bool("regression", s.regression),
	))
	defer span.End()

	if len(s.dataSet.InputIndices()) == 0 || len(s.dataSet.TargetIndices()) == 0 {
		return nil, fmt.Errorf("%w: data set needs at least one input and one target", ErrConfiguration)
	}
	if s.regression {
		var correlations = s.dataSet.LinearCorrelations()
		if correlations == nil {
			return nil, fmt.Errorf("%w: data set returned no correlations", ErrConfiguration)
		}
		return correlations, nil
	}
	return s.logisticCorrelations(ctx)
}

func (s *Scorer) logisticCorrelations(ctx context.Context) (*mat.Dense, error) {
	s.logger.Debug("logistic correlations started")
	defer s.logger.Debug("logistic correlations finished")

	var inputIndices = s.dataSet.InputIndices()
	var targetIndices = s.dataSet.TargetIndices()
	var samples = s.dataSet.TrainingIndices()
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no training instances", ErrConfiguration)
	}

	var columns = make(map[int][]float64, len(inputIndices)+len(targetIndices))
	for _, index := range append(append([]int(nil), inputIndices...), targetIndices...) {
		if _, found := columns[index]; !found {
			columns[index] = pick(s.dataSet.Column(index), samples)
		}
	}

	var result = mat.NewDense(len(inputIndices), len(targetIndices), nil)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)
	for i, inputIndex := range inputIndices {
		for j, targetIndex := range targetIndices {
			var inputs, targets = columns[inputIndex], columns[targetIndex]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				var _, outputs, err = fitLogisticProxy(inputs, targets)
				if err != nil {
					return fmt.Errorf("proxy fit input %v target %v: %w", inputIndex, targetIndex, err)
				}
				s.metrics.observeProxyFit()
				// distinct cells, no lock needed
				result.Set(i, j, math.Abs(correlation(targets, outputs)))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// FinalInputScores sums the absolute correlation of every input over all targets.
func (s *Scorer) FinalInputScores(ctx context.Context) ([]float64, error) {
	var correlations, err = s.ScoreAllInputs(ctx)
	if err != nil {
		return nil, err
	}
	return SumScores(correlations), nil
}

// SumScores collapses a correlation matrix into one non-negative score per row.
func SumScores(correlations mat.Matrix) []float64 {
	var rows, cols = correlations.Dims()
	var scores = make([]float64, rows)
	for i := range scores {
		for j := 0; j < cols; j++ {
			scores[i] += math.Abs(correlations.At(i, j))
		}
	}
	return scores
}

// RankInputs returns input positions by descending score, ties keep input order.
func RankInputs(scores []float64) []int {
	var order = make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// FilterByCorrelation keeps the positions whose mean score per target is
// within [MinimumCorrelation, MaximumCorrelation].
func FilterByCorrelation(scores []float64, targets int, config Config) []int {
	var result []int
	if targets <= 0 {
		return result
	}
	for i, score := range scores {
		var mean = score / float64(targets)
		if mean >= config.MinimumCorrelation && mean <= config.MaximumCorrelation {
			result = append(result, i)
		}
	}
	return result
}

func pick(column []float64, samples []int) []float64 {
	var result = make([]float64, len(samples))
	for i, sample := range samples {
		result[i] = column[sample]
	}
	return result
}
