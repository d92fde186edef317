package selection

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerMetrics(t *testing.T) {
	var registry = prometheus.NewRegistry()
	var metrics = NewMetrics(registry)
	var driver = newFakeDriver(2, scriptedTrials...)
	runner, err := NewRunner(driver, DefaultConfig(), WithMetrics(metrics))
	require.NoError(t, err)

	var ctx = context.Background()
	_, err = runner.Evaluate(ctx, InputMask{true, true})
	require.NoError(t, err)
	_, err = runner.Evaluate(ctx, InputMask{true, true})
	require.NoError(t, err)
	runner.History().ClearSelectionHistory()
	_, err = runner.Evaluate(ctx, InputMask{true, true})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evaluations.WithLabelValues(resultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evaluations.WithLabelValues(resultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evaluations.WithLabelValues(resultPartial)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.trials.WithLabelValues(GradientDescent.String())))
}

func TestScorerMetrics(t *testing.T) {
	var metrics = NewMetrics(prometheus.NewRegistry())
	var config = DefaultConfig()
	config.Regression = false
	_, err := NewScorer(newScoringDataSet(40), config, WithScorerMetrics(metrics)).ScoreAllInputs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.proxyFits))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.observeEvaluation(resultHit)
		metrics.observeProxyFit()
	})
}
