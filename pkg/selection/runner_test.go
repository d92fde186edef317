package selection

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, driver *fakeDriver, trials int, policy AggregationPolicy) *Runner {
	t.Helper()
	var config = DefaultConfig()
	config.TrialsNumber = trials
	config.Policy = policy
	runner, err := NewRunner(driver, config)
	require.NoError(t, err)
	return runner
}

var scriptedTrials = []TrialOutcome{
	{Training: 0.5, Selection: 0.6},
	{Training: 0.2, Selection: 0.9},
	{Training: 0.8, Selection: 0.3},
}

func TestEvaluateAggregationPolicies(t *testing.T) {
	tests := []struct {
		name       string
		policy     AggregationPolicy
		want       TrialOutcome
		parameters []float64
	}{
		{"minimum", Minimum, TrialOutcome{Training: 0.2, Selection: 0.3}, []float64{3}},
		{"maximum", Maximum, TrialOutcome{Training: 0.8, Selection: 0.9}, []float64{3}},
		{"mean", Mean, TrialOutcome{Training: 0.5, Selection: 0.6}, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var driver = newFakeDriver(3, scriptedTrials...)
			var runner = newTestRunner(t, driver, 3, tt.policy)

			evaluation, err := runner.Evaluate(context.Background(), InputMask{true, false, true})
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Training, evaluation.Outcome.Training, 1e-12)
			assert.InDelta(t, tt.want.Selection, evaluation.Outcome.Selection, 1e-12)
			assert.Equal(t, tt.parameters, evaluation.Parameters)
			assert.Equal(t, 3, evaluation.Trials)
			assert.False(t, evaluation.Cached)
			assert.Equal(t, 3, driver.calls)
			assert.Equal(t, 2, driver.objective.model.randomize)
		})
	}
}

func TestEvaluateAggregateWithinTrialBounds(t *testing.T) {
	for _, policy := range []AggregationPolicy{Minimum, Maximum, Mean} {
		var driver = newFakeDriver(2, scriptedTrials...)
		var runner = newTestRunner(t, driver, 3, policy)
		evaluation, err := runner.Evaluate(context.Background(), InputMask{true, true})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, evaluation.Outcome.Training, 0.2, policy.String())
		assert.LessOrEqual(t, evaluation.Outcome.Training, 0.8, policy.String())
		assert.GreaterOrEqual(t, evaluation.Outcome.Selection, 0.3, policy.String())
		assert.LessOrEqual(t, evaluation.Outcome.Selection, 0.9, policy.String())
	}
}

func TestEvaluateIsMemoized(t *testing.T) {
	var driver = newFakeDriver(3, scriptedTrials...)
	var runner = newTestRunner(t, driver, 2, Minimum)
	var mask = InputMask{false, true, true}

	first, err := runner.Evaluate(context.Background(), mask)
	require.NoError(t, err)
	second, err := runner.Evaluate(context.Background(), InputMask{false, true, true})
	require.NoError(t, err)

	assert.Equal(t, 2, driver.calls)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.Parameters, second.Parameters)
	assert.Equal(t, 1, runner.History().Len())
}

func TestEvaluateTwoMasks(t *testing.T) {
	var driver = newFakeDriver(3,
		TrialOutcome{Training: 0.4, Selection: 0.5},
		TrialOutcome{Training: 0.1, Selection: 0.2},
	)
	var runner = newTestRunner(t, driver, 1, Minimum)
	var a = InputMask{true, false, false}
	var b = InputMask{true, true, true}

	ea, err := runner.Evaluate(context.Background(), a)
	require.NoError(t, err)
	eb, err := runner.Evaluate(context.Background(), b)
	require.NoError(t, err)
	again, err := runner.Evaluate(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, 2, driver.calls)
	assert.Equal(t, TrialOutcome{Training: 0.4, Selection: 0.5}, ea.Outcome)
	assert.Equal(t, TrialOutcome{Training: 0.1, Selection: 0.2}, eb.Outcome)
	assert.Equal(t, ea.Outcome, again.Outcome)

	var entries = runner.History().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0].Mask)
	assert.Equal(t, b, entries[1].Mask)
}

func TestEvaluatePartialHitKeepsKnownHalf(t *testing.T) {
	var driver = newFakeDriver(2,
		TrialOutcome{Training: 0.4, Selection: 0.5},
		TrialOutcome{Training: 0.9, Selection: 0.7},
	)
	var runner = newTestRunner(t, driver, 1, Minimum)
	var mask = InputMask{true, true}

	_, err := runner.Evaluate(context.Background(), mask)
	require.NoError(t, err)
	runner.History().ClearSelectionHistory()

	evaluation, err := runner.Evaluate(context.Background(), mask)
	require.NoError(t, err)
	assert.Equal(t, 2, driver.calls)
	assert.False(t, evaluation.Cached)
	assert.Equal(t, 0.4, evaluation.Outcome.Training)
	assert.Equal(t, 0.7, evaluation.Outcome.Selection)

	lookup, found := runner.History().Lookup(mask)
	require.True(t, found)
	assert.True(t, lookup.Full())
	assert.Equal(t, TrialOutcome{Training: 0.4, Selection: 0.7}, lookup.Outcome())
	assert.Equal(t, 1, runner.History().Len())
}

func TestEvaluateResizesModel(t *testing.T) {
	var driver = newFakeDriver(4, scriptedTrials...)
	var runner = newTestRunner(t, driver, 1, Minimum)

	_, err := runner.Evaluate(context.Background(), InputMask{true, false, false, true})
	require.NoError(t, err)
	assert.Equal(t, 2, driver.objective.model.inputs)
	assert.Equal(t, InputMask{true, false, false, true}, driver.objective.dataSet.active)
	assert.Equal(t, 1, driver.objective.model.perturbed)

	_, err = runner.Evaluate(context.Background(), InputMask{true, true, true, false})
	require.NoError(t, err)
	assert.Equal(t, 3, driver.objective.model.inputs)
}

func TestEvaluateRejectsInvalidArguments(t *testing.T) {
	var driver = newFakeDriver(3, scriptedTrials...)
	var runner = newTestRunner(t, driver, 1, Minimum)
	var ctx = context.Background()

	_, err := runner.Evaluate(ctx, InputMask{false, false, false})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = runner.EvaluateWith(ctx, InputMask{true, false, false}, Minimum, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = runner.EvaluateWith(ctx, InputMask{true, false, false}, AggregationPolicy(7), 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = runner.Evaluate(ctx, InputMask{true, false})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, 0, driver.calls)
	assert.Equal(t, 0, runner.History().Len())
}

func TestEvaluateTrainingErrorLeavesHistoryUntouched(t *testing.T) {
	var driver = newFakeDriver(2, scriptedTrials...)
	driver.failAt = 2
	var runner = newTestRunner(t, driver, 3, Minimum)

	_, err := runner.Evaluate(context.Background(), InputMask{true, true})
	assert.ErrorIs(t, err, errTraining)
	assert.Equal(t, 0, runner.History().Len())
	_, found := runner.History().Lookup(InputMask{true, true})
	assert.False(t, found)
}

func TestRunnerCheck(t *testing.T) {
	var driver = newFakeDriver(2, scriptedTrials...)
	var runner = newTestRunner(t, driver, 1, Minimum)
	assert.NoError(t, runner.Check())

	driver.objective.dataSet.heldOut = 0
	assert.ErrorIs(t, runner.Check(), ErrConfiguration)
}

func TestNewRunnerValidatesConfig(t *testing.T) {
	var config = DefaultConfig()
	config.TrialsNumber = 0
	_, err := NewRunner(newFakeDriver(1, scriptedTrials...), config)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEvaluatePartialHitFoldsOnlyMissingHalf(t *testing.T) {
	var first = TrialOutcome{Training: 0.4, Selection: 0.45}
	tests := []struct {
		name       string
		policy     AggregationPolicy
		clear      func(*History)
		want       TrialOutcome
		parameters []float64
	}{
		{"minimum selection cleared", Minimum, (*History).ClearSelectionHistory, TrialOutcome{Training: 0.4, Selection: 0.3}, []float64{4}},
		{"maximum selection cleared", Maximum, (*History).ClearSelectionHistory, TrialOutcome{Training: 0.4, Selection: 0.9}, []float64{3}},
		{"mean selection cleared", Mean, (*History).ClearSelectionHistory, TrialOutcome{Training: 0.4, Selection: 0.6}, []float64{4}},
		{"minimum performance cleared", Minimum, (*History).ClearPerformanceHistory, TrialOutcome{Training: 0.2, Selection: 0.45}, []float64{3}},
		{"maximum performance cleared", Maximum, (*History).ClearPerformanceHistory, TrialOutcome{Training: 0.8, Selection: 0.45}, []float64{4}},
		{"mean performance cleared", Mean, (*History).ClearPerformanceHistory, TrialOutcome{Training: 0.5, Selection: 0.45}, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var driver = newFakeDriver(2, append([]TrialOutcome{first}, scriptedTrials...)...)
			var runner = newTestRunner(t, driver, 3, tt.policy)
			var mask = InputMask{true, false}
			var ctx = context.Background()

			_, err := runner.EvaluateWith(ctx, mask, tt.policy, 1)
			require.NoError(t, err)
			tt.clear(runner.History())

			evaluation, err := runner.Evaluate(ctx, mask)
			require.NoError(t, err)
			assert.Equal(t, 4, driver.calls)
			assert.Equal(t, 3, evaluation.Trials)
			assert.InDelta(t, tt.want.Training, evaluation.Outcome.Training, 1e-12)
			assert.InDelta(t, tt.want.Selection, evaluation.Outcome.Selection, 1e-12)
			assert.Equal(t, tt.parameters, evaluation.Parameters)

			lookup, found := runner.History().Lookup(mask)
			require.True(t, found)
			require.True(t, lookup.Full())
			assert.InDelta(t, tt.want.Training, lookup.Training, 1e-12)
			assert.InDelta(t, tt.want.Selection, lookup.Selection, 1e-12)
		})
	}
}

func TestRunnersShareHistoryConcurrently(t *testing.T) {
	var shared = NewHistory()
	var masks = []InputMask{{true, false, false}, {false, true, false}, {true, true, false}, {true, true, true}}
	const runners = 8

	var wg sync.WaitGroup
	var errs = make([]error, runners)
	for i := 0; i < runners; i++ {
		var config = DefaultConfig()
		config.TrialsNumber = 2
		runner, err := NewRunner(newFakeDriver(3, scriptedTrials...), config, WithHistory(shared))
		require.NoError(t, err)
		wg.Add(1)
		go func(i int, runner *Runner) {
			defer wg.Done()
			for k := range masks {
				// every runner walks the masks from a different start
				if _, err := runner.Evaluate(context.Background(), masks[(i+k)%len(masks)]); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, runner)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, len(masks), shared.Len())
	var seen = make(map[string]int)
	for _, entry := range shared.Entries() {
		seen[entry.Mask.Key()]++
		assert.True(t, entry.HasTraining)
		assert.True(t, entry.HasSelection)
		assert.True(t, entry.HasParameters)
	}
	for _, mask := range masks {
		assert.Equal(t, 1, seen[mask.Key()], mask.String())
	}
}
