package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResultsPicksMinimalSelection(t *testing.T) {
	var h = NewHistory()
	h.Record(InputMask{true, false}, TrialOutcome{Training: 0.1, Selection: 0.5}, []float64{1})
	h.Record(InputMask{false, true}, TrialOutcome{Training: 0.3, Selection: 0.2}, []float64{2})
	h.Record(InputMask{true, true}, TrialOutcome{Training: 0.05, Selection: 0.4}, []float64{3})

	var results = NewResults(h, DefaultConfig())
	assert.Equal(t, InputMask{false, true}, results.OptimalInputs)
	assert.Equal(t, 0.2, results.FinalSelectionPerformance)
	assert.Equal(t, 0.3, results.FinalPerformance)
	assert.Equal(t, []float64{2}, results.MinimalParameters)
	assert.Equal(t, 3, results.IterationsNumber)
	assert.Equal(t, []float64{0.1, 0.3, 0.05}, results.PerformanceData)
	assert.Equal(t, []float64{0.5, 0.2, 0.4}, results.SelectionPerformanceData)
	require.Len(t, results.ParametersData, 3)
	assert.Equal(t, AlgorithmFinished, results.StoppingCondition)

	var report = results.String()
	assert.Contains(t, report, "% Optimal input:\n01\n")
	assert.Contains(t, report, "% Number of iterations:\n3\n")
	assert.Contains(t, report, "AlgorithmFinished")
}

func TestNewResultsHonoursReserveFlags(t *testing.T) {
	var h = NewHistory()
	h.Record(InputMask{true}, TrialOutcome{Training: 0.1, Selection: 0.5}, []float64{1})

	var config = DefaultConfig()
	config.ReserveParametersData = false
	config.ReservePerformanceData = false
	config.ReserveSelectionPerformanceData = false
	config.ReserveMinimalParameters = false

	var results = NewResults(h, config)
	assert.Empty(t, results.ParametersData)
	assert.Empty(t, results.PerformanceData)
	assert.Empty(t, results.SelectionPerformanceData)
	assert.Empty(t, results.MinimalParameters)
	assert.Equal(t, InputMask{true}, results.OptimalInputs)
}

func TestStoppingConditionString(t *testing.T) {
	assert.Equal(t, "MaximumTime", MaximumTime.String())
	assert.Equal(t, "CorrelationGoal", CorrelationGoal.String())
	assert.Equal(t, "StoppingCondition(9)", StoppingCondition(9).String())
}
