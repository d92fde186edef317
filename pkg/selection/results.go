package selection

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type StoppingCondition int

const (
	MaximumTime StoppingCondition = iota
	SelectionPerformanceGoal
	MaximumIterations
	MaximumSelectionFailures
	CorrelationGoal
	AlgorithmFinished
)

func (c StoppingCondition) String() string {
	switch c {
	case MaximumTime:
		return "MaximumTime"
	case SelectionPerformanceGoal:
		return "SelectionPerformanceGoal"
	case MaximumIterations:
		return "MaximumIterations"
	case MaximumSelectionFailures:
		return "MaximumSelectionFailures"
	case CorrelationGoal:
		return "CorrelationGoal"
	case AlgorithmFinished:
		return "AlgorithmFinished"
	default:
		return fmt.Sprintf("StoppingCondition(%d)", int(c))
	}
}

// Results is the report of a search over input subsets.
type Results struct {
	InputsData               []InputMask
	ParametersData           [][]float64
	PerformanceData          []float64
	SelectionPerformanceData []float64
	MinimalParameters        []float64

	StoppingCondition         StoppingCondition
	FinalPerformance          float64
	FinalSelectionPerformance float64
	OptimalInputs             InputMask
	IterationsNumber          int
	ElapsedTime               time.Duration
}

// NewResults builds a report from the history. Entries missing their selection
// half are not candidates for the optimum. Histories are kept only when the
// matching Reserve flag is set.
func NewResults(history *History, config Config) *Results {
	var results = &Results{StoppingCondition: AlgorithmFinished}
	var best = math.Inf(1)
	for _, entry := range history.Entries() {
		results.InputsData = append(results.InputsData, entry.Mask)
		if config.ReserveParametersData && entry.HasParameters {
			results.ParametersData = append(results.ParametersData, entry.Parameters)
		}
		if config.ReservePerformanceData && entry.HasTraining {
			results.PerformanceData = append(results.PerformanceData, entry.Outcome.Training)
		}
		if config.ReserveSelectionPerformanceData && entry.HasSelection {
			results.SelectionPerformanceData = append(results.SelectionPerformanceData, entry.Outcome.Selection)
		}
		if entry.HasSelection && entry.Outcome.Selection < best {
			best = entry.Outcome.Selection
			results.OptimalInputs = entry.Mask
			results.FinalSelectionPerformance = entry.Outcome.Selection
			results.FinalPerformance = entry.Outcome.Training
			if config.ReserveMinimalParameters {
				results.MinimalParameters = entry.Parameters
			}
		}
	}
	results.IterationsNumber = len(results.InputsData)
	return results
}

func (r *Results) String() string {
	var sb strings.Builder
	if len(r.InputsData) != 0 {
		sb.WriteString("% Inputs history:\n")
		for _, mask := range r.InputsData {
			fmt.Fprintln(&sb, mask)
		}
	}
	if len(r.ParametersData) != 0 {
		sb.WriteString("% Parameters history:\n")
		for _, parameters := range r.ParametersData {
			fmt.Fprintln(&sb, formatFloats(parameters))
		}
	}
	if len(r.PerformanceData) != 0 {
		fmt.Fprintf(&sb, "%% Performance history:\n%v\n", formatFloats(r.PerformanceData))
	}
	if len(r.SelectionPerformanceData) != 0 {
		fmt.Fprintf(&sb, "%% Selection performance history:\n%v\n", formatFloats(r.SelectionPerformanceData))
	}
	if len(r.MinimalParameters) != 0 {
		fmt.Fprintf(&sb, "%% Minimal parameters:\n%v\n", formatFloats(r.MinimalParameters))
	}
	fmt.Fprintf(&sb, "%% Stopping condition\n%v\n", r.StoppingCondition)
	if r.FinalSelectionPerformance != 0 {
		fmt.Fprintf(&sb, "%% Optimum selection performance:\n%v\n", r.FinalSelectionPerformance)
	}
	if r.FinalPerformance != 0 {
		fmt.Fprintf(&sb, "%% Final performance:\n%v\n", r.FinalPerformance)
	}
	if len(r.OptimalInputs) != 0 {
		fmt.Fprintf(&sb, "%% Optimal input:\n%v\n", r.OptimalInputs)
	}
	fmt.Fprintf(&sb, "%% Number of iterations:\n%v\n", r.IterationsNumber)
	fmt.Fprintf(&sb, "%% Elapsed time:\n%v\n", r.ElapsedTime)
	return sb.String()
}

func formatFloats(values []float64) string {
	var parts = make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, " ")
}
