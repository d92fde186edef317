package selection

import "math"

// aggregator folds trial outcomes of one evaluation. Halves known from a
// partial cache hit are fixed and never folded.
type aggregator struct {
	policy         AggregationPolicy
	fixedTraining  bool
	fixedSelection bool
	outcome        TrialOutcome
	sum            TrialOutcome
	trials         int
	best           float64
	parameters     []float64
}

func newAggregator(policy AggregationPolicy, known Lookup) *aggregator {
	var a = &aggregator{
		policy:         policy,
		fixedTraining:  known.HasTraining,
		fixedSelection: known.HasSelection,
		best:           math.Inf(1),
	}
	if known.HasTraining {
		a.outcome.Training = known.Training
	}
	if known.HasSelection {
		a.outcome.Selection = known.Selection
	}
	return a
}

// add folds one trial; weights is called only when a parameter snapshot is due.
func (a *aggregator) add(current TrialOutcome, weights func() []float64) {
	a.trials++
	if a.trials == 1 {
		if !a.fixedTraining {
			a.outcome.Training = current.Training
		}
		if !a.fixedSelection {
			a.outcome.Selection = current.Selection
		}
		a.sum = current
		a.best = a.meanKey(current)
		a.parameters = weights()
		return
	}

	switch a.policy {
	case Minimum:
		var improved = false
		if !a.fixedTraining && current.Training < a.outcome.Training {
			a.outcome.Training = current.Training
			improved = true
		}
		if !a.fixedSelection && current.Selection < a.outcome.Selection {
			a.outcome.Selection = current.Selection
			improved = true
		}
		if improved {
			a.parameters = weights()
		}
	case Maximum:
		var improved = false
		if !a.fixedTraining && current.Training > a.outcome.Training {
			a.outcome.Training = current.Training
			improved = true
		}
		if !a.fixedSelection && current.Selection > a.outcome.Selection {
			a.outcome.Selection = current.Selection
			improved = true
		}
		if improved {
			a.parameters = weights()
		}
	case Mean:
		a.sum.Training += current.Training
		a.sum.Selection += current.Selection
		var n = float64(a.trials)
		if !a.fixedTraining {
			a.outcome.Training = a.sum.Training / n
		}
		if !a.fixedSelection {
			a.outcome.Selection = a.sum.Selection / n
		}
		// keep the weights of the trial with the best selection loss
		if key := a.meanKey(current); key < a.best {
			a.best = key
			a.parameters = weights()
		}
	}
}

func (a *aggregator) meanKey(current TrialOutcome) float64 {
	if a.fixedSelection {
		return current.Training
	}
	return current.Selection
}
