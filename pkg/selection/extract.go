package selection

import (
	"fmt"
	"strings"
)

// AlgorithmKind is the main training algorithm of a training driver.
type AlgorithmKind int

const (
	NoAlgorithm AlgorithmKind = iota
	GradientDescent
	ConjugateGradient
	QuasiNewton
	LevenbergMarquardt
	UserDefined
)

func (k AlgorithmKind) String() string {
	switch k {
	case NoAlgorithm:
		return "none"
	case GradientDescent:
		return "gradient-descent"
	case ConjugateGradient:
		return "conjugate-gradient"
	case QuasiNewton:
		return "quasi-newton"
	case LevenbergMarquardt:
		return "levenberg-marquardt"
	case UserDefined:
		return "user-defined"
	default:
		return fmt.Sprintf("AlgorithmKind(%d)", int(k))
	}
}

func ParseAlgorithmKind(s string) (AlgorithmKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return NoAlgorithm, nil
	case "gradient-descent", "gd":
		return GradientDescent, nil
	case "conjugate-gradient", "cg":
		return ConjugateGradient, nil
	case "quasi-newton", "bfgs":
		return QuasiNewton, nil
	case "levenberg-marquardt", "lm":
		return LevenbergMarquardt, nil
	case "user-defined", "user":
		return UserDefined, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

func (k AlgorithmKind) MarshalText() ([]byte, error) {
	if k < NoAlgorithm || k > UserDefined {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(k))
	}
	return []byte(k.String()), nil
}

func (k *AlgorithmKind) UnmarshalText(text []byte) error {
	var kind, err = ParseAlgorithmKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// RawResult is the algorithm specific result of one training run.
// The set of variants is closed.
type RawResult interface {
	rawResult()
}

type NoneResult struct{}

type GradientDescentResult struct {
	FinalPerformance          float64
	FinalSelectionPerformance float64
	Epochs                    int
}

// ConjugateGradientResult keeps whole histories, the final values are the last elements.
type ConjugateGradientResult struct {
	PerformanceHistory          []float64
	SelectionPerformanceHistory []float64
}

type QuasiNewtonResult struct {
	Final struct {
		Performance          float64
		SelectionPerformance float64
	}
	Iterations int
	Status     string
}

type LevenbergMarquardtResult struct {
	FinalPerformance          float64
	FinalSelectionPerformance float64
	FinalDamping              float64
}

type UserDefinedResult struct {
	Payload any
}

func (NoneResult) rawResult()               {}
func (GradientDescentResult) rawResult()    {}
func (ConjugateGradientResult) rawResult()  {}
func (QuasiNewtonResult) rawResult()        {}
func (LevenbergMarquardtResult) rawResult() {}
func (UserDefinedResult) rawResult()        {}

// ExtractPerformance maps a raw training result into (training, selection) loss.
func ExtractPerformance(raw RawResult, kind AlgorithmKind) (TrialOutcome, error) {
	switch kind {
	case NoAlgorithm, UserDefined:
		return TrialOutcome{}, nil
	case GradientDescent:
		var r, ok = raw.(GradientDescentResult)
		if !ok {
			return TrialOutcome{}, mismatch(raw, kind)
		}
		return TrialOutcome{Training: r.FinalPerformance, Selection: r.FinalSelectionPerformance}, nil
	case ConjugateGradient:
		var r, ok = raw.(ConjugateGradientResult)
		if !ok {
			return TrialOutcome{}, mismatch(raw, kind)
		}
		if len(r.PerformanceHistory) == 0 || len(r.SelectionPerformanceHistory) == 0 {
			return TrialOutcome{}, fmt.Errorf("%w: empty %v history", ErrInvalidArgument, kind)
		}
		return TrialOutcome{
			Training:  r.PerformanceHistory[len(r.PerformanceHistory)-1],
			Selection: r.SelectionPerformanceHistory[len(r.SelectionPerformanceHistory)-1],
		}, nil
	case QuasiNewton:
		var r, ok = raw.(QuasiNewtonResult)
		if !ok {
			return TrialOutcome{}, mismatch(raw, kind)
		}
		return TrialOutcome{Training: r.Final.Performance, Selection: r.Final.SelectionPerformance}, nil
	case LevenbergMarquardt:
		var r, ok = raw.(LevenbergMarquardtResult)
		if !ok {
			return TrialOutcome{}, mismatch(raw, kind)
		}
		return TrialOutcome{Training: r.FinalPerformance, Selection: r.FinalSelectionPerformance}, nil
	default:
		return TrialOutcome{}, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, kind)
	}
}

func mismatch(raw RawResult, kind AlgorithmKind) error {
	return fmt.Errorf("%w: %T is not a %v result", ErrUnsupportedAlgorithm, raw, kind)
}
