package selection

import (
	"fmt"
	"strings"
)

// InputMask selects the active input variables, true = included.
type InputMask []bool

func NewInputMask(size int, active ...int) InputMask {
	var mask = make(InputMask, size)
	for _, index := range active {
		mask[index] = true
	}
	return mask
}

// Count returns number of active inputs.
func (m InputMask) Count() int {
	var count = 0
	for _, active := range m {
		if active {
			count++
		}
	}
	return count
}

func (m InputMask) Equal(other InputMask) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Key is a normalized encoding of the mask. Two masks have the same key
// iff they are equal element-wise and have the same length.
func (m InputMask) Key() string {
	var sb strings.Builder
	sb.Grow(len(m))
	for _, active := range m {
		if active {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Indices returns the positions of active inputs.
func (m InputMask) Indices() []int {
	var result = make([]int, 0, len(m))
	for i, active := range m {
		if active {
			result = append(result, i)
		}
	}
	return result
}

func (m InputMask) Clone() InputMask {
	return append(InputMask(nil), m...)
}

func (m InputMask) String() string {
	return m.Key()
}

// ParseInputMask parses "1,0,1" or "101".
func ParseInputMask(s string) (InputMask, error) {
	var compact = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	compact = strings.ReplaceAll(compact, " ", "")
	var mask = make(InputMask, 0, len(compact))
	for _, c := range compact {
		switch c {
		case '1', 't', 'T':
			mask = append(mask, true)
		case '0', 'f', 'F':
			mask = append(mask, false)
		default:
			return nil, fmt.Errorf("%w: bad mask %q", ErrInvalidArgument, s)
		}
	}
	return mask, nil
}

// TrialOutcome holds losses of one training run (or an aggregate of runs).
// Lower is better.
type TrialOutcome struct {
	Training  float64
	Selection float64
}

type AggregationPolicy int

const (
	Minimum AggregationPolicy = iota
	Maximum
	Mean
)

func (p AggregationPolicy) String() string {
	switch p {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("AggregationPolicy(%d)", int(p))
	}
}

func ParseAggregationPolicy(s string) (AggregationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimum", "min", "0":
		return Minimum, nil
	case "maximum", "max", "1":
		return Maximum, nil
	case "mean", "average", "2":
		return Mean, nil
	default:
		return 0, fmt.Errorf("%w: unknown aggregation policy %q", ErrInvalidArgument, s)
	}
}

func (p AggregationPolicy) MarshalText() ([]byte, error) {
	if p < Minimum || p > Mean {
		return nil, fmt.Errorf("%w: unknown aggregation policy %d", ErrInvalidArgument, int(p))
	}
	return []byte(p.String()), nil
}

func (p *AggregationPolicy) UnmarshalText(text []byte) error {
	var policy, err = ParseAggregationPolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// HistoryEntry is one evaluated subset. Halves may be missing after a partial clear.
type HistoryEntry struct {
	Mask          InputMask
	Outcome       TrialOutcome
	HasTraining   bool
	HasSelection  bool
	Parameters    []float64
	HasParameters bool
}

// Evaluation is the result of Runner.Evaluate. Parameters is a private copy.
type Evaluation struct {
	Outcome    TrialOutcome
	Parameters []float64
	Trials     int
	Cached     bool
}
