package selection

import (
	"fmt"
	"sync"
)

// Lookup is what History knows about one mask.
type Lookup struct {
	Training     float64
	Selection    float64
	HasTraining  bool
	HasSelection bool
}

// Full reports whether both halves are known.
func (l Lookup) Full() bool {
	return l.HasTraining && l.HasSelection
}

func (l Lookup) Outcome() TrialOutcome {
	return TrialOutcome{Training: l.Training, Selection: l.Selection}
}

// History memoizes evaluated masks. The three columns (performance, selection
// performance, parameters) are cleared independently; Clear resets all of them.
// Safe for concurrent use.
type History struct {
	mu         sync.Mutex
	masks      []InputMask
	index      map[string]int
	training   map[string]float64
	selection  map[string]float64
	parameters map[string][]float64
}

func NewHistory() *History {
	return &History{
		index:      make(map[string]int),
		training:   make(map[string]float64),
		selection:  make(map[string]float64),
		parameters: make(map[string][]float64),
	}
}

func (h *History) Lookup(mask InputMask) (Lookup, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lookup(mask.Key())
}

func (h *History) lookup(key string) (Lookup, bool) {
	var result Lookup
	result.Training, result.HasTraining = h.training[key]
	result.Selection, result.HasSelection = h.selection[key]
	_, known := h.index[key]
	return result, known
}

// Record stores an evaluated mask. Values already present for the mask are kept,
// only missing halves are filled.
func (h *History) Record(mask InputMask, outcome TrialOutcome, parameters []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var key = mask.Key()
	if _, found := h.index[key]; !found {
		h.index[key] = len(h.masks)
		h.masks = append(h.masks, mask.Clone())
	}
	if _, found := h.training[key]; !found {
		h.training[key] = outcome.Training
	}
	if _, found := h.selection[key]; !found {
		h.selection[key] = outcome.Selection
	}
	if _, found := h.parameters[key]; !found && parameters != nil {
		h.parameters[key] = append([]float64(nil), parameters...)
	}
}

func (h *History) ParametersFor(mask InputMask) ([]float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var parameters, found = h.parameters[mask.Key()]
	if !found {
		return nil, fmt.Errorf("%w: inputs %v not found in the parameters history", ErrNotFound, mask)
	}
	return append([]float64(nil), parameters...), nil
}

func (h *History) ClearSelectionHistory() {
	h.mu.Lock()
	h.selection = make(map[string]float64)
	h.mu.Unlock()
}

func (h *History) ClearPerformanceHistory() {
	h.mu.Lock()
	h.training = make(map[string]float64)
	h.mu.Unlock()
}

func (h *History) ClearParametersHistory() {
	h.mu.Lock()
	h.parameters = make(map[string][]float64)
	h.mu.Unlock()
}

// Clear removes every mask together with all three columns.
func (h *History) Clear() {
	h.mu.Lock()
	h.masks = nil
	h.index = make(map[string]int)
	h.training = make(map[string]float64)
	h.selection = make(map[string]float64)
	h.parameters = make(map[string][]float64)
	h.mu.Unlock()
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.masks)
}

// Entries returns the history in insertion order.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	var result = make([]HistoryEntry, 0, len(h.masks))
	for _, mask := range h.masks {
		var key = mask.Key()
		var lookup, _ = h.lookup(key)
		var parameters, hasParameters = h.parameters[key]
		result = append(result, HistoryEntry{
			Mask:          mask.Clone(),
			Outcome:       lookup.Outcome(),
			HasTraining:   lookup.HasTraining,
			HasSelection:  lookup.HasSelection,
			Parameters:    append([]float64(nil), parameters...),
			HasParameters: hasParameters,
		})
	}
	return result
}
