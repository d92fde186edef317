// Package selection is the shared core of input selection algorithms.
//
// A Runner evaluates a candidate subset of input variables by resizing the model,
// training it a configured number of trials and folding the outcomes with an
// aggregation policy. Every evaluated subset is memoized in a History, so a
// search strategy built on top never pays twice for the same subset.
// A Scorer ranks inputs by their correlation with the targets.
package selection
