package selection

import "fmt"

// Check verifies that the training driver is wired to an objective with a
// non-empty model and a data set with held-out samples.
// It is a sanity gate run once before a search, not before every evaluation.
func Check(driver ITrainingDriver) error {
	if driver == nil {
		return fmt.Errorf("%w: training driver is nil", ErrConfiguration)
	}
	if !driver.HasObjective() {
		return fmt.Errorf("%w: training driver has no objective", ErrConfiguration)
	}
	var objective = driver.Objective()
	if !objective.HasModel() {
		return fmt.Errorf("%w: objective has no model", ErrConfiguration)
	}
	if objective.Model().IsEmpty() {
		return fmt.Errorf("%w: model is empty", ErrConfiguration)
	}
	if !objective.HasDataSet() {
		return fmt.Errorf("%w: objective has no data set", ErrConfiguration)
	}
	if objective.DataSet().HeldOutSampleCount() == 0 {
		return fmt.Errorf("%w: number of selection instances is zero", ErrConfiguration)
	}
	return nil
}
