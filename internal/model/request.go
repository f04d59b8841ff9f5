package model

// AdvanceStepRequest is the request to complete a step of an intervention.
type AdvanceStepRequest struct {
	InterventionID string
	StepID         string
	CollectedData  map[string]any
	Photos         []string
	Notes          *string
	// QualityCheckPassed and Issues are recorded but don't change the
	// outcome, an advanced step is always completed.
	QualityCheckPassed bool
	Issues             []string
}

// SaveStepProgressRequest is the request to checkpoint partial work on a step.
type SaveStepProgressRequest struct {
	StepID        string
	CollectedData map[string]any
	Notes         *string
	Photos        []string
}

// AdvanceStepResponse is the result of advancing a step.
type AdvanceStepResponse struct {
	Step     Step
	NextStep *Step
	// ProgressPercentage is the intervention completion after the step was completed.
	ProgressPercentage    float64
	RequirementsCompleted []string
}
