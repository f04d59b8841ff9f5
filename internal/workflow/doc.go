// Package workflow drives an intervention through its ordered steps.
//
// The Validator decides if a transition is legal and never mutates
// anything. The Progressor executes approved transitions and persists them
// through the storage.Repository with bounded retries. Callers are expected
// to re-read the intervention and step, validate, and only then progress:
//
//	iv, _ := progressor.FetchIntervention(ctx, ivID)
//	step, _ := progressor.FetchStep(ctx, stepID)
//	if err := validator.ValidateStepAdvancement(ctx, *iv, *step); err != nil {
//		return err
//	}
//	res, err := progressor.AdvanceStep(ctx, *iv, *step, req)
//
// There is no lock held between validation and progression. Two callers
// advancing the same step concurrently are told apart by the step version:
// the loser gets model.ErrConflict.
package workflow
