// Package lib provides a Go SDK to run field intervention workflows programmatically.
//
// An intervention is a job instance made of an ordered list of steps
// materialized from a workflow template. Steps are completed strictly in order
// while the intervention is in progress, and the intervention can only be
// finalized once all its mandatory steps are completed.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	iv, err := client.StartIntervention(ctx, lib.StartInterventionOpts{
//	    TaskID:       "task-42",
//	    TechnicianID: "tech-7",
//	})
//
//	for _, step := range iv.Steps {
//	    _, err := client.AdvanceStep(ctx, iv.Intervention.ID, step.ID, &lib.AdvanceStepOpts{
//	        CollectedData:      map[string]any{"checked": true},
//	        QualityCheckPassed: true,
//	    })
//	    ...
//	}
//
//	client.FinalizeIntervention(ctx, iv.Intervention.ID)
//
// # Storage
//
// By default interventions are stored in a SQLite database at ~/.ivctl/ivctl.db.
// Use [StorageMemory] for tests. Every storage operation is retried on
// transient failures (3 attempts with linear backoff by default, see [RetryConfig]).
//
// # Error Handling
//
// All errors can be checked with errors.Is against the SDK sentinels:
//
//   - [ErrNotFound]: The intervention or step does not exist.
//   - [ErrAlreadyExists]: A resource with the same ID already exists.
//   - [ErrNotValid]: Invalid input, e.g. collected data that can't be serialized.
//   - [ErrWorkflow]: The workflow rules reject the operation, see [WorkflowError].
//   - [ErrConflict]: The step was modified concurrently, reload and try again.
//   - [ErrDatabase]: Storage failed on every attempt, see [DatabaseError].
//
// Completing a step and updating the intervention progress are two separate
// writes. When the second one fails the step stays completed and the error is
// returned, the progress is recomputed on the next successful advancement.
package lib
