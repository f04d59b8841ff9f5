package printer

import "github.com/fieldops/intervention/internal/model"

// Printer knows how to print intervention information in different formats.
type Printer interface {
	PrintInterventionList(interventions []model.Intervention) error
	PrintStatus(intervention model.Intervention, steps []model.Step, progress model.Progress) error
	PrintIntervention(intervention model.Intervention) error
	PrintStep(step model.Step) error
	PrintAdvance(resp model.AdvanceStepResponse) error
	PrintMessage(msg string) error
}
