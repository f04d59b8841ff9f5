package printer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fieldops/intervention/internal/model"
)

// TablePrinter prints intervention information in a table format.
type TablePrinter struct {
	writer  io.Writer
	timeNow func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, timeNow: time.Now}
}

// PrintInterventionList prints interventions in a table format.
func (t *TablePrinter) PrintInterventionList(interventions []model.Intervention) error {
	if len(interventions) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTASK\tTECHNICIAN\tSTATUS\tSTEP\tPROGRESS\tELAPSED")
	for _, iv := range interventions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f%%\t%s\n",
			iv.ID, iv.TaskID, iv.TechnicianID, iv.Status, iv.CurrentStep, iv.CompletionPercentage,
			Elapsed(iv.StartedAt, iv.CompletedAt, t.timeNow()))
	}

	return nil
}

// PrintStatus prints the intervention details followed by its steps.
func (t *TablePrinter) PrintStatus(iv model.Intervention, steps []model.Step, progress model.Progress) error {
	t.printIntervention(iv)
	fmt.Fprintf(t.writer, "Progress:     %s (%d/%d)\n", ProgressBar(progress.Percentage, 20), progress.Completed, progress.Total)
	fmt.Fprintln(t.writer)

	if len(steps) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tNAME\tSTATUS\tMANDATORY\tPHOTOS\tELAPSED")
	for _, s := range steps {
		marker := ""
		if s.StepNumber == progress.CurrentStep && s.Status != model.StepStatusCompleted {
			marker = " <"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%s%s\n",
			s.StepNumber, s.Name, s.Status, s.Mandatory, s.PhotoCount,
			Elapsed(s.StartedAt, s.CompletedAt, t.timeNow()), marker)
	}

	return nil
}

// PrintIntervention prints the intervention details.
func (t *TablePrinter) PrintIntervention(iv model.Intervention) error {
	t.printIntervention(iv)
	return nil
}

func (t *TablePrinter) printIntervention(iv model.Intervention) {
	fmt.Fprintf(t.writer, "ID:           %s\n", iv.ID)
	fmt.Fprintf(t.writer, "Task:         %s\n", iv.TaskID)
	fmt.Fprintf(t.writer, "Technician:   %s\n", iv.TechnicianID)
	if iv.TemplateName != "" {
		fmt.Fprintf(t.writer, "Template:     %s\n", iv.TemplateName)
	}
	fmt.Fprintf(t.writer, "Status:       %s\n", iv.Status)
	fmt.Fprintf(t.writer, "Current step: %d\n", iv.CurrentStep)
	fmt.Fprintf(t.writer, "Started:      %s\n", formatOptionalTimestamp(iv.StartedAt))
	if iv.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:    %s\n", FormatTimestamp(*iv.CompletedAt))
	}
}

// PrintStep prints a single step.
func (t *TablePrinter) PrintStep(s model.Step) error {
	fmt.Fprintf(t.writer, "Step:         %d (%s)\n", s.StepNumber, s.ID)
	if s.Name != "" {
		fmt.Fprintf(t.writer, "Name:         %s\n", s.Name)
	}
	fmt.Fprintf(t.writer, "Status:       %s\n", s.Status)
	fmt.Fprintf(t.writer, "Photos:       %d\n", s.PhotoCount)
	if len(s.CollectedData) > 0 {
		fmt.Fprintf(t.writer, "Data keys:    %s\n", strings.Join(slices.Sorted(maps.Keys(s.CollectedData)), ", "))
	}
	if s.Notes != "" {
		fmt.Fprintf(t.writer, "Notes:        %s\n", s.Notes)
	}
	return nil
}

// PrintAdvance prints the result of a step advancement.
func (t *TablePrinter) PrintAdvance(resp model.AdvanceStepResponse) error {
	fmt.Fprintf(t.writer, "Completed step %d (%s)\n", resp.Step.StepNumber, resp.Step.ID)
	fmt.Fprintf(t.writer, "Progress:     %s\n", ProgressBar(resp.ProgressPercentage, 20))
	if resp.NextStep != nil {
		fmt.Fprintf(t.writer, "Next step:    %d %s (%s)\n", resp.NextStep.StepNumber, resp.NextStep.Name, resp.NextStep.ID)
	} else {
		fmt.Fprintln(t.writer, "Next step:    -")
	}
	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
