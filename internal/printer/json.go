package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/fieldops/intervention/internal/model"
)

// JSONPrinter prints intervention information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type interventionOutput struct {
	ID                   string     `json:"id"`
	TaskID               string     `json:"task_id"`
	TechnicianID         string     `json:"technician_id"`
	Template             string     `json:"template,omitempty"`
	Status               string     `json:"status"`
	CurrentStep          int        `json:"current_step"`
	CompletionPercentage float64    `json:"completion_percentage"`
	StartedAt            *time.Time `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	CreatedAt            time.Time  `json:"created_at"`
}

type stepOutput struct {
	ID            string         `json:"id"`
	StepNumber    int            `json:"step_number"`
	Name          string         `json:"name,omitempty"`
	Status        string         `json:"status"`
	Mandatory     bool           `json:"mandatory"`
	CollectedData map[string]any `json:"collected_data,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	PhotoURLs     []string       `json:"photo_urls,omitempty"`
	PhotoCount    int            `json:"photo_count"`
	Version       int            `json:"version"`
	StartedAt     *time.Time     `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
}

type statusOutput struct {
	Intervention interventionOutput `json:"intervention"`
	Progress     progressOutput     `json:"progress"`
	Steps        []stepOutput       `json:"steps"`
}

type progressOutput struct {
	Percentage  float64 `json:"percentage"`
	CurrentStep int     `json:"current_step"`
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
}

type advanceOutput struct {
	Step                  stepOutput  `json:"step"`
	NextStep              *stepOutput `json:"next_step"`
	ProgressPercentage    float64     `json:"progress_percentage"`
	RequirementsCompleted []string    `json:"requirements_completed"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintInterventionList prints interventions in JSON format.
func (j *JSONPrinter) PrintInterventionList(interventions []model.Intervention) error {
	items := make([]interventionOutput, len(interventions))
	for i, iv := range interventions {
		items[i] = toInterventionOutput(iv)
	}
	return j.encode(items)
}

// PrintStatus prints the intervention, its progress and its steps in JSON format.
func (j *JSONPrinter) PrintStatus(iv model.Intervention, steps []model.Step, progress model.Progress) error {
	out := statusOutput{
		Intervention: toInterventionOutput(iv),
		Progress: progressOutput{
			Percentage:  progress.Percentage,
			CurrentStep: progress.CurrentStep,
			Completed:   progress.Completed,
			Total:       progress.Total,
		},
		Steps: make([]stepOutput, len(steps)),
	}
	for i, s := range steps {
		out.Steps[i] = toStepOutput(s)
	}
	return j.encode(out)
}

// PrintIntervention prints the intervention in JSON format.
func (j *JSONPrinter) PrintIntervention(iv model.Intervention) error {
	return j.encode(toInterventionOutput(iv))
}

// PrintStep prints the step in JSON format.
func (j *JSONPrinter) PrintStep(s model.Step) error {
	return j.encode(toStepOutput(s))
}

// PrintAdvance prints the step advancement result in JSON format.
func (j *JSONPrinter) PrintAdvance(resp model.AdvanceStepResponse) error {
	out := advanceOutput{
		Step:                  toStepOutput(resp.Step),
		ProgressPercentage:    resp.ProgressPercentage,
		RequirementsCompleted: resp.RequirementsCompleted,
	}
	if resp.NextStep != nil {
		next := toStepOutput(*resp.NextStep)
		out.NextStep = &next
	}
	return j.encode(out)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toInterventionOutput(iv model.Intervention) interventionOutput {
	return interventionOutput{
		ID:                   iv.ID,
		TaskID:               iv.TaskID,
		TechnicianID:         iv.TechnicianID,
		Template:             iv.TemplateName,
		Status:               string(iv.Status),
		CurrentStep:          iv.CurrentStep,
		CompletionPercentage: iv.CompletionPercentage,
		StartedAt:            utcOrNil(iv.StartedAt),
		CompletedAt:          utcOrNil(iv.CompletedAt),
		CreatedAt:            iv.CreatedAt.UTC(),
	}
}

func toStepOutput(s model.Step) stepOutput {
	return stepOutput{
		ID:            s.ID,
		StepNumber:    s.StepNumber,
		Name:          s.Name,
		Status:        string(s.Status),
		Mandatory:     s.Mandatory,
		CollectedData: s.CollectedData,
		Notes:         s.Notes,
		PhotoURLs:     s.PhotoURLs,
		PhotoCount:    s.PhotoCount,
		Version:       s.Version,
		StartedAt:     utcOrNil(s.StartedAt),
		CompletedAt:   utcOrNil(s.CompletedAt),
	}
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
