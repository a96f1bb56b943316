package forms

import (
	"strings"

	"github.com/erazemk/toolshed/internal/model"
)

// ReturnVariant selects which optional return fields become required.
type ReturnVariant int

const (
	// ReturnBasic requires condition and reason only.
	ReturnBasic ReturnVariant = iota
	// ReturnDetailed also requires cleaning status and actual usage duration,
	// and a damage description for tools returned in poor condition.
	ReturnDetailed
)

// ReturnForm is the condition report collected before a return request.
type ReturnForm struct {
	Variant ReturnVariant `form:"-"`

	Condition           string `form:"condition" validate:"required,oneof=excellent good fair poor"`
	ReturnReason        string `form:"returnReason" validate:"required"`
	Damages             string `form:"damages"`
	Feedback            string `form:"feedback"`
	CleaningStatus      string `form:"cleaningStatus"`
	MissingParts        string `form:"missingParts"`
	MaintenanceNeeded   string `form:"maintenanceNeeded"`
	NotesForNextUser    string `form:"notesForNextUser"`
	SafetyIssues        string `form:"safetyIssues"`
	ActualUsageDuration string `form:"actualUsageDuration"`
}

var returnMessages = messages{
	"condition": {
		"required": "Please select the tool condition",
		"oneof":    "Please select one of excellent, good, fair or poor",
	},
	"returnReason":        {"": "Please provide a reason for return"},
	"damages":             {"": "Please describe the damage"},
	"cleaningStatus":      {"": "Please state whether the tool was cleaned"},
	"actualUsageDuration": {"": "Please state how long the tool was used"},
}

// detailedRequired lists the fields the detailed variant adds.
var detailedRequired = []struct {
	name  string
	value func(*ReturnForm) string
}{
	{"cleaningStatus", func(f *ReturnForm) string { return f.CleaningStatus }},
	{"actualUsageDuration", func(f *ReturnForm) string { return f.ActualUsageDuration }},
}

// Validate trims the text fields and checks the form for its variant.
func (f *ReturnForm) Validate() error {
	for _, p := range []*string{&f.Condition, &f.ReturnReason, &f.Damages, &f.Feedback,
		&f.CleaningStatus, &f.MissingParts, &f.MaintenanceNeeded, &f.NotesForNextUser,
		&f.SafetyIssues, &f.ActualUsageDuration} {
		*p = strings.TrimSpace(*p)
	}
	f.Condition = strings.ToLower(f.Condition)

	errs := check(f, returnMessages)
	if f.Variant == ReturnDetailed {
		for _, field := range detailedRequired {
			if validate.Var(field.value(f), "required") != nil {
				if errs == nil {
					errs = FieldErrors{}
				}
				errs[field.name] = returnMessages.lookup(field.name, "required")
			}
		}
		if f.Condition == model.ConditionPoor && f.Damages == "" {
			if errs == nil {
				errs = FieldErrors{}
			}
			errs["damages"] = returnMessages.lookup("damages", "required")
		}
	}
	return orNil(errs)
}

// Report returns the validated payload.
func (f *ReturnForm) Report() model.ReturnReport {
	return model.ReturnReport{
		Condition:           f.Condition,
		ReturnReason:        f.ReturnReason,
		Damages:             f.Damages,
		Feedback:            f.Feedback,
		CleaningStatus:      f.CleaningStatus,
		MissingParts:        f.MissingParts,
		MaintenanceNeeded:   f.MaintenanceNeeded,
		NotesForNextUser:    f.NotesForNextUser,
		SafetyIssues:        f.SafetyIssues,
		ActualUsageDuration: f.ActualUsageDuration,
	}
}

// Submit validates the form and hands the report to confirm. confirm is not
// called when validation fails.
func (f *ReturnForm) Submit(confirm func(model.ReturnReport) error) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return confirm(f.Report())
}
