package task

import "errors"

const (
	ReportSuccess = "success"
	ReportError   = "error"

	MsgAssigned      = "Task created and assigned successfully!"
	MsgNoWorker      = "Task created, but no worker is available to assign it."
	MsgInternalError = "Internal server error"
)

// Report is the response shown to whoever submitted the intake form.
type Report struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewReport shapes the outcome of CreateAndAssign for the caller.
// Validation messages pass through verbatim; any other error is hidden.
// An assignment write failure is reported exactly like a successful assignment.
func NewReport(res Result, err error) Report {
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Report{Status: ReportError, Message: verr.Msg}
		}
		return Report{Status: ReportError, Message: MsgInternalError}
	}
	if res.Outcome == OutcomeUnassigned {
		return Report{Status: ReportSuccess, Message: MsgNoWorker}
	}
	return Report{Status: ReportSuccess, Message: MsgAssigned}
}
