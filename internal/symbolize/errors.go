package symbolize

import (
	"fmt"

	"stracetui/internal/diag"
	"stracetui/internal/model"
)

// Error is a recoverable resolution failure for one frame. Code is one of the
// RES diagnostic codes.
type Error struct {
	Code diag.Code
	Key  model.FrameKey
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %s: %s", e.Key, e.Code.Title())
	}
	return fmt.Sprintf("resolve %s: %s: %v", e.Key, e.Code.Title(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the failure for the error list of an export.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.New(diag.SevWarning, e.Code, 0, e.Error()).WithRaw(e.Key.String())
}
