// Package testkit holds checks shared by the package tests.
package testkit

import (
	"fmt"

	"stracetui/internal/model"
)

// CheckRecordInvariants runs the shape invariants every parsed record must
// satisfy:
// 1) a record is a call, a signal or an exit, never two of them
// 2) no record handed out is still marked resumed
// 3) only calls may stay unfinished, and then carry no result
// 4) an errno implies a return value; calls have a name
// 5) frames have a binary and an address, function and offset come in pairs
func CheckRecordInvariants(records []model.CallRecord) error {
	for i := range records {
		r := &records[i]
		if r.Signal != nil && r.Exit != nil {
			return fmt.Errorf("record %d: both signal and exit set", i)
		}
		if r.IsResumed {
			return fmt.Errorf("record %d (%s): still marked resumed", i, r.Title())
		}
		if r.Kind() != model.KindCall {
			if r.IsUnfinished || r.ReturnValue != nil || r.Error != nil || r.Name != "" {
				return fmt.Errorf("record %d (%s): call fields on a %s record", i, r.Title(), r.Kind())
			}
		} else {
			if r.Name == "" {
				return fmt.Errorf("record %d: call without a name", i)
			}
			if r.IsUnfinished && (r.ReturnValue != nil || r.Error != nil) {
				return fmt.Errorf("record %d (%s): unfinished call has a result", i, r.Name)
			}
			if r.Error != nil && r.ReturnValue == nil {
				return fmt.Errorf("record %d (%s): errno without return value", i, r.Name)
			}
		}
		for j := range r.Backtrace {
			f := &r.Backtrace[j]
			if f.Binary == "" || f.Address == "" {
				return fmt.Errorf("record %d frame %d: empty binary or address", i, j)
			}
			if (f.Function == nil) != (f.Offset == nil) {
				return fmt.Errorf("record %d frame %d: function and offset not paired", i, j)
			}
		}
	}
	return nil
}
