package testkit

import (
	"strings"
	"testing"

	"stracetui/internal/model"
)

func TestCheckRecordInvariants(t *testing.T) {
	fn := "main"
	tests := []struct {
		name    string
		rec     model.CallRecord
		wantErr string
	}{
		{"call", model.CallRecord{Name: "read", ReturnValue: model.StringPtr("0")}, ""},
		{"unfinished", model.CallRecord{Name: "wait4", IsUnfinished: true}, ""},
		{"signal", model.CallRecord{Signal: &model.Signal{Name: "SIGCHLD"}}, ""},
		{"both", model.CallRecord{Signal: &model.Signal{}, Exit: &model.Exit{}}, "both signal and exit"},
		{"resumed", model.CallRecord{Name: "read", IsResumed: true}, "still marked resumed"},
		{"nameless", model.CallRecord{}, "without a name"},
		{"unfinished result", model.CallRecord{Name: "read", IsUnfinished: true, ReturnValue: model.StringPtr("1")}, "unfinished call has a result"},
		{"errno", model.CallRecord{Name: "open", Error: &model.Errno{Code: "ENOENT"}}, "errno without return value"},
		{"signal fields", model.CallRecord{Name: "kill", Signal: &model.Signal{Name: "SIGTERM"}}, "call fields"},
		{"frame", model.CallRecord{Name: "read", Backtrace: []model.BacktraceFrame{{Binary: "/bin/a", Function: &fn, Address: "0x1"}}}, "not paired"},
	}
	for _, tt := range tests {
		err := CheckRecordInvariants([]model.CallRecord{tt.rec})
		switch {
		case tt.wantErr == "" && err != nil:
			t.Errorf("%s: unexpected error %v", tt.name, err)
		case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.wantErr)
		}
	}
}
