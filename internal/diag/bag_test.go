package diag

import "testing"

func TestBag_UnboundedKeepsEverything(t *testing.T) {
	bag := NewBag(0)
	for i := 1; i <= 500; i++ {
		if !bag.Add(NewError(TrcUnrecognizedLine, i, "x")) {
			t.Fatalf("Add rejected diagnostic %d in unbounded bag", i)
		}
	}
	if bag.Len() != 500 {
		t.Errorf("Len = %d, want 500", bag.Len())
	}
	if bag.Dropped() != 0 {
		t.Errorf("Dropped = %d, want 0", bag.Dropped())
	}
}

func TestBag_LimitCountsDropped(t *testing.T) {
	bag := NewBag(2)
	bag.Add(NewError(TrcUnrecognizedLine, 1, "a"))
	bag.Add(NewError(TrcUnrecognizedLine, 2, "b"))
	if bag.Add(NewError(TrcUnrecognizedLine, 3, "c")) {
		t.Fatal("expected third Add to be rejected")
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Errorf("Len=%d Dropped=%d, want 2 and 1", bag.Len(), bag.Dropped())
	}
}

func TestBag_SortBySeverityWithinLine(t *testing.T) {
	bag := NewBag(0)
	bag.Add(New(SevWarning, TrcIncompleteAtEOF, 4, "w"))
	bag.Add(New(SevInfo, TrcModeHintMismatch, 0, "i"))
	bag.Add(New(SevError, TrcUnrecognizedLine, 4, "e"))
	bag.Add(New(SevError, TrcUnrecognizedLine, 2, "e2"))
	bag.Sort()

	items := bag.Items()
	want := []struct {
		line int
		sev  Severity
	}{{0, SevInfo}, {2, SevError}, {4, SevError}, {4, SevWarning}}
	for i, w := range want {
		if items[i].Line != w.line || items[i].Severity != w.sev {
			t.Errorf("item %d = line %d %s, want line %d %s", i, items[i].Line, items[i].Severity, w.line, w.sev)
		}
	}
}

func TestBag_HasErrorsAndWarnings(t *testing.T) {
	bag := NewBag(0)
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("empty bag reports findings")
	}
	bag.Add(New(SevWarning, TrcIncompleteAtEOF, 1, "w"))
	if bag.HasErrors() {
		t.Error("warning counted as error")
	}
	if !bag.HasWarnings() {
		t.Error("warning not detected")
	}
	if got := len(bag.Filter(SevError)); got != 0 {
		t.Errorf("Filter(SevError) = %d items, want 0", got)
	}
}

func TestCode_IDs(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{TrcUnrecognizedLine, "TRC1001"},
		{TrcOrphanResumed, "TRC2001"},
		{BtMissingOffset, "BT3002"},
		{ResToolMissing, "RES4001"},
		{IOReadError, "IO5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Errorf("unknown code title = %q", Code(9999).Title())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	r.Report(ResToolMissing, SevWarning, 0, "addr2line not found", "")
	r.Report(ResToolMissing, SevWarning, 0, "addr2line not found", "")
	r.Report(ResToolFailed, SevWarning, 0, "exit status 1", "")
	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
}
