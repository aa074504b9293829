package model

import "sort"

// Summary aggregates a record sequence for the export header.
type Summary struct {
	TotalSyscalls  int      `json:"total_syscalls"`
	FailedSyscalls int      `json:"failed_syscalls"`
	UniquePIDs     []int    `json:"unique_pids"`
	Signals        int      `json:"signals"`
	Exits          int      `json:"exits"`
	Incomplete     int      `json:"incomplete"`
	TotalDuration  *float64 `json:"total_duration"`
}

// Summarize counts records by kind. TotalDuration is reserved and stays nil.
func Summarize(records []CallRecord) Summary {
	var s Summary
	pids := make(map[int]struct{})
	for i := range records {
		r := &records[i]
		pids[r.PID] = struct{}{}
		switch r.Kind() {
		case KindSignal:
			s.Signals++
		case KindExit:
			s.Exits++
		case KindCall:
			s.TotalSyscalls++
			if r.Failed() {
				s.FailedSyscalls++
			}
			if r.Incomplete() {
				s.Incomplete++
			}
		}
	}
	s.UniquePIDs = make([]int, 0, len(pids))
	for pid := range pids {
		s.UniquePIDs = append(s.UniquePIDs, pid)
	}
	sort.Ints(s.UniquePIDs)
	return s
}

// FrameCount returns the number of backtrace frames over all records.
func FrameCount(records []CallRecord) int {
	n := 0
	for i := range records {
		n += len(records[i].Backtrace)
	}
	return n
}
