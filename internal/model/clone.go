package model

import "slices"

func cloneBools(in [][]bool) [][]bool {
	if in == nil {
		return nil
	}
	out := make([][]bool, len(in))
	for i := range in {
		out[i] = slices.Clone(in[i])
	}
	return out
}

func cloneInts(in [][]int) [][]int {
	if in == nil {
		return nil
	}
	out := make([][]int, len(in))
	for i := range in {
		out[i] = slices.Clone(in[i])
	}
	return out
}

// Clone returns a copy of r that shares no slices with it.
func (r Report) Clone() Report {
	r.Correct = slices.Clone(r.Correct)
	r.Incorrect = slices.Clone(r.Incorrect)
	r.Incomplete = slices.Clone(r.Incomplete)
	r.Intervals = slices.Clone(r.Intervals)
	r.Answers = cloneBools(r.Answers)
	r.FillIns = slices.Clone(r.FillIns)
	r.Orders = cloneInts(r.Orders)
	return r
}

// Clone returns a copy of s that shares no slices with it.
func (s SessionRecord) Clone() SessionRecord {
	st := s.State
	st.Answers = cloneBools(st.Answers)
	st.FillIns = slices.Clone(st.FillIns)
	st.Orders = cloneInts(st.Orders)
	st.Marked = slices.Clone(st.Marked)
	st.Intervals = slices.Clone(st.Intervals)
	s.State = st
	return s
}

// CloneReports copies every report in list.
func CloneReports(list []Report) []Report {
	if list == nil {
		return nil
	}
	out := make([]Report, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

// CloneSessions copies every session in list.
func CloneSessions(list []SessionRecord) []SessionRecord {
	if list == nil {
		return nil
	}
	out := make([]SessionRecord, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}
