package electrodes

import "sort"

// Set is an immutable mapping from electrode ID to label
type Set struct {
	labels map[int]string
}

// NewSet builds the ID to label mapping. When an ID repeats, the later record
// wins, mirroring the overwrite order used when stamping.
func NewSet(records []Record) *Set {
	s := &Set{labels: make(map[int]string, len(records))}
	for _, rec := range records {
		s.labels[rec.ID] = rec.Label
	}
	return s
}

// Label returns the label registered for id
func (s *Set) Label(id int) (string, bool) {
	label, ok := s.labels[id]
	return label, ok
}

// Len returns the number of distinct electrodes
func (s *Set) Len() int {
	return len(s.labels)
}

// IDs returns all electrode IDs in ascending order
func (s *Set) IDs() []int {
	ids := make([]int, 0, len(s.labels))
	for id := range s.labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
