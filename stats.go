package h5diff

// Stats holds statistical metadata about a diff
type Stats struct {
	Levels   int `json:"levels"`   // count of group levels examined, including the root
	Groups   int `json:"groups"`   // groups present on both sides, excluding the root
	Datasets int `json:"datasets"` // datasets present on both sides
	Elements int `json:"elements"` // dataset elements compared value by value

	// Records counts reported differences by kind
	Records map[DiffKind]int `json:"records,omitempty"`
}

// Differences returns the total number of records reported
func (s Stats) Differences() int {
	n := 0
	for _, c := range s.Records {
		n += c
	}
	return n
}

func (s *Stats) count(k DiffKind) {
	if s.Records == nil {
		s.Records = map[DiffKind]int{}
	}
	s.Records[k]++
}
