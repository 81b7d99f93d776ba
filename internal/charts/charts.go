package charts

import "sort"

const (
	// DefaultKeep is how many named slices a pie chart shows before "Other".
	DefaultKeep = 6
	OtherLabel  = "Other"
)

// Slice is one segment of a pie or bar chart.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// FromCounts turns a map of label counts into slices ordered by count, largest
// first, with ties broken by label.
func FromCounts(counts map[string]int) []Slice {
	slices := make([]Slice, 0, len(counts))
	for label, value := range counts {
		slices = append(slices, Slice{Label: label, Value: value})
	}
	sortSlices(slices)
	return slices
}

// GroupTail keeps the keep largest slices and folds the rest into a single
// "Other" slice. An existing "Other" slice is merged into the folded one.
func GroupTail(slices []Slice, keep int) []Slice {
	sorted := make([]Slice, 0, len(slices))
	other := 0
	hasOther := false
	for _, s := range slices {
		if s.Label == OtherLabel {
			other += s.Value
			hasOther = true
			continue
		}
		sorted = append(sorted, s)
	}
	sortSlices(sorted)

	if keep < 0 {
		keep = 0
	}
	if len(sorted) > keep {
		for _, s := range sorted[keep:] {
			other += s.Value
		}
		sorted = sorted[:keep]
		hasOther = true
	}

	if hasOther && other > 0 {
		sorted = append(sorted, Slice{Label: OtherLabel, Value: other})
	}
	return sorted
}

func sortSlices(slices []Slice) {
	sort.SliceStable(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Label < slices[j].Label
	})
}
