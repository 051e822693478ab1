package database

import "sort"

// FilterByTag returns the notes carrying tag, keeping their order.
func FilterByTag(notes []Note, tag string) []Note {
	var out []Note
	for _, n := range notes {
		if n.HasTag(tag) {
			out = append(out, n)
		}
	}
	return out
}

// SortByQuality orders notes by quality score, highest first. Notes with
// equal scores keep their incoming order.
func SortByQuality(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].QualityScore > out[j].QualityScore
	})
	return out
}
