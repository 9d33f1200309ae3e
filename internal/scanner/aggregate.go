package scanner

// AggregatePayloads merges the per-variant decode results of one image into
// a deduplicated sequence of payloads. The input slices must be in variant
// generation order; the output preserves first-seen order and each payload
// keeps the earliest variant that produced its text. Equality is exact
// string equality, no fuzzy merging.
func AggregatePayloads(perVariant [][]Payload) []Payload {
	var merged []Payload
	seen := make(map[string]struct{})

	for _, payloads := range perVariant {
		for _, payload := range payloads {
			if _, ok := seen[payload.Text]; ok {
				continue
			}
			seen[payload.Text] = struct{}{}
			merged = append(merged, payload)
		}
	}
	return merged
}
