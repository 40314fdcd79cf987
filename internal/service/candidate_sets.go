package service

// normalizeIDs dedupes a candidate id list preserving first-seen order and
// maps nil input to an empty, non-nil slice. An empty set is a meaningful
// value for the pool store (it clears a selection), so the distinction
// between nil and empty must never leak downstream.
func normalizeIDs(ids []uint) []uint {
	result := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// unionIDs appends the ids missing from base, preserving base order. The
// union never removes existing members, which keeps carry-forward monotonic.
func unionIDs(base, extra []uint) []uint {
	result := make([]uint, 0, len(base)+len(extra))
	seen := make(map[uint]struct{}, len(base)+len(extra))
	for _, id := range base {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	for _, id := range extra {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// differenceIDs returns the members of a that are absent from b.
func differenceIDs(a, b []uint) []uint {
	exclude := make(map[uint]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}

	result := make([]uint, 0, len(a))
	for _, id := range a {
		if _, ok := exclude[id]; !ok {
			result = append(result, id)
		}
	}
	return result
}

// missingIDs returns the members of ids that are not covered by allowed.
func missingIDs(ids, allowed []uint) []uint {
	return differenceIDs(ids, allowed)
}
