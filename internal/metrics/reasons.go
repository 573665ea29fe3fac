package metrics

import "sort"

// ReasonBucket is an aggregated failure-reason count for one phase.
type ReasonBucket struct {
	Reason string
	Count  int
}

// FlattenReasonBuckets converts a reason->count map into a sorted slice.
// Rows are sorted by descending count, then by reason for stability.
func FlattenReasonBuckets(reasons map[string]int) []ReasonBucket {
	if len(reasons) == 0 {
		return nil
	}
	rows := make([]ReasonBucket, 0, len(reasons))
	for reason, count := range reasons {
		rows = append(rows, ReasonBucket{Reason: reason, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Reason < rows[j].Reason
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
