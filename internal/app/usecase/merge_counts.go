package usecase

import "github.com/hanifn/discord-activity-bot/internal/domain"

// MergeCounts sums per-source count maps into a grand total. The sum is
// associative and commutative, so sequential and concurrent scans produce
// identical totals regardless of merge order.
func MergeCounts(parts ...domain.CountMap) domain.CountMap {
	total := make(domain.CountMap)
	for _, part := range parts {
		for id, n := range part {
			total[id] += n
		}
	}
	return total
}

// ReindexCounts restricts and extends totals to exactly ids, so identities
// with zero activity are explicitly present in the final report.
func ReindexCounts(totals domain.CountMap, ids []domain.Identity) domain.CountMap {
	out := make(domain.CountMap, len(ids))
	for _, id := range ids {
		out[id] = totals[id]
	}
	return out
}
