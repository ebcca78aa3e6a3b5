// Package tally computes per-option response counts. It is deterministic
// and side-effect-free: counts derive only from the rows it is given.
//
// Every matching row is counted, even if a user incorrectly holds more than
// one response for a question. The response service is the enforcement
// point for the one-response-per-(user, question) invariant; the aggregator
// deliberately does not dedup.
package tally

import (
	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
)

// CountByOption returns the number of responses referencing each option.
// Options with no responses are absent from the map; use Counts to get
// explicit zeroes.
func CountByOption(responses []response.Response) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(responses))
	for _, r := range responses {
		counts[r.OptionID]++
	}
	return counts
}

// Counts returns the count for each given option in original order,
// including zeroes.
func Counts(options []poll.Option, responses []response.Response) []int {
	byOption := CountByOption(responses)
	out := make([]int, len(options))
	for i, opt := range options {
		out[i] = byOption[opt.ID]
	}
	return out
}
