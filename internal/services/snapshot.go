package services

import (
	"context"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
	"livepoll/internal/repository"
	"livepoll/internal/tally"
)

// buildSnapshot assembles the read-only view of a poll with live tallies.
func buildSnapshot(p poll.Poll, rows []response.Response) poll.Snapshot {
	counts := tally.CountByOption(rows)

	snap := poll.Snapshot{
		ID:        p.ID,
		Title:     p.Title,
		CreatedBy: p.CreatedBy,
		IsLive:    p.IsLive,
		CreatedAt: p.CreatedAt,
		Questions: make([]poll.QuestionSnapshot, 0, len(p.Questions)),
	}
	if p.College.Valid {
		snap.College = p.College.String
	}
	if p.TargetGender.Valid {
		snap.TargetGender = p.TargetGender.String
	}

	for _, q := range p.Questions {
		qs := poll.QuestionSnapshot{
			ID:      q.ID,
			Text:    q.Text,
			Options: make([]poll.OptionSnapshot, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			qs.Options = append(qs.Options, poll.OptionSnapshot{
				ID:    opt.ID,
				Text:  opt.Text,
				Count: counts[opt.ID],
			})
		}
		snap.Questions = append(snap.Questions, qs)
	}
	return snap
}

// loadSnapshot reads the poll tree and its responses and assembles a fresh
// snapshot. Snapshots are never cached across requests.
func loadSnapshot(ctx context.Context, polls repository.PollRepository, responses repository.ResponseRepository, pollID uuid.UUID) (poll.Snapshot, error) {
	p, err := polls.GetByID(ctx, pollID)
	if err != nil {
		return poll.Snapshot{}, err
	}
	rows, err := responses.ListByPoll(ctx, pollID)
	if err != nil {
		return poll.Snapshot{}, err
	}
	return buildSnapshot(p, rows), nil
}
