package reporting

import (
	"context"
	"errors"
	"time"

	"hotline-router/internal/events"
	"hotline-router/internal/journal"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts journal access for reporting.
// journal.Service, journal.MemoryRepo and journal.PostgresRepo all satisfy it.
type Repository interface {
	List(ctx context.Context, from, to time.Time) ([]journal.Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, r TimeRange) (CallsSummary, error) {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.List(ctx, r.From, r.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{Range: r}
	var totalWait int
	for _, e := range rows {
		switch e.Type {
		case events.TypeCallQueued:
			out.QueuedCalls++
		case events.TypeCallConnected:
			if !e.FromQueue {
				out.ConnectedOnArrival++
				continue
			}
			out.ConnectedFromQueue++
			totalWait += e.WaitSeconds
			if e.WaitSeconds > out.LongestWaitSeconds {
				out.LongestWaitSeconds = e.WaitSeconds
			}
		case events.TypeCallEnded:
			out.EndedCalls++
			out.TotalTalkSeconds += e.TalkSeconds
		case events.TypeRepAvailability:
			// not a call
		}
	}

	out.TotalCalls = out.QueuedCalls + out.ConnectedOnArrival
	if out.EndedCalls > 0 {
		out.AverageTalkSeconds = out.TotalTalkSeconds / out.EndedCalls
	}
	if out.ConnectedFromQueue > 0 {
		out.AverageWaitSeconds = totalWait / out.ConnectedFromQueue
	}
	if out.TotalCalls > 0 {
		out.ImmediateAnswerRate = float64(out.ConnectedOnArrival) / float64(out.TotalCalls)
	}
	return out, nil
}
