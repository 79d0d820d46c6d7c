package journal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hotline-router/internal/events"

	"github.com/google/uuid"
)

// Repository is the persistence contract for journal entries.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, from, to time.Time) ([]Entry, error)
}

// Service validates and appends journal entries.
// Callers treat journaling as best-effort; routing never waits on it.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEntry = errors.New("journal: invalid entry")

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return errors.New("journal: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEntry
	}
	if e.Type != events.TypeRepAvailability && e.CallID == "" {
		return ErrInvalidEntry
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]Entry, error) {
	if s.repo == nil {
		return nil, errors.New("journal: repository not configured")
	}
	return s.repo.List(ctx, from, to)
}

// Record appends every event from in until ctx is done or in is closed.
// Append failures are logged and skipped.
func (s *Service) Record(ctx context.Context, in <-chan events.Event, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-in:
			if !ok {
				return
			}
			if err := s.Append(ctx, FromEvent(e)); err != nil {
				log.Warn("journal append failed", "err", err, "event_id", e.ID, "type", e.Type)
			}
		}
	}
}
