package activity

import (
	"context"
	"fmt"
	"iter"

	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Timeline is a user's merged borrow/lend history, newest first.
type Timeline struct {
	Entries []Entry `json:"entries"`
}

// Service exposes the merged activity timeline.
type Service interface {
	Timeline(ctx context.Context, userID uuid.UUID, limit int) (*Timeline, error)
}

type service struct {
	repo Repository
}

// ServiceParams bundles the dependencies required to build an activity service.
type ServiceParams struct {
	Repo Repository
}

// NewService constructs an activity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("activity repository is required")
	}
	return &service{repo: params.Repo}, nil
}

// Timeline merges the borrowed and lent histories, newest start date first.
// On equal start dates borrowed entries come before lent ones.
func (s *service) Timeline(ctx context.Context, userID uuid.UUID, limit int) (*Timeline, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	limit = pagination.NormalizeLimit(limit)

	borrowed, err := s.repo.ListBorrowed(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list borrowed activity")
	}
	lent, err := s.repo.ListLent(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lent activity")
	}

	entries := make([]Entry, 0, limit)
	for entry := range Merge(borrowed, lent) {
		entries = append(entries, entry)
		if len(entries) == limit {
			break
		}
	}
	return &Timeline{Entries: entries}, nil
}

// Merge lazily interleaves two start-date-descending entry lists into one
// descending sequence. Borrowed entries win ties so a user who borrowed and
// lent on the same day sees the borrow first.
func Merge(borrowed, lent []Entry) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		i, j := 0, 0
		for i < len(borrowed) && j < len(lent) {
			if !lent[j].StartDate.After(borrowed[i].StartDate) {
				if !yield(borrowed[i]) {
					return
				}
				i++
			} else {
				if !yield(lent[j]) {
					return
				}
				j++
			}
		}
		for ; i < len(borrowed); i++ {
			if !yield(borrowed[i]) {
				return
			}
		}
		for ; j < len(lent); j++ {
			if !yield(lent[j]) {
				return
			}
		}
	}
}
