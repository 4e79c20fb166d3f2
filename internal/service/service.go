package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wesky93/views/internal/database"
	"github.com/wesky93/views/internal/identity"
	"github.com/wesky93/views/internal/models"
)

// CounterRepository defines the interface for the durable counter store at
// the business logic layer.
type CounterRepository interface {
	// GetOrCreate fetches the record for the counter's key, creating one
	// with total 0 if it doesn't exist. Safe under concurrent first-access
	// for the same key.
	GetOrCreate(ctx context.Context, counter *models.Counter) (*models.Counter, error)

	// Increment atomically adds 1 to the record's total and stamps
	// last_updated, returning the post-increment total.
	Increment(ctx context.Context, key string) (int64, error)

	// Get retrieves the record for the key without modifying it.
	Get(ctx context.Context, key string) (*models.Counter, error)
}

// ViewService counts views: it resolves the storage key for a resource,
// lazily creates its counter record, and atomically increments it.
type ViewService struct {
	repo CounterRepository
}

func NewViewService(repo CounterRepository) *ViewService {
	return &ViewService{
		repo: repo,
	}
}

// CountView records one view for the (namespace, identifier) resource and
// returns the counter with its post-increment total. A transiently failing
// store call is retried once; a second failure propagates to the caller so
// no badge is ever returned for a total that wasn't durably committed.
func (s *ViewService) CountView(ctx context.Context, namespace, identifier string, attrs map[string]string) (*models.Counter, error) {
	const op = "service.ViewService.CountView"

	seed := &models.Counter{
		Key:        identity.Resolve(namespace, identifier),
		Namespace:  namespace,
		Identifier: identifier,
		Attrs:      attrs,
	}

	counter, err := s.getOrCreate(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get or create counter: %w", op, err)
	}

	total, err := s.increment(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to increment counter: %w", op, err)
	}

	counter.Total = total

	return counter, nil
}

// getOrCreate retries a transient store failure once.
func (s *ViewService) getOrCreate(ctx context.Context, seed *models.Counter) (*models.Counter, error) {
	counter, err := s.repo.GetOrCreate(ctx, seed)
	if err != nil {
		counter, err = s.repo.GetOrCreate(ctx, seed)
	}

	return counter, err
}

// increment retries once on a transient failure. A missing record means the
// store lost the row between get-or-create and increment; re-create it and
// try once more.
func (s *ViewService) increment(ctx context.Context, seed *models.Counter) (int64, error) {
	total, err := s.repo.Increment(ctx, seed.Key)
	if err == nil {
		return total, nil
	}

	if errors.Is(err, database.ErrCounterNotFound) {
		if _, cerr := s.repo.GetOrCreate(ctx, seed); cerr != nil {
			return 0, cerr
		}
	}

	return s.repo.Increment(ctx, seed.Key)
}
