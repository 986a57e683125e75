// Package cached decorates the book repository with the catalog cache.
// Only List goes through the cache; GetByID always reaches the store so
// availability checks never act on a stale flag, and every write drops
// the cache.
package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"lending-service/internal/adapter/cache"
	library "lending-service/internal/domain/library"
)

// BookRepository is the inner repository being decorated.
type BookRepository interface {
	List(ctx context.Context, category string) ([]library.Book, error)
	GetByID(ctx context.Context, id int64) (*library.Book, error)
	Create(ctx context.Context, b *library.Book) (*library.Book, error)
	Update(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error)
	SetAvailable(ctx context.Context, id int64, available bool) (*library.Book, error)
	Delete(ctx context.Context, id int64) error
}

// CachedBookRepository wraps a store-backed book repository with the
// Redis catalog cache.
type CachedBookRepository struct {
	inner BookRepository
	cache cache.BookCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedBookRepository creates the decorator. A nil cache disables
// caching entirely.
func NewCachedBookRepository(inner BookRepository, c cache.BookCache, log *zap.Logger) *CachedBookRepository {
	return &CachedBookRepository{inner: inner, cache: c, log: log}
}

// List serves the catalog cache-aside, with single-flight so one store
// fetch refills a cold key no matter how many requests race on it.
func (r *CachedBookRepository) List(ctx context.Context, category string) ([]library.Book, error) {
	if r.cache == nil {
		return r.inner.List(ctx, category)
	}

	if books, err := r.cache.GetList(ctx, category); err == nil && books != nil {
		return books, nil
	}

	result, err, _ := r.group.Do("list:"+category, func() (any, error) {
		if books, err := r.cache.GetList(ctx, category); err == nil && books != nil {
			return books, nil
		}

		books, err := r.inner.List(ctx, category)
		if err != nil {
			return nil, err
		}

		if err := r.cache.SetList(ctx, category, books); err != nil {
			r.log.Warn("failed to cache catalog list", zap.String("category", category), zap.Error(err))
		}
		return books, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]library.Book), nil
}

// GetByID bypasses the cache: single-book reads feed lending decisions
// and must see the store's current state.
func (r *CachedBookRepository) GetByID(ctx context.Context, id int64) (*library.Book, error) {
	return r.inner.GetByID(ctx, id)
}

// Create writes through and invalidates.
func (r *CachedBookRepository) Create(ctx context.Context, b *library.Book) (*library.Book, error) {
	created, err := r.inner.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return created, nil
}

// Update writes through and invalidates.
func (r *CachedBookRepository) Update(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error) {
	updated, err := r.inner.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return updated, nil
}

// SetAvailable writes through and invalidates, so borrow/return flips
// show up in the browse list immediately.
func (r *CachedBookRepository) SetAvailable(ctx context.Context, id int64, available bool) (*library.Book, error) {
	updated, err := r.inner.SetAvailable(ctx, id, available)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return updated, nil
}

// Delete writes through and invalidates.
func (r *CachedBookRepository) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBookRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.log.Warn("failed to invalidate catalog cache after write", zap.Error(err))
	}
}
