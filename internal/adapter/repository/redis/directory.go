package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// CachedEmployeeDirectory is a read-through cache in front of another
// directory. Lookup misses for unknown employees are not cached.
type CachedEmployeeDirectory struct {
	next   usecase.EmployeeDirectory
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedEmployeeDirectory wraps next with cache.
func NewCachedEmployeeDirectory(next usecase.EmployeeDirectory, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedEmployeeDirectory {
	return &CachedEmployeeDirectory{next: next, cache: cache, ttl: ttl, logger: logger}
}

// LookupEmployee implements usecase.EmployeeDirectory.
func (d *CachedEmployeeDirectory) LookupEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	key := "employee:" + id

	var emp domain.Employee
	if d.load(ctx, key, &emp) {
		return &emp, nil
	}

	found, err := d.next.LookupEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	d.store(ctx, key, found)
	return found, nil
}

// ListByLevel implements usecase.EmployeeDirectory.
func (d *CachedEmployeeDirectory) ListByLevel(ctx context.Context, level int) ([]*domain.Employee, error) {
	key := "employees:level:" + strconv.Itoa(level)

	var employees []*domain.Employee
	if d.load(ctx, key, &employees) {
		return employees, nil
	}

	employees, err := d.next.ListByLevel(ctx, level)
	if err != nil {
		return nil, err
	}

	d.store(ctx, key, employees)
	return employees, nil
}

// load reports whether key was found and decoded. Cache failures fall
// through to the wrapped directory.
func (d *CachedEmployeeDirectory) load(ctx context.Context, key string, dst any) bool {
	raw, err := d.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			d.logger.Warn().Err(err).Str("key", key).Msg("directory cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable directory cache entry")
		return false
	}
	return true
}

func (d *CachedEmployeeDirectory) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, key, raw, d.ttl); err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("directory cache write failed")
	}
}
