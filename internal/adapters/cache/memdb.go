// Package cache provides core.Cache backends.
package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/core"
)

const (
	tblEntries = "entries"
	idxKey     = "id"
)

type entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblEntries: {
			Name: tblEntries,
			Indexes: map[string]*memdb.IndexSchema{
				idxKey: {
					Name:    idxKey,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// MemDB is a process-local cache backed by go-memdb.
type MemDB struct {
	db  *memdb.MemDB
	now func() time.Time
}

var _ core.Cache = (*MemDB)(nil)

func NewMemDB() (*MemDB, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("memdb: create: %w", err)
	}
	return &MemDB{db: db, now: time.Now}, nil
}

func (m *MemDB) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tblEntries, idxKey, key)
	if err != nil {
		return nil, fmt.Errorf("memdb: find %s: %w", key, err)
	}
	if raw == nil {
		return nil, core.ErrMiss
	}
	e := raw.(*entry)
	if e.expired(m.now()) {
		txn.Abort()
		if err := m.evict(key); err != nil {
			return nil, err
		}
		return nil, core.ErrMiss
	}
	return slices.Clone(e.Value), nil
}

// evict deletes key if it is still expired. A concurrent Set may have
// replaced it since it was read.
func (m *MemDB) evict(key string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblEntries, idxKey, key)
	if err != nil {
		return fmt.Errorf("memdb: find %s: %w", key, err)
	}
	if raw == nil || !raw.(*entry).expired(m.now()) {
		return nil
	}
	if err := txn.Delete(tblEntries, raw); err != nil {
		return fmt.Errorf("memdb: delete %s: %w", key, err)
	}
	txn.Commit()
	return nil
}

// Sweep deletes every expired entry and reports how many it removed.
func (m *MemDB) Sweep() (int, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()
	it, err := txn.Get(tblEntries, idxKey)
	if err != nil {
		return 0, fmt.Errorf("memdb: scan: %w", err)
	}
	now := m.now()
	var expired []*entry
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if e := raw.(*entry); e.expired(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		if err := txn.Delete(tblEntries, e); err != nil {
			return 0, fmt.Errorf("memdb: delete %s: %w", e.Key, err)
		}
	}
	txn.Commit()
	return len(expired), nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemDB) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep()
			if err != nil {
				log.Error().Err(err).Str("module", "adapters.cache").Msg("memdb sweep")
				continue
			}
			if n > 0 {
				log.Debug().Str("module", "adapters.cache").Int("removed", n).Msg("memdb sweep")
			}
		}
	}
}

func (m *MemDB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := &entry{Key: key, Value: slices.Clone(value)}
	if ttl > 0 {
		e.ExpiresAt = m.now().Add(ttl)
	}
	txn := m.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tblEntries, e); err != nil {
		return fmt.Errorf("memdb: insert %s: %w", key, err)
	}
	txn.Commit()
	return nil
}

func (m *MemDB) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()
	var removed int64
	for _, key := range keys {
		raw, err := txn.First(tblEntries, idxKey, key)
		if err != nil {
			return 0, fmt.Errorf("memdb: find %s: %w", key, err)
		}
		if raw == nil {
			continue
		}
		if err := txn.Delete(tblEntries, raw); err != nil {
			return 0, fmt.Errorf("memdb: delete %s: %w", key, err)
		}
		if !raw.(*entry).expired(m.now()) {
			removed++
		}
	}
	txn.Commit()
	return removed, nil
}

func (m *MemDB) Close() error { return nil }
