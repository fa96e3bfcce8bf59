// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides ClientCache, the local durable cache of
// submission records kept by the form host.
//
// Storage contract:
//   - One key/value slot (default key "pakchina_clients") holds the JSON list
//     of every record ever appended, in insertion order.
//   - The slot is read once, when the cache is opened.
//   - Every Append rewrites the whole slot. The cost is O(n) in the number of
//     stored records, and nothing is ever evicted, so the cache grows without
//     bound. This is acceptable for low-volume local use only.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// DefaultCacheKey is the slot key the cache uses when none is configured.
const DefaultCacheKey = "pakchina_clients"

// ErrCorruptCache is returned when the stored slot cannot be decoded.
var ErrCorruptCache = errors.New("cache slot is not a valid record list")

// ClientCache is an append-only, ordered store of submission records mirrored
// to a single durable slot. It is safe for concurrent use.
type ClientCache struct {
	db  *gorm.DB
	key string

	mu      sync.Mutex
	records []domain.SubmissionRecord
}

// OpenClientCache loads the slot named key (DefaultCacheKey when empty). A
// missing slot yields an empty cache; an undecodable slot yields
// ErrCorruptCache.
func OpenClientCache(ctx context.Context, db *gorm.DB, key string) (*ClientCache, error) {
	if key == "" {
		key = DefaultCacheKey
	}
	c := &ClientCache{db: db, key: key}

	var slot domain.CacheSlot
	err := db.WithContext(ctx).Where("key = ?", key).First(&slot).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c, nil
	case err != nil:
		return nil, err
	}
	if slot.Value == "" || slot.Value == "null" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(slot.Value), &c.records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return c, nil
}

// Key returns the slot key this cache writes to.
func (c *ClientCache) Key() string { return c.key }

// Append adds rec to the end of the list and rewrites the durable slot with
// the full serialized list. If the write fails the in-memory list is left as
// it was before the call.
func (c *ClientCache) Append(ctx context.Context, rec domain.SubmissionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append(c.records[:len(c.records):len(c.records)], rec.Clone())
	payload, err := json.Marshal(next)
	if err != nil {
		return err
	}

	slot := domain.CacheSlot{
		Key:       c.key,
		Value:     string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return err
	}

	c.records = next
	return nil
}

// LoadAll returns a copy of every cached record in insertion order.
func (c *ClientCache) LoadAll() []domain.SubmissionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.SubmissionRecord, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of cached records.
func (c *ClientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
