// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// ClientRequestsStats returns the number of stored requests and the latest
// ReceivedAt among them. When the store is empty, count is 0 and
// maxReceivedAt is nil.
func ClientRequestsStats(ctx context.Context, db *gorm.DB) (count int64, maxReceivedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ClientRequest{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest received_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		ReceivedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.ClientRequest{}).
		Select("received_at").Order("received_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.ReceivedAt, nil
}
