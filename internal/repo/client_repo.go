// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ClientRequest model: records received by the relay endpoint.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: persistence and query composition only.
//
// Error semantics:
//   - A missing row is reported as ErrNotFound (gorm.ErrRecordNotFound).
//   - Inserting a record id that is already stored returns ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateClientRequest stores rec as received at receivedAt. The row gets a
// fresh UUID primary key; the record id must not already be stored.
func CreateClientRequest(ctx context.Context, db *gorm.DB, rec domain.SubmissionRecord, receivedAt time.Time) (*domain.ClientRequest, error) {
	rec = rec.Clone()
	row := &domain.ClientRequest{
		ID:             uuid.NewString(),
		RecordID:       rec.ID,
		CreatedAt:      rec.CreatedAt.UTC(),
		Name:           rec.Name,
		Email:          rec.Email,
		Phone:          rec.Phone,
		WhatsApp:       rec.WhatsApp,
		ProductDetails: rec.ProductDetails,
		ImageFile:      rec.AttachedImageName,
		ReceivedAt:     receivedAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return row, nil
}

// GetClientRequest fetches a stored request by its server-side id.
func GetClientRequest(ctx context.Context, db *gorm.DB, id string) (*domain.ClientRequest, error) {
	var row domain.ClientRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetClientRequestByRecordID fetches a stored request by the submitter-side
// record id.
func GetClientRequestByRecordID(ctx context.Context, db *gorm.DB, recordID int64) (*domain.ClientRequest, error) {
	var row domain.ClientRequest
	if err := db.WithContext(ctx).Where("record_id = ?", recordID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CountClientRequests returns the total number of stored requests.
func CountClientRequests(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ClientRequest{}).Count(&total).Error
	return total, err
}

// ListClientRequestsPage returns a page of stored requests, newest first.
// The caller computes offset and limit.
func ListClientRequestsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ClientRequest, error) {
	var out []domain.ClientRequest
	err := db.WithContext(ctx).
		Order("received_at desc").
		Order("record_id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint failures across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
