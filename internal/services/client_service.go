// Package services – ClientRequestService
//
// This file implements the server side of the relay: it stores records posted
// by form hosts and lists them back. Relays carry an Idempotency-Key, so a
// retried delivery of the same record returns the row stored the first time
// instead of a second copy.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/repo"
)

// IdempotencyScope is the scope under which relay keys are recorded.
const IdempotencyScope = "clients"

// ClientRequestService implements the relay endpoint use-cases.
type ClientRequestService struct {
	// DB is the database handle of the relay store.
	DB *gorm.DB
	// IdempotencyTTL is how long a relay key is remembered; <= 0 means 24h.
	IdempotencyTTL time.Duration
	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// Ingest stores rec. When idemKey was already used within the TTL, or rec's id
// is already stored and a key was supplied, the existing row is returned with
// replay=true. Without a key a repeated record id yields ErrDuplicateRecord.
func (s *ClientRequestService) Ingest(ctx context.Context, rec domain.SubmissionRecord, idemKey string) (row *domain.ClientRequest, replay bool, err error) {
	tr := otel.Tracer("services/ClientRequestService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(
			attribute.Int64("record.id", rec.ID),
			attribute.Bool("idempotency.key", idemKey != ""),
		),
	)
	defer span.End()

	now := s.now().UTC()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			prev, err := repo.GetIdempotency(ctx, tx, IdempotencyScope, idemKey, now)
			switch {
			case err == nil:
				row, err = repo.GetClientRequest(ctx, tx, prev.ResourceID)
				if err != nil {
					return err
				}
				replay = true
				return nil
			case !errors.Is(err, repo.ErrNotFound):
				return err
			}
		}

		row, err = repo.CreateClientRequest(ctx, tx, rec, now)
		if errors.Is(err, repo.ErrDuplicate) {
			if idemKey == "" {
				return ErrDuplicateRecord
			}
			row, err = repo.GetClientRequestByRecordID(ctx, tx, rec.ID)
			if err != nil {
				return err
			}
			replay = true
		} else if err != nil {
			return err
		}

		if idemKey == "" {
			return nil
		}
		_, err = repo.CreateIdempotency(ctx, tx, IdempotencyScope, idemKey, row.ID, http.StatusCreated, s.ttl())
		if errors.Is(err, repo.ErrDuplicate) {
			// an expired entry for the same key is still in the table
			return nil
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("replay", replay))
	return row, replay, nil
}

// Get returns the stored request for a submitter-side record id.
func (s *ClientRequestService) Get(ctx context.Context, recordID int64) (*domain.ClientRequest, error) {
	row, err := repo.GetClientRequestByRecordID(ctx, s.DB, recordID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrClientRequestNotFound
	}
	return row, err
}

// ListPage returns stored requests newest first together with the total.
func (s *ClientRequestService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ClientRequest, int64, error) {
	tr := otel.Tracer("services/ClientRequestService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountClientRequests(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ClientRequest{}, 0, nil
	}
	items, err := repo.ListClientRequestsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Stats returns the row count and latest receive time, for cache validators.
func (s *ClientRequestService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.ClientRequestsStats(ctx, s.DB)
}

func (s *ClientRequestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ClientRequestService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
