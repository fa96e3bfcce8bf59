package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.MigrateCache(db); err != nil {
		t.Fatalf("migrate cache: %v", err)
	}
	return db
}

func newTestCache(t *testing.T) *repo.ClientCache {
	t.Helper()
	c, err := repo.OpenClientCache(context.Background(), newTestDB(t), repo.DefaultCacheKey)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return c
}

// fakeShell records every call the controller makes.
type fakeShell struct {
	mu sync.Mutex

	label   string
	enabled bool

	alerts        []string
	fileCleared   int
	previews      []string
	previewHidden int
	banners       []banner
	resets        int
	controlCalls  []control
}

type banner struct {
	kind BannerKind
	msg  string
	ttl  time.Duration
}

type control struct {
	label   string
	enabled bool
}

func newFakeShell() *fakeShell { return &fakeShell{label: "Submit Request", enabled: true} }

func (s *fakeShell) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, msg)
}

func (s *fakeShell) ClearFileInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileCleared++
}

func (s *fakeShell) ShowPreview(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews = append(s.previews, u)
}

func (s *fakeShell) HidePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewHidden++
}

func (s *fakeShell) SubmitLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *fakeShell) SetSubmitControl(label string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label, s.enabled = label, enabled
	s.controlCalls = append(s.controlCalls, control{label, enabled})
}

func (s *fakeShell) ShowBanner(kind BannerKind, msg string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banners = append(s.banners, banner{kind, msg, ttl})
}

func (s *fakeShell) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

func (s *fakeShell) lastBanner() banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.banners) == 0 {
		return banner{}
	}
	return s.banners[len(s.banners)-1]
}

// seqIDs hands out 1, 2, 3, ...
type seqIDs struct {
	mu   sync.Mutex
	next int64
}

func (g *seqIDs) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

type recordingNotifier struct {
	records []domain.SubmissionRecord
	uri     string
	err     error
}

func (n *recordingNotifier) Dispatch(_ context.Context, rec domain.SubmissionRecord) (string, error) {
	n.records = append(n.records, rec)
	return n.uri, n.err
}

type relayFunc func(ctx context.Context, rec domain.SubmissionRecord) error

func (f relayFunc) Send(ctx context.Context, rec domain.SubmissionRecord) error { return f(ctx, rec) }

type uploaderFunc func(ctx context.Context, name string, img domain.ImageFile) error

func (f uploaderFunc) Upload(ctx context.Context, name string, img domain.ImageFile) error {
	return f(ctx, name, img)
}

type failingStore struct{ err error }

func (s failingStore) Append(context.Context, domain.SubmissionRecord) error { return s.err }
func (failingStore) LoadAll() []domain.SubmissionRecord { return nil }

type panickingStore struct{}

func (panickingStore) Append(context.Context, domain.SubmissionRecord) error { panic("disk on fire") }
func (panickingStore) LoadAll() []domain.SubmissionRecord { return nil }

var errNetwork = errors.New("connection refused")

func imageFile(name, contentType string, content []byte) *domain.ImageFile {
	return &domain.ImageFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func fixedNow() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

func newController(shell Shell, store RecordStore, n Notifier) *SubmissionController {
	return &SubmissionController{
		Shell:    shell,
		Store:    store,
		Notifier: n,
		IDs:      &seqIDs{},
		Now:      fixedNow,
	}
}
