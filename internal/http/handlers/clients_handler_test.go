package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/http/middleware"
	"github.com/tbourn/pakchina-leads/internal/repo"
	"github.com/tbourn/pakchina-leads/internal/services"
)

// ---------- test DB + router ----------

func newClientsDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:clients_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newClientsRouter(svc ClientRequestService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{Scope: services.IdempotencyScope}, nil))

	h := New(svc)
	r.POST("/clients", h.CreateClient)
	r.GET("/clients", h.ListClients)
	r.GET("/clients/:id", h.GetClient)
	return r
}

func doJSON(r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func recordJSON(id int64, name string) string {
	return fmt.Sprintf(`{"id":%d,"timestamp":"2024-05-01T09:30:00.123Z","name":%q,"email":"ana@x.com","phone":"555","whatsapp":null,"productDetails":"Need 100 units","imageFile":null}`, id, name)
}

// ---------- stub service for failure paths ----------

type stubClients struct {
	ingestErr error
	getErr    error
	listErr   error
	statsErr  error
}

func (s stubClients) Ingest(context.Context, domain.SubmissionRecord, string) (*domain.ClientRequest, bool, error) {
	return nil, false, s.ingestErr
}

func (s stubClients) Get(context.Context, int64) (*domain.ClientRequest, error) {
	return nil, s.getErr
}

func (s stubClients) ListPage(context.Context, int, int) ([]domain.ClientRequest, int64, error) {
	return nil, 0, s.listErr
}

func (s stubClients) Stats(context.Context) (int64, *time.Time, error) {
	return 0, nil, s.statsErr
}

// ---------- tests ----------

func TestCreateClient_StoresAndReturns201(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})

	w := doJSON(r, http.MethodPost, "/clients", recordJSON(1714555800123, "Ana Gomez"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got["name"] != "Ana Gomez" || int64(got["id"].(float64)) != 1714555800123 {
		t.Fatalf("unexpected body: %v", got)
	}
	if _, leaked := got["ID"]; leaked {
		t.Fatalf("server id should not be serialized: %v", got)
	}
	if got["receivedAt"] == nil {
		t.Fatalf("receivedAt missing: %v", got)
	}
}

func TestCreateClient_ReplayWithKeyReturns200(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "1714555800123"}

	first := doJSON(r, http.MethodPost, "/clients", recordJSON(1714555800123, "Ana Gomez"), hdr)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status=%d body=%s", first.Code, first.Body.String())
	}
	second := doJSON(r, http.MethodPost, "/clients", recordJSON(1714555800123, "Ana Gomez"), hdr)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status=%d body=%s", second.Code, second.Body.String())
	}
	var a, b domain.ClientRequest
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("json first: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("json replay: %v", err)
	}
	if a.RecordID != b.RecordID || !a.ReceivedAt.Equal(b.ReceivedAt) {
		t.Fatalf("replay returned a different row:\n%+v\n%+v", a, b)
	}
}

func TestCreateClient_DuplicateWithoutKeyIs409(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})

	if w := doJSON(r, http.MethodPost, "/clients", recordJSON(7, "a"), nil); w.Code != http.StatusCreated {
		t.Fatalf("first status=%d", w.Code)
	}
	w := doJSON(r, http.MethodPost, "/clients", recordJSON(7, "a"), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeDuplicateRecord || er.RequestID == "" {
		t.Fatalf("unexpected error body: %+v", er)
	}
}

func TestCreateClient_BadInput(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing name", `{"id":1,"timestamp":"2024-05-01T09:30:00Z","email":"e","phone":"p","productDetails":"d"}`},
		{"missing id", `{"timestamp":"2024-05-01T09:30:00Z","name":"n","email":"e","phone":"p","productDetails":"d"}`},
		{"bad timestamp", `{"id":1,"timestamp":"yesterday","name":"n","email":"e","phone":"p","productDetails":"d"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/clients", tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			var er ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &er)
			if er.Code != ErrCodeInvalidRecord {
				t.Fatalf("code=%q", er.Code)
			}
		})
	}
}

func TestCreateClient_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 32)
		c.Next()
	})
	h := New(&services.ClientRequestService{DB: newClientsDB(t)})
	r.POST("/clients", h.CreateClient)

	w := doJSON(r, http.MethodPost, "/clients", recordJSON(1, strings.Repeat("x", 200)), nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateClient_StoreFailureIs500(t *testing.T) {
	r := newClientsRouter(stubClients{ingestErr: errors.New("disk full")})

	w := doJSON(r, http.MethodPost, "/clients", recordJSON(1, "a"), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Code != ErrCodeStoreFailed {
		t.Fatalf("code=%q", er.Code)
	}
}

func TestListClients_PaginatedNewestFirst_WithETag(t *testing.T) {
	db := newClientsDB(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc := &services.ClientRequestService{DB: db, Now: func() time.Time { return now }}
	r := newClientsRouter(svc)

	for i, name := range []string{"a", "b", "c"} {
		now = now.Add(time.Minute)
		if w := doJSON(r, http.MethodPost, "/clients", recordJSON(int64(i+1), name), nil); w.Code != http.StatusCreated {
			t.Fatalf("seed %s: %d", name, w.Code)
		}
	}

	w := doJSON(r, http.MethodGet, "/clients?page=1&page_size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"clients:3:`) {
		t.Fatalf("unexpected ETag %q", etag)
	}
	var resp ListClientsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Clients) != 2 || resp.Clients[0].Name != "c" || resp.Clients[1].Name != "b" {
		t.Fatalf("unexpected page: %+v", resp.Clients)
	}
	if resp.Pagination != (Pagination{Page: 1, PageSize: 2, Total: 3, TotalPages: 2, HasNext: true}) {
		t.Fatalf("pagination=%+v", resp.Pagination)
	}

	// Same validator → 304
	w = doJSON(r, http.MethodGet, "/clients?page=1&page_size=2", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	// A new record changes the validator
	now = now.Add(time.Minute)
	doJSON(r, http.MethodPost, "/clients", recordJSON(4, "d"), nil)
	w = doJSON(r, http.MethodGet, "/clients?page=1&page_size=2", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after a new record, got %d", w.Code)
	}
}

func TestListClients_EmptyAndClamped(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})

	w := doJSON(r, http.MethodGet, "/clients?page=-3&page_size=1000", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ListClientsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Clients == nil || len(resp.Clients) != 0 {
		t.Fatalf("expected empty list, got %v", resp.Clients)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 100 || resp.Pagination.HasNext {
		t.Fatalf("pagination=%+v", resp.Pagination)
	}
}

func TestListClients_ListFailureIs500(t *testing.T) {
	r := newClientsRouter(stubClients{listErr: errors.New("boom"), statsErr: errors.New("boom")})

	w := doJSON(r, http.MethodGet, "/clients", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("no ETag expected when stats fail")
	}
}

func TestGetClient(t *testing.T) {
	r := newClientsRouter(&services.ClientRequestService{DB: newClientsDB(t)})
	doJSON(r, http.MethodPost, "/clients", recordJSON(42, "Ana Gomez"), nil)

	w := doJSON(r, http.MethodGet, "/clients/42", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var row domain.ClientRequest
	if err := json.Unmarshal(w.Body.Bytes(), &row); err != nil {
		t.Fatalf("json: %v", err)
	}
	if row.RecordID != 42 || row.Name != "Ana Gomez" {
		t.Fatalf("unexpected row: %+v", row)
	}

	if w := doJSON(r, http.MethodGet, "/clients/43", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/clients/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric: status=%d", w.Code)
	}
}

func TestGetClient_StoreFailureIs500(t *testing.T) {
	r := newClientsRouter(stubClients{getErr: errors.New("boom")})
	if w := doJSON(r, http.MethodGet, "/clients/1", "", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}
