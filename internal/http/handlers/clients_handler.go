// Client request HTTP handlers.
//
// This file exposes the relay endpoint that form hosts post records to, and
// read access to what it has stored:
//   - POST /clients      (store a relayed record, idempotent by key)
//   - GET  /clients      (list, newest first, paginated, ETag support)
//   - GET  /clients/{id} (one record by its submitter-side id)
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/http/middleware"
	"github.com/tbourn/pakchina-leads/internal/services"
	"github.com/tbourn/pakchina-leads/internal/utils"
)

// ClientRequestService defines the relay store operations consumed by the
// handlers. Implementations must honor ctx for cancellation.
type ClientRequestService interface {
	// Ingest stores rec. replay is true when an earlier delivery of the same
	// record (or key) is returned instead of a new row.
	Ingest(ctx context.Context, rec domain.SubmissionRecord, idemKey string) (*domain.ClientRequest, bool, error)
	// Get returns one stored request by its submitter-side record id.
	Get(ctx context.Context, recordID int64) (*domain.ClientRequest, error)
	// ListPage returns a page of stored requests and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ClientRequest, int64, error)
	// Stats returns the row count and latest receive time.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// Handlers groups the HTTP endpoints of the relay server.
type Handlers struct {
	clients ClientRequestService
}

// New constructs a Handlers bound to the given service.
func New(clients ClientRequestService) *Handlers {
	return &Handlers{clients: clients}
}

// CreateClientRequest is the JSON payload a form host relays. It carries the
// submission record's wire fields.
type CreateClientRequest struct {
	ID             int64   `json:"id"             binding:"required"                example:"1714555800123"`
	Timestamp      string  `json:"timestamp"      binding:"required"                example:"2024-05-01T09:30:00.123Z"`
	Name           string  `json:"name"           binding:"required,max=255"        example:"Ana Gomez"`
	Email          string  `json:"email"          binding:"required,max=255"        example:"ana@x.com"`
	Phone          string  `json:"phone"          binding:"required,max=64"         example:"555"`
	WhatsApp       *string `json:"whatsapp"       binding:"omitempty,max=64"        example:"+92 300 1234567"`
	ProductDetails string  `json:"productDetails" binding:"required"                example:"Need 100 units"`
	ImageFile      *string `json:"imageFile"      binding:"omitempty,max=255"       example:"catalog.png"`
}

func (r CreateClientRequest) record() (domain.SubmissionRecord, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return domain.SubmissionRecord{}, err
	}
	return domain.SubmissionRecord{
		ID:                r.ID,
		CreatedAt:         ts,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		WhatsApp:          r.WhatsApp,
		ProductDetails:    r.ProductDetails,
		AttachedImageName: r.ImageFile,
	}, nil
}

// ListClientsResponse wraps a page of stored requests and pagination info.
type ListClientsResponse struct {
	Clients    []domain.ClientRequest `json:"clients"`
	Pagination Pagination             `json:"pagination"`
}

// CreateClient godoc
// @ID          createClientRequest
// @Summary     Store a relayed client request
// @Description Stores a product request posted by a form host. A repeated Idempotency-Key, or a known record id sent with a key, returns the stored row with 200.
// @Tags        Clients
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Retry key (the relay sends the record id)"  example(1714555800123)
// @Param       body             body    handlers.CreateClientRequest  true  "Submission record"
//
// @Success     201  {object}  domain.ClientRequest
// @Success     200  {object}  domain.ClientRequest  "Replayed delivery"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse "Record already stored"
// @Failure     413  {object}  handlers.ErrorResponse "Body too large"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /clients [post]
func (h *Handlers) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeInvalidRecord, "invalid record: "+err.Error())
		return
	}
	rec, err := req.record()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidRecord, "timestamp must be RFC 3339")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	row, replay, err := h.clients.Ingest(c.Request.Context(), rec, key)
	switch {
	case errors.Is(err, services.ErrDuplicateRecord):
		fail(c, http.StatusConflict, ErrCodeDuplicateRecord, "record already stored")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailed, err.Error())
		return
	}

	middleware.ObserveClientRequest(replay)
	if replay {
		ok(c, http.StatusOK, row)
		return
	}
	ok(c, http.StatusCreated, row)
}

// ListClients godoc
// @ID          listClientRequests
// @Summary     List stored client requests (paginated)
// @Description Returns stored requests newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Clients
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"clients:3:1714555800000:1:20\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListClientsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /clients [get]
func (h *Handlers) ListClients(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))

	// ETag pre-check (best effort).
	if count, maxTS, err := h.clients.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixMilli()
		}
		etag := fmt.Sprintf(`W/"clients:%d:%d:%d:%d"`, count, ts, page, pageSize)
		if notModified(c, etag) {
			return
		}
	}

	items, total, err := h.clients.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListClientsResponse{
		Clients:    items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetClient godoc
// @ID          getClientRequest
// @Summary     Get one stored client request
// @Tags        Clients
// @Produce     json
//
// @Param       id  path  int  true  "Record id"  example(1714555800123)
//
// @Success     200  {object} domain.ClientRequest
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /clients/{id} [get]
func (h *Handlers) GetClient(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be an integer record id")
		return
	}

	row, err := h.clients.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrClientRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "client request not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, row)
}
