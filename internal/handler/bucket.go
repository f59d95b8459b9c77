package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/middleware"
	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/pagination"
	"github.com/iliyamo/bucket-api/internal/queue"
	"github.com/iliyamo/bucket-api/internal/repository"
)

// BucketStore is the slice of the bucket repository the handlers need.
type BucketStore interface {
	Create(ctx context.Context, b *model.Bucket) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Bucket, error)
	ListByOwner(ctx context.Context, ownerID uint64, q string, page, pageSize int) ([]model.Bucket, int64, error)
	UpdateName(ctx context.Context, id, ownerID uint64, name string) (model.Bucket, error)
	Delete(ctx context.Context, id, ownerID uint64) error
}

// BucketHandler serves the /bucketlists endpoints. All of them sit behind
// the token guard, so the owner is always present in the request context.
type BucketHandler struct {
	Cfg     config.Config
	Buckets BucketStore
	Publish func(ctx context.Context, ev queue.UserActivityEvent) error
}

func NewBucketHandler(cfg config.Config, buckets BucketStore) *BucketHandler {
	return &BucketHandler{Cfg: cfg, Buckets: buckets}
}

// bucketResp is the created/updated bucket payload.
func bucketResp(c echo.Context, code int, b model.Bucket) error {
	return c.JSON(code, echo.Map{
		"status":     "success",
		"id":         b.ID,
		"name":       b.Name,
		"createdAt":  b.CreatedAt,
		"modifiedAt": b.ModifiedAt,
	})
}

// Create handles POST /bucketlists.
func (h *BucketHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Missing name attribute")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return respond(c, http.StatusBadRequest, "failed", "Missing name attribute")
	}

	b := model.Bucket{OwnerID: u.ID, Name: name}
	if err := h.Buckets.Create(c.Request().Context(), &b); err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	h.publishBucketCreated(u.ID, b)
	return bucketResp(c, http.StatusCreated, b)
}

// List handles GET /bucketlists with optional page and q parameters.
func (h *BucketHandler) List(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	page = pagination.ClampPage(page)
	q := strings.TrimSpace(c.QueryParam("q"))

	buckets, total, err := h.Buckets.ListByOwner(c.Request().Context(), u.ID, q, page, h.Cfg.PageSize)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	prev, next := pagination.Links(c.Scheme(), c.Request().Host, c.Request().URL.Path,
		page, h.Cfg.PageSize, total)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"buckets":  buckets,
		"count":    total,
		"next":     next,
		"previous": prev,
	})
}

// Get handles GET /bucketlists/:bucket_id.
func (h *BucketHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	id, err := strconv.ParseUint(c.Param("bucket_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Please provide a valid Bucket Id")
	}
	b, err := h.Buckets.GetByIDAndOwner(c.Request().Context(), id, u.ID)
	if err != nil {
		if err == repository.ErrBucketNotFound {
			return respond(c, http.StatusNotFound, "failed", "Bucket resource cannot be found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "bucket": b})
}

// Update handles PUT /bucketlists/:bucket_id; only the name can change.
func (h *BucketHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	id, err := strconv.ParseUint(c.Param("bucket_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Please provide a valid Bucket Id")
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Missing name attribute")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return respond(c, http.StatusBadRequest, "failed", "Missing name attribute")
	}

	b, err := h.Buckets.UpdateName(c.Request().Context(), id, u.ID, name)
	if err != nil {
		if err == repository.ErrBucketNotFound {
			return respond(c, http.StatusNotFound, "failed", "Bucket resource cannot be found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return bucketResp(c, http.StatusCreated, b)
}

// Delete handles DELETE /bucketlists/:bucket_id.
func (h *BucketHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
	}
	id, err := strconv.ParseUint(c.Param("bucket_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Please provide a valid Bucket Id")
	}
	if err := h.Buckets.Delete(c.Request().Context(), id, u.ID); err != nil {
		if err == repository.ErrBucketNotFound {
			return respond(c, http.StatusNotFound, "failed", "Bucket resource cannot be found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return respond(c, http.StatusOK, "success", "Bucket Deleted successfully")
}

func (h *BucketHandler) publishBucketCreated(ownerID uint64, b model.Bucket) {
	if h.Publish == nil {
		return
	}
	ev := queue.UserActivityEvent{
		Event:      queue.EventBucketCreated,
		UserID:     ownerID,
		BucketID:   b.ID,
		BucketName: b.Name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = h.Publish(context.Background(), ev) }()
}
