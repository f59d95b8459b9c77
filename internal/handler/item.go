package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/middleware"
	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/pagination"
	"github.com/iliyamo/bucket-api/internal/repository"
)

// ItemStore is the slice of the item repository the handlers need.
type ItemStore interface {
	Create(ctx context.Context, it *model.Item) error
	GetByIDAndBucket(ctx context.Context, id, bucketID uint64) (model.Item, error)
	ListByBucket(ctx context.Context, bucketID uint64, q string, page, pageSize int) ([]model.Item, int64, error)
	Update(ctx context.Context, id, bucketID uint64, name, description string) (model.Item, error)
	Delete(ctx context.Context, id, bucketID uint64) error
}

// ItemHandler serves the /bucketlists/:bucket_id/items endpoints. Every
// operation first resolves the bucket through an owner-scoped lookup, so
// another tenant's bucket reads as "no such bucket".
type ItemHandler struct {
	Cfg     config.Config
	Buckets BucketStore
	Items   ItemStore
}

func NewItemHandler(cfg config.Config, buckets BucketStore, items ItemStore) *ItemHandler {
	return &ItemHandler{Cfg: cfg, Buckets: buckets, Items: items}
}

// ownedBucket validates the bucket_id parameter and resolves it against the
// authenticated owner. When it returns false the failure response has
// already been written.
func (h *ItemHandler) ownedBucket(c echo.Context) (model.Bucket, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		_ = respond(c, http.StatusUnauthorized, "failed", middleware.MsgTokenInvalid)
		return model.Bucket{}, false
	}
	rawID := c.Param("bucket_id")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		_ = respond(c, http.StatusUnauthorized, "failed", "Provide a valid Bucket Id")
		return model.Bucket{}, false
	}
	b, err := h.Buckets.GetByIDAndOwner(c.Request().Context(), id, u.ID)
	if err != nil {
		if err == repository.ErrBucketNotFound {
			_ = respond(c, http.StatusAccepted, "failed", "User has no Bucket with Id "+rawID)
			return model.Bucket{}, false
		}
		_ = respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
		return model.Bucket{}, false
	}
	return b, true
}

// itemResp wraps a single item in the standard envelope.
func itemResp(c echo.Context, code int, it model.Item) error {
	return c.JSON(code, echo.Map{"status": "success", "item": it})
}

// Create handles POST /bucketlists/:bucket_id/items/.
func (h *ItemHandler) Create(c echo.Context) error {
	b, ok := h.ownedBucket(c)
	if !ok {
		return nil
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return respond(c, http.StatusUnauthorized, "failed", "No name or value attribute found")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return respond(c, http.StatusUnauthorized, "failed", "No name or value attribute found")
	}

	it := model.Item{BucketID: b.ID, Name: name, Description: body.Description}
	if err := h.Items.Create(c.Request().Context(), &it); err != nil {
		return respond(c, http.StatusAccepted, "failed", "Operation failed, try again")
	}
	return itemResp(c, http.StatusOK, it)
}

// List handles GET /bucketlists/:bucket_id/items/ with page and q parameters.
func (h *ItemHandler) List(c echo.Context) error {
	b, ok := h.ownedBucket(c)
	if !ok {
		return nil
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	page = pagination.ClampPage(page)
	q := strings.TrimSpace(c.QueryParam("q"))

	items, total, err := h.Items.ListByBucket(c.Request().Context(), b.ID, q, page, h.Cfg.PageSize)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	prev, next := pagination.Links(c.Scheme(), c.Request().Host, c.Request().URL.Path,
		page, h.Cfg.PageSize, total)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"items":    items,
		"count":    total,
		"next":     next,
		"previous": prev,
	})
}

// Get handles GET /bucketlists/:bucket_id/items/:item_id.
func (h *ItemHandler) Get(c echo.Context) error {
	b, ok := h.ownedBucket(c)
	if !ok {
		return nil
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Provide a valid item Id")
	}
	it, err := h.Items.GetByIDAndBucket(c.Request().Context(), itemID, b.ID)
	if err != nil {
		if err == repository.ErrItemNotFound {
			return respond(c, http.StatusNotFound, "failed", "Item not found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return itemResp(c, http.StatusOK, it)
}

// Update handles PUT /bucketlists/:bucket_id/items/:item_id.
func (h *ItemHandler) Update(c echo.Context) error {
	b, ok := h.ownedBucket(c)
	if !ok {
		return nil
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Provide a valid item Id")
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return respond(c, http.StatusUnauthorized, "failed", "No name or value attribute found")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return respond(c, http.StatusUnauthorized, "failed", "No name or value attribute found")
	}

	// Confirm the item exists inside this bucket before writing.
	if _, err := h.Items.GetByIDAndBucket(c.Request().Context(), itemID, b.ID); err != nil {
		if err == repository.ErrItemNotFound {
			return respond(c, http.StatusNotFound, "failed", "Item not found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	it, err := h.Items.Update(c.Request().Context(), itemID, b.ID, name, body.Description)
	if err != nil {
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return itemResp(c, http.StatusOK, it)
}

// Delete handles DELETE /bucketlists/:bucket_id/items/:item_id.
func (h *ItemHandler) Delete(c echo.Context) error {
	b, ok := h.ownedBucket(c)
	if !ok {
		return nil
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "failed", "Provide a valid item Id")
	}
	if err := h.Items.Delete(c.Request().Context(), itemID, b.ID); err != nil {
		if err == repository.ErrItemNotFound {
			return respond(c, http.StatusNotFound, "failed", "Item not found")
		}
		return respond(c, http.StatusInternalServerError, "failed", "Operation failed, try again")
	}
	return respond(c, http.StatusOK, "success", "Successfully deleted the item from the bucket")
}
