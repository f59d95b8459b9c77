package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/handler"
	"github.com/iliyamo/bucket-api/internal/middleware"
	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/repository"
	"github.com/iliyamo/bucket-api/internal/utils"
)

// In-memory stores backing the full route stack.

type memUsers struct {
	byEmail map[string]model.User
	nextID  uint64
}

func (m *memUsers) Create(_ context.Context, email, password string, cost int) (uint64, error) {
	if _, ok := m.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.byEmail[email] = model.User{ID: m.nextID, Email: email, PasswordHash: hash}
	return m.nextID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	for email, u := range m.byEmail {
		if u.ID == id {
			hash, err := utils.HashPassword(password, cost)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
			m.byEmail[email] = u
			return nil
		}
	}
	return sql.ErrNoRows
}

type memBlacklist struct{ revoked map[string]bool }

func (m *memBlacklist) Blacklist(_ context.Context, raw string, _ time.Time) error {
	if m.revoked[raw] {
		return repository.ErrAlreadyBlacklisted
	}
	m.revoked[raw] = true
	return nil
}

func (m *memBlacklist) IsBlacklisted(_ context.Context, raw string) (bool, error) {
	return m.revoked[raw], nil
}

type memBuckets struct {
	buckets map[uint64]model.Bucket
	nextID  uint64
}

func (m *memBuckets) Create(_ context.Context, b *model.Bucket) error {
	m.nextID++
	b.ID = m.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.ModifiedAt = now, now
	m.buckets[b.ID] = *b
	return nil
}

func (m *memBuckets) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (model.Bucket, error) {
	b, ok := m.buckets[id]
	if !ok || b.OwnerID != ownerID {
		return model.Bucket{}, repository.ErrBucketNotFound
	}
	return b, nil
}

func (m *memBuckets) ListByOwner(_ context.Context, ownerID uint64, q string, page, pageSize int) ([]model.Bucket, int64, error) {
	var matched []model.Bucket
	for _, b := range m.buckets {
		if b.OwnerID != ownerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(q)) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []model.Bucket{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memBuckets) UpdateName(_ context.Context, id, ownerID uint64, name string) (model.Bucket, error) {
	b, err := m.GetByIDAndOwner(context.Background(), id, ownerID)
	if err != nil {
		return model.Bucket{}, err
	}
	b.Name = name
	b.ModifiedAt = time.Now().UTC()
	m.buckets[id] = b
	return b, nil
}

func (m *memBuckets) Delete(_ context.Context, id, ownerID uint64) error {
	if _, err := m.GetByIDAndOwner(context.Background(), id, ownerID); err != nil {
		return err
	}
	delete(m.buckets, id)
	return nil
}

type memItems struct{}

func (memItems) Create(_ context.Context, _ *model.Item) error { return nil }
func (memItems) GetByIDAndBucket(_ context.Context, _, _ uint64) (model.Item, error) {
	return model.Item{}, repository.ErrItemNotFound
}
func (memItems) ListByBucket(_ context.Context, _ uint64, _ string, _, _ int) ([]model.Item, int64, error) {
	return []model.Item{}, 0, nil
}
func (memItems) Update(_ context.Context, _, _ uint64, _, _ string) (model.Item, error) {
	return model.Item{}, repository.ErrItemNotFound
}
func (memItems) Delete(_ context.Context, _, _ uint64) error { return repository.ErrItemNotFound }

func newServer() *echo.Echo {
	cfg := config.Config{
		Env:             "test",
		JWTSecret:       "router-test-secret",
		TokenTTLSeconds: 3600,
		BcryptCost:      4,
		PageSize:        4,
	}
	users := &memUsers{byEmail: map[string]model.User{}}
	blacklist := &memBlacklist{revoked: map[string]bool{}}
	buckets := &memBuckets{buckets: map[uint64]model.Bucket{}}

	a := handler.NewAuthHandler(cfg, users, blacklist)
	b := handler.NewBucketHandler(cfg, buckets)
	i := handler.NewItemHandler(cfg, buckets, memItems{})

	e := echo.New()
	RegisterRoutes(e, a)
	RegisterProtected(e, cfg.JWTSecret, users, blacklist, a, b, i)
	return e
}

func call(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	AuthToken string `json:"auth_token"`
}

func registerAndToken(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	rec := call(e, http.MethodPost, "/auth/register",
		`{"email":"`+email+`","password":"123456"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AuthToken)
	return body.AuthToken
}

func TestRegisterLoginLogoutLifecycle(t *testing.T) {
	e := newServer()
	tok := registerAndToken(t, e, "a@x.com")

	rec := call(e, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"123456"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Protected endpoint works while the token is live.
	rec = call(e, http.MethodGet, "/bucketlists", "", tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(e, http.MethodPost, "/auth/logout", "", tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Immediately afterwards the same token is rejected as blacklisted.
	rec = call(e, http.MethodGet, "/bucketlists", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, middleware.MsgTokenBlacklisted, body.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newServer()
	rec := call(e, http.MethodGet, "/bucketlists", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, middleware.MsgTokenMissing, body.Message)
}

func TestPaginationWalkIsGapFree(t *testing.T) {
	e := newServer()
	tok := registerAndToken(t, e, "a@x.com")
	names := []string{"Travel", "Tral", "Trvel", "Tavel", "Travl", "Trave"}
	for _, name := range names {
		rec := call(e, http.MethodPost, "/bucketlists", `{"name":"`+name+`"}`, tok)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Page size 4, six matches: 4 then 2, following next links.
	type listBody struct {
		Buckets []model.Bucket `json:"buckets"`
		Count   int64          `json:"count"`
		Next    *string        `json:"next"`
	}
	var collected []string
	target := "/bucketlists?q=T"
	for pages := 0; target != ""; pages++ {
		require.Less(t, pages, 10, "pagination walk must terminate")
		rec := call(e, http.MethodGet, target, "", tok)
		require.Equal(t, http.StatusOK, rec.Code)
		var body listBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(6), body.Count)
		for _, b := range body.Buckets {
			collected = append(collected, b.Name)
		}
		if body.Next == nil {
			break
		}
		u, err := url.Parse(*body.Next)
		require.NoError(t, err)
		// Next links drop the filter; keep it while walking.
		target = u.Path + "?q=T&page=" + u.Query().Get("page")
	}
	assert.Equal(t, names, collected)
}

func TestCrossTenantBucketLooksAbsent(t *testing.T) {
	e := newServer()
	ownerTok := registerAndToken(t, e, "owner@x.com")
	otherTok := registerAndToken(t, e, "other@x.com")

	rec := call(e, http.MethodPost, "/bucketlists", `{"name":"Travel"}`, ownerTok)
	require.Equal(t, http.StatusCreated, rec.Code)

	recForeign := call(e, http.MethodGet, "/bucketlists/1", "", otherTok)
	recMissing := call(e, http.MethodGet, "/bucketlists/999", "", otherTok)
	assert.Equal(t, http.StatusNotFound, recForeign.Code)
	assert.Equal(t, recMissing.Code, recForeign.Code)
	assert.Equal(t, recMissing.Body.String(), recForeign.Body.String())
}

func TestUnknownRouteEnvelope(t *testing.T) {
	e := newServer()
	rec := call(e, http.MethodGet, "/definitely/not/here", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Endpoint not found", body.Message)
}
