package handler

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/repository"
	"github.com/iliyamo/bucket-api/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		JWTSecret:       "handler-test-secret",
		TokenTTLSeconds: 3600,
		BcryptCost:      4,
		PageSize:        3,
	}
}

// fakeUserStore satisfies both handler.UserStore and middleware.UserLookup.
type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	nextID  uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, email, password string, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.byEmail[email] = model.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: hash,
		RegisteredOn: time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	for email, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			f.byEmail[email] = u
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakeBlacklistStore satisfies handler.BlacklistStore and
// middleware.BlacklistChecker.
type fakeBlacklistStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeBlacklistStore() *fakeBlacklistStore {
	return &fakeBlacklistStore{revoked: map[string]time.Time{}}
}

func (f *fakeBlacklistStore) Blacklist(_ context.Context, raw string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.revoked[raw]; ok {
		return repository.ErrAlreadyBlacklisted
	}
	f.revoked[raw] = time.Now().UTC()
	return nil
}

func (f *fakeBlacklistStore) IsBlacklisted(_ context.Context, raw string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[raw]
	return ok, nil
}

// fakeBucketStore keeps buckets in a map and reproduces the repository's
// filter/window semantics: case-insensitive substring match, id ASC order.
type fakeBucketStore struct {
	mu      sync.Mutex
	buckets map[uint64]model.Bucket
	nextID  uint64
}

func newFakeBucketStore() *fakeBucketStore {
	return &fakeBucketStore{buckets: map[uint64]model.Bucket{}}
}

func (f *fakeBucketStore) Create(_ context.Context, b *model.Bucket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	now := time.Now().UTC()
	b.CreatedAt = now
	b.ModifiedAt = now
	f.buckets[b.ID] = *b
	return nil
}

func (f *fakeBucketStore) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (model.Bucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[id]
	if !ok || b.OwnerID != ownerID {
		return model.Bucket{}, repository.ErrBucketNotFound
	}
	return b, nil
}

func (f *fakeBucketStore) ListByOwner(_ context.Context, ownerID uint64, q string, page, pageSize int) ([]model.Bucket, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Bucket
	for _, b := range f.buckets {
		if b.OwnerID != ownerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(q)) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, page, pageSize), int64(len(matched)), nil
}

func (f *fakeBucketStore) UpdateName(_ context.Context, id, ownerID uint64, name string) (model.Bucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[id]
	if !ok || b.OwnerID != ownerID {
		return model.Bucket{}, repository.ErrBucketNotFound
	}
	b.Name = name
	b.ModifiedAt = time.Now().UTC()
	f.buckets[id] = b
	return b, nil
}

func (f *fakeBucketStore) Delete(_ context.Context, id, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[id]
	if !ok || b.OwnerID != ownerID {
		return repository.ErrBucketNotFound
	}
	delete(f.buckets, id)
	return nil
}

// fakeItemStore mirrors fakeBucketStore one level down.
type fakeItemStore struct {
	mu     sync.Mutex
	items  map[uint64]model.Item
	nextID uint64
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[uint64]model.Item{}}
}

func (f *fakeItemStore) Create(_ context.Context, it *model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it.ID = f.nextID
	now := time.Now().UTC()
	it.CreatedAt = now
	it.ModifiedAt = now
	f.items[it.ID] = *it
	return nil
}

func (f *fakeItemStore) GetByIDAndBucket(_ context.Context, id, bucketID uint64) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok || it.BucketID != bucketID {
		return model.Item{}, repository.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeItemStore) ListByBucket(_ context.Context, bucketID uint64, q string, page, pageSize int) ([]model.Item, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Item
	for _, it := range f.items {
		if it.BucketID != bucketID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(q)) {
			continue
		}
		matched = append(matched, it)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, page, pageSize), int64(len(matched)), nil
}

func (f *fakeItemStore) Update(_ context.Context, id, bucketID uint64, name, description string) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok || it.BucketID != bucketID {
		return model.Item{}, repository.ErrItemNotFound
	}
	it.Name = name
	it.Description = description
	it.ModifiedAt = time.Now().UTC()
	f.items[id] = it
	return it, nil
}

func (f *fakeItemStore) Delete(_ context.Context, id, bucketID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok || it.BucketID != bucketID {
		return repository.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

// window applies the 1-based page/pageSize slice to an ordered set.
func window[T any](rows []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
