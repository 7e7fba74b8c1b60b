package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/rs/zerolog"
)

type memRepo struct {
	records map[string]*model.Delivery
	gets    int
}

func (m *memRepo) Save(_ context.Context, d *model.Delivery) (*model.Delivery, error) {
	if _, ok := m.records[d.EventID]; ok {
		return nil, repo.ErrDuplicateRecord
	}
	m.records[d.EventID] = d
	return d, nil
}

func (m *memRepo) GetByEventID(_ context.Context, eventID string) (*model.Delivery, error) {
	m.gets++
	d, ok := m.records[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return d, nil
}

func (m *memRepo) UpdateOutcome(_ context.Context, d *model.Delivery) error {
	m.records[d.EventID] = d
	return nil
}

type memCache struct {
	items   map[string]*model.Delivery
	ttl     time.Duration
	deletes int
	getErr  error
}

func (c *memCache) Get(_ context.Context, eventID string) (*model.Delivery, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	d, ok := c.items[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return d, nil
}

func (c *memCache) Set(_ context.Context, d *model.Delivery, ttl time.Duration) error {
	c.items[d.EventID] = d
	c.ttl = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, eventID string) error {
	c.deletes++
	delete(c.items, eventID)
	return nil
}

func newCached(ttl time.Duration) (*CachedDeliveryRepository, *memRepo, *memCache) {
	primary := &memRepo{records: map[string]*model.Delivery{}}
	cache := &memCache{items: map[string]*model.Delivery{}}
	logger := zerolog.Nop()
	return NewCachedDeliveryRepository(primary, cache, &logger, ttl), primary, cache
}

func TestCachedRepository_CacheAside(t *testing.T) {
	ctx := context.Background()
	r, primary, cache := newCached(time.Minute)

	d := model.NewDelivery(&model.Event{ID: "e1"}, "hipchat")
	if _, err := r.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d.Complete(204, nil)
	if err := r.UpdateOutcome(ctx, d); err != nil {
		t.Fatalf("UpdateOutcome: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := r.GetByEventID(ctx, "e1")
		if err != nil {
			t.Fatalf("GetByEventID: %v", err)
		}
		if got.Status != model.StatusSent {
			t.Fatalf("status = %s", got.Status)
		}
	}
	if primary.gets != 1 {
		t.Fatalf("primary hit %d times, want 1", primary.gets)
	}
	if cache.ttl != time.Minute {
		t.Fatalf("cache ttl = %v", cache.ttl)
	}

	if err := r.UpdateOutcome(ctx, d); err != nil {
		t.Fatalf("UpdateOutcome: %v", err)
	}
	if _, ok := cache.items["e1"]; ok {
		t.Fatal("cache entry not invalidated after update")
	}
}

func TestCachedRepository_PendingNotCached(t *testing.T) {
	ctx := context.Background()
	r, _, cache := newCached(0)

	r.Save(ctx, model.NewDelivery(&model.Event{ID: "e2"}, "hipchat"))
	if _, err := r.GetByEventID(ctx, "e2"); err != nil {
		t.Fatalf("GetByEventID: %v", err)
	}
	if len(cache.items) != 0 {
		t.Fatal("pending delivery should not be cached")
	}
	if r.ttl != defaultTTL {
		t.Fatalf("ttl = %v, want default", r.ttl)
	}
}

func TestCachedRepository_DuplicateAndMissing(t *testing.T) {
	ctx := context.Background()
	r, _, cache := newCached(time.Minute)

	d := model.NewDelivery(&model.Event{ID: "e3"}, "hipchat")
	r.Save(ctx, d)
	if _, err := r.Save(ctx, d); !errors.Is(err, repo.ErrDuplicateRecord) {
		t.Fatalf("second Save = %v, want ErrDuplicateRecord", err)
	}

	cache.getErr = errors.New("redis down")
	if _, err := r.GetByEventID(ctx, "missing"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("GetByEventID = %v, want ErrNotFound", err)
	}
}
