package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cashflow-api/internal/repository"
	"cashflow-api/internal/testutil"
	"cashflow-api/internal/ws"

	"gorm.io/gorm"
)

var cashier = Actor{ID: "user-1", Name: "Ana", Email: "ana@example.com"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

// memoryCache is a ReportCache backed by a map of JSON blobs.
type memoryCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidations++
	return nil
}

type repos struct {
	product  repository.ProductRepository
	sale     repository.SaleRepository
	client   repository.ClientRepository
	supplier repository.SupplierRepository
	category repository.CategoryRepository
	expense  repository.ExpenseRepository
}

func newRepos(db *gorm.DB) repos {
	return repos{
		product:  repository.NewProductRepo(db),
		sale:     repository.NewSaleRepo(db),
		client:   repository.NewClientRepo(db),
		supplier: repository.NewSupplierRepo(db),
		category: repository.NewCategoryRepo(db),
		expense:  repository.NewExpenseRepo(db),
	}
}

type saleEnv struct {
	db        *gorm.DB
	svc       SaleService
	publisher *recordingPublisher
	cache     *memoryCache
}

func newSaleEnv(t *testing.T) *saleEnv {
	t.Helper()
	db := testutil.NewDB(t)
	r := newRepos(db)
	env := &saleEnv{db: db, publisher: &recordingPublisher{}, cache: newMemoryCache()}
	env.svc = NewSaleService(db, r.sale, r.product, r.client, env.publisher, env.cache, nil)
	return env
}
