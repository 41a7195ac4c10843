// Package repotest provides in-memory repositories for tests of the layers above the database.
package repotest

import (
	"context"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
)

// OutboxMsg is an outbox row kept by the Store.
type OutboxMsg struct {
	ID        uuid.UUID
	Topic     string
	Headers   map[string]string
	Payload   json.RawMessage
	Key       *string
	Processed bool
	Error     *string
}

type state struct {
	products map[string]model.Product
	order    []string
	outbox   []OutboxMsg
}

func (s state) clone() state {
	return state{
		products: maps.Clone(s.products),
		order:    slices.Clone(s.order),
		outbox:   slices.Clone(s.outbox),
	}
}

// Store is an in-memory stand-in for the Postgres database. Transactions are serialized and
// roll back every change when the transaction function fails.
type Store struct {
	txMu sync.Mutex

	mu    sync.Mutex
	state state
	err   error

	receiptsMu sync.Mutex
	receipts   map[uuid.UUID]model.Receipt
}

func NewStore() *Store {
	return &Store{
		state: state{
			products: map[string]model.Product{},
		},
		receipts: map[uuid.UUID]model.Receipt{},
	}
}

// FailWith makes every subsequent repository call return err. A nil err restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) DB() db.DB {
	return &fakeDB{store: s}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{store: s}
}

func (s *Store) OutboxMsgs() repository.OutboxMsgRepository {
	return &outboxMsgRepository{store: s}
}

func (s *Store) Receipts() repository.ReceiptRepository {
	return &receiptRepository{store: s}
}

// Seed inserts or replaces products directly.
func (s *Store) Seed(products ...model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if _, ok := s.state.products[p.Name]; !ok {
			s.state.order = append(s.state.order, p.Name)
		}
		s.state.products[p.Name] = p
	}
}

// Product returns the stored product by name.
func (s *Store) Product(name string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[name]
	return p, ok
}

// Outbox returns a copy of the outbox rows in insertion order.
func (s *Store) Outbox() []OutboxMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.outbox)
}

// fakeDB only supports WithTx; the embedded nil interface panics on any query method.
type fakeDB struct {
	db.DB
	store *Store
	inTx  bool
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	if f.inTx {
		return txFunc(f)
	}

	f.store.txMu.Lock()
	defer f.store.txMu.Unlock()

	f.store.mu.Lock()
	snapshot := f.store.state.clone()
	f.store.mu.Unlock()

	if err := txFunc(&fakeDB{store: f.store, inTx: true}); err != nil {
		f.store.mu.Lock()
		f.store.state = snapshot
		f.store.mu.Unlock()
		return err
	}

	return nil
}

type productRepository struct {
	store *Store
}

func (r *productRepository) WithDB(db.DB) repository.ProductRepository {
	return r
}

func (r *productRepository) UpsertProduct(_ context.Context, params repository.UpsertProductParams) (model.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Product{}, s.err
	}

	p, ok := s.state.products[params.Name]
	if params.QuantityDelta < 0 || int64(p.Quantity)+int64(params.QuantityDelta) > math.MaxInt32 {
		return model.Product{}, repository.ErrQuantityOutOfRange
	}
	if !ok {
		p = model.Product{
			ID:        params.ID,
			Name:      params.Name,
			CreatedAt: params.Now,
		}
		s.state.order = append(s.state.order, params.Name)
	}
	p.Price = params.Price
	p.Quantity += params.QuantityDelta
	p.UpdatedAt = params.Now
	s.state.products[params.Name] = p

	return p, nil
}

func (r *productRepository) GetProductByName(_ context.Context, name string) (model.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Product{}, s.err
	}

	p, ok := s.state.products[name]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *productRepository) DecrementProductStock(_ context.Context, name string, amount int) (model.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Product{}, s.err
	}

	p, ok := s.state.products[name]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	if p.Quantity < amount {
		return model.Product{}, repository.ErrInsufficientStock
	}
	p.Quantity -= amount
	p.UpdatedAt = time.Now()
	s.state.products[name] = p

	return p, nil
}

func (r *productRepository) ListAllProducts(context.Context) ([]model.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	products := make([]model.Product, 0, len(s.state.order))
	for _, name := range s.state.order {
		products = append(products, s.state.products[name])
	}
	return products, nil
}

type outboxMsgRepository struct {
	store *Store
}

func (r *outboxMsgRepository) WithDB(db.DB) repository.OutboxMsgRepository {
	return r
}

func (r *outboxMsgRepository) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	s.state.outbox = append(s.state.outbox, OutboxMsg{
		ID:      uuid.New(),
		Topic:   params.Topic,
		Headers: params.Headers,
		Payload: params.Payload,
		Key:     params.PartitionKey,
	})
	return nil
}

func (r *outboxMsgRepository) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	results := []repository.ListUnprocessedOutboxMsgsResult{}
	for _, msg := range s.state.outbox {
		if msg.Processed {
			continue
		}
		if len(results) == int(params.BatchSize) {
			break
		}
		results = append(results, repository.ListUnprocessedOutboxMsgsResult{
			ID:           msg.ID,
			Topic:        msg.Topic,
			Headers:      msg.Headers,
			Payload:      msg.Payload,
			PartitionKey: msg.Key,
		})
	}
	return results, nil
}

func (r *outboxMsgRepository) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	for _, item := range params.Items {
		for i := range s.state.outbox {
			if s.state.outbox[i].ID == item.ID {
				s.state.outbox[i].Processed = true
				s.state.outbox[i].Error = item.Error
			}
		}
	}
	return nil
}

type receiptRepository struct {
	store *Store
}

func (r *receiptRepository) SaveReceipt(_ context.Context, receipt model.Receipt) error {
	r.store.receiptsMu.Lock()
	defer r.store.receiptsMu.Unlock()
	r.store.receipts[receipt.ID] = receipt
	return nil
}

func (r *receiptRepository) GetReceipt(_ context.Context, id uuid.UUID) (model.Receipt, error) {
	r.store.receiptsMu.Lock()
	defer r.store.receiptsMu.Unlock()
	receipt, ok := r.store.receipts[id]
	if !ok {
		return model.Receipt{}, repository.ErrReceiptNotFound
	}
	return receipt, nil
}
