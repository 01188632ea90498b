package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodel "warehouse-picking-backend/internal/domains/catalog/model"
	catalogrepo "warehouse-picking-backend/internal/domains/catalog/repository"
	"warehouse-picking-backend/internal/domains/importer/model"
	"warehouse-picking-backend/internal/domains/importer/repository"
	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	orderrepo "warehouse-picking-backend/internal/domains/order/repository"
)

// =====================================================
// IN-MEMORY FAKES
// =====================================================

// feedStore holds the tables the apply path touches. The embedded interfaces
// stay nil; any call outside the apply path panics, which is what we want in
// a unit test.
type feedStore struct {
	products map[string]*catalogmodel.Product
	orders   map[string]*ordermodel.Order
	lines    map[int64][]ordermodel.OrderLine

	nextProductID int64
	nextOrderID   int64
	nextLineID    int64
}

func newFeedStore() *feedStore {
	return &feedStore{
		products: make(map[string]*catalogmodel.Product),
		orders:   make(map[string]*ordermodel.Order),
		lines:    make(map[int64][]ordermodel.OrderLine),
	}
}

type fakeProductRepo struct {
	catalogrepo.ProductRepository
	store *feedStore
}

func (f *fakeProductRepo) UpsertTx(_ context.Context, _ pgx.Tx, product *catalogmodel.Product) (bool, bool, error) {
	if existing, ok := f.store.products[product.SKU]; ok {
		product.ID = existing.ID
		if existing.Title == product.Title &&
			existing.Category == product.Category &&
			existing.StoreQuantityAvailable == product.StoreQuantityAvailable {
			return false, false, nil
		}
		clone := *product
		f.store.products[product.SKU] = &clone
		return false, true, nil
	}

	f.store.nextProductID++
	product.ID = f.store.nextProductID
	clone := *product
	f.store.products[product.SKU] = &clone
	return true, false, nil
}

type fakeImporterRepo struct {
	repository.ImporterRepository
	store *feedStore
}

func (f *fakeImporterRepo) GetOrdersByExternalIDsTx(_ context.Context, _ pgx.Tx, externalIDs []string) (map[string]*ordermodel.Order, error) {
	result := make(map[string]*ordermodel.Order)
	for _, id := range externalIDs {
		if order, ok := f.store.orders[id]; ok {
			clone := *order
			result[id] = &clone
		}
	}
	return result, nil
}

func (f *fakeImporterRepo) CreateOrderTx(_ context.Context, _ pgx.Tx, order *ordermodel.Order) error {
	f.store.nextOrderID++
	order.ID = f.store.nextOrderID
	order.Status = ordermodel.StatusOpen
	order.TotalShipments = 1
	order.CurrentShipment = 1
	clone := *order
	f.store.orders[order.ExternalID] = &clone
	return nil
}

func (f *fakeImporterRepo) UpdateOrderHeaderTx(_ context.Context, _ pgx.Tx, orderID int64, number, customerName string) error {
	for _, order := range f.store.orders {
		if order.ID == orderID {
			order.Number = number
			order.CustomerName = customerName
			return nil
		}
	}
	return ordermodel.ErrOrderNotFound
}

func (f *fakeImporterRepo) ListLinesByOrderIDsTx(_ context.Context, _ pgx.Tx, orderIDs []int64) (map[int64][]ordermodel.OrderLine, error) {
	result := make(map[int64][]ordermodel.OrderLine)
	for _, id := range orderIDs {
		if lines, ok := f.store.lines[id]; ok {
			result[id] = append([]ordermodel.OrderLine(nil), lines...)
		}
	}
	return result, nil
}

func (f *fakeImporterRepo) CreateLineTx(_ context.Context, _ pgx.Tx, line *ordermodel.OrderLine) error {
	f.store.nextLineID++
	line.ID = f.store.nextLineID
	line.ShipmentBatch = 1
	f.store.lines[line.OrderID] = append(f.store.lines[line.OrderID], *line)
	return nil
}

func (f *fakeImporterRepo) UpdateLineQtyTx(_ context.Context, _ pgx.Tx, lineID int64, qtyOrdered int) error {
	for orderID := range f.store.lines {
		for i := range f.store.lines[orderID] {
			if f.store.lines[orderID][i].ID == lineID {
				f.store.lines[orderID][i].QtyOrdered = qtyOrdered
				return nil
			}
		}
	}
	return ordermodel.ErrLineNotFound
}

func (f *fakeImporterRepo) AutoPackAbsentTx(_ context.Context, _ pgx.Tx, presentExternalIDs []string, at time.Time) (int, error) {
	present := make(map[string]struct{}, len(presentExternalIDs))
	for _, id := range presentExternalIDs {
		present[id] = struct{}{}
	}

	packed := 0
	for externalID, order := range f.store.orders {
		if _, ok := present[externalID]; ok {
			continue
		}
		if order.Status == ordermodel.StatusPacked || order.Status == ordermodel.StatusCancelled {
			continue
		}
		order.Status = ordermodel.StatusPacked
		order.ReadyToPack = false
		packedAt := at
		order.PackedAt = &packedAt
		order.PackedBy = nil
		packed++
	}
	return packed, nil
}

type fakeOrderRepo struct {
	orderrepo.OrderRepository
	store *feedStore
}

func (f *fakeOrderRepo) GetByIDForUpdateTx(_ context.Context, _ pgx.Tx, id int64) (*ordermodel.Order, error) {
	for _, order := range f.store.orders {
		if order.ID == id {
			clone := *order
			return &clone, nil
		}
	}
	return nil, ordermodel.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListLinesInBatchTx(_ context.Context, _ pgx.Tx, orderID int64, batch int) ([]ordermodel.OrderLine, error) {
	var result []ordermodel.OrderLine
	for _, line := range f.store.lines[orderID] {
		if line.ShipmentBatch == batch {
			result = append(result, line)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateDerivedTx(_ context.Context, _ pgx.Tx, order *ordermodel.Order) error {
	for _, stored := range f.store.orders {
		if stored.ID == order.ID {
			stored.Status = order.Status
			stored.ReadyToPack = order.ReadyToPack
			return nil
		}
	}
	return ordermodel.ErrOrderNotFound
}

// =====================================================
// FIXTURES
// =====================================================

func newApplyService(store *feedStore) *importerService {
	return &importerService{
		repo:        &fakeImporterRepo{store: store},
		productRepo: &fakeProductRepo{store: store},
		orderRepo:   &fakeOrderRepo{store: store},
		now:         func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) },
	}
}

func simpleFeed() *model.FlatDocument {
	return &model.FlatDocument{
		Products: []catalogmodel.Product{
			{SKU: "PLUSH-1", Title: "Bear", Category: "Toys", StoreQuantityAvailable: 7},
			{SKU: "GAME-7", Title: "Chess Set", Category: "Games", StoreQuantityAvailable: 2},
		},
		Orders: []model.FlatOrder{
			{ExternalID: "ext-1", Number: "1001", CustomerName: "Alice", CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
			{ExternalID: "ext-2", Number: "1002", CustomerName: "Bob", CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)},
		},
		Lines: []model.FlatLine{
			{ExternalID: "ext-1", SKU: "PLUSH-1", Qty: 2},
			{ExternalID: "ext-1", SKU: "GAME-7", Qty: 1},
			{ExternalID: "ext-2", SKU: "PLUSH-1", Qty: 3},
		},
	}
}

func apply(t *testing.T, svc *importerService, flat *model.FlatDocument) *model.SyncLog {
	t.Helper()
	log := &model.SyncLog{OrdersFetched: len(flat.Orders)}
	require.NoError(t, svc.applyFeed(context.Background(), nil, flat, log))
	return log
}

// =====================================================
// TESTS
// =====================================================

func TestApplyFeedCreatesEverything(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	log := apply(t, svc, simpleFeed())

	assert.Equal(t, 2, log.ProductsCreated)
	assert.Equal(t, 0, log.ProductsUpdated)
	assert.Equal(t, 2, log.OrdersCreated)
	assert.Equal(t, 3, log.LinesCreated)
	assert.Equal(t, 0, log.OrdersPacked)
	assert.Empty(t, log.Warnings)

	order := store.orders["ext-1"]
	require.NotNil(t, order)
	assert.Equal(t, ordermodel.StatusOpen, order.Status)
	assert.Len(t, store.lines[order.ID], 2)
}

func TestApplyFeedIsIdempotent(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())
	log := apply(t, svc, simpleFeed())

	assert.Equal(t, 0, log.ProductsCreated)
	assert.Equal(t, 0, log.ProductsUpdated)
	assert.Equal(t, 0, log.OrdersCreated)
	assert.Equal(t, 0, log.LinesCreated)
	assert.Equal(t, 0, log.LinesUpdated)
	assert.Equal(t, 0, log.OrdersPacked)
	assert.Empty(t, log.Warnings)

	// Both orders are still live in the feed, so both count as updated even
	// though nothing was written.
	assert.Equal(t, 2, log.OrdersUpdated)
}

func TestApplyFeedCountsLiveOrdersAsUpdated(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	// Half-pick ext-1, then re-apply the identical feed.
	order := store.orders["ext-1"]
	order.Status = ordermodel.StatusPicking
	store.lines[order.ID][0].QtyPicked = 1

	log := apply(t, svc, simpleFeed())

	assert.Equal(t, 2, log.OrdersUpdated)
	assert.Equal(t, ordermodel.StatusPicking, store.orders["ext-1"].Status)
	assert.Equal(t, 1, store.lines[order.ID][0].QtyPicked)

	// Packed orders still present in the feed are not counted.
	store.orders["ext-2"].Status = ordermodel.StatusPacked

	log = apply(t, svc, simpleFeed())
	assert.Equal(t, 1, log.OrdersUpdated)
}

func TestApplyFeedPreservesLocalFields(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	// Staff start picking ext-1 between syncs.
	order := store.orders["ext-1"]
	order.Status = ordermodel.StatusPicking
	store.lines[order.ID][0].QtyPicked = 1

	// The feed renames the customer but says nothing about picking state.
	flat := simpleFeed()
	flat.Orders[0].CustomerName = "Alice Smith"

	log := apply(t, svc, flat)
	assert.Equal(t, 2, log.OrdersUpdated)

	order = store.orders["ext-1"]
	assert.Equal(t, "Alice Smith", order.CustomerName)
	assert.Equal(t, ordermodel.StatusPicking, order.Status)
	assert.Equal(t, 1, store.lines[order.ID][0].QtyPicked)
}

func TestApplyFeedClampsQtyBelowProgress(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	order := store.orders["ext-2"]
	store.lines[order.ID][0].QtyPicked = 2
	store.lines[order.ID][0].QtyShort = 1

	// Feed drops ext-2's plush qty from 3 to 1, below the 3 already accounted.
	flat := simpleFeed()
	flat.Lines[2].Qty = 1

	log := apply(t, svc, flat)

	assert.Equal(t, 0, log.LinesUpdated)
	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "below the 3 already picked or short")
	assert.Equal(t, 3, store.lines[order.ID][0].QtyOrdered)
}

func TestApplyFeedRaisesQty(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	flat := simpleFeed()
	flat.Lines[0].Qty = 5

	log := apply(t, svc, flat)
	assert.Equal(t, 1, log.LinesUpdated)

	order := store.orders["ext-1"]
	assert.Equal(t, 5, store.lines[order.ID][0].QtyOrdered)
}

func TestApplyFeedAutoPacksAbsentOrders(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	// Next feed only carries ext-1; ext-2 shipped elsewhere.
	flat := simpleFeed()
	flat.Orders = flat.Orders[:1]
	flat.Lines = flat.Lines[:2]

	log := apply(t, svc, flat)
	assert.Equal(t, 1, log.OrdersPacked)

	packed := store.orders["ext-2"]
	assert.Equal(t, ordermodel.StatusPacked, packed.Status)
	require.NotNil(t, packed.PackedAt)
	assert.Nil(t, packed.PackedBy)

	// Already-packed orders are not counted again.
	log = apply(t, svc, flat)
	assert.Equal(t, 0, log.OrdersPacked)
}

func TestApplyFeedSkipsAutoPackOnEmptyFeed(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	log := apply(t, svc, &model.FlatDocument{})

	assert.Equal(t, 0, log.OrdersPacked)
	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "auto-pack skipped")
	assert.Equal(t, ordermodel.StatusOpen, store.orders["ext-1"].Status)
}

func TestApplyFeedWarnsOnDanglingLines(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	flat := simpleFeed()
	flat.Lines = append(flat.Lines,
		model.FlatLine{ExternalID: "ext-999", SKU: "PLUSH-1", Qty: 1},
		model.FlatLine{ExternalID: "ext-1", SKU: "NOPE", Qty: 1},
	)

	log := apply(t, svc, flat)

	require.Len(t, log.Warnings, 2)
	assert.Contains(t, log.Warnings[0], "unknown order")
	assert.Contains(t, log.Warnings[1], "unknown product")
	assert.Equal(t, 3, log.LinesCreated)
}

// racingSyncRepo passes the existence check but loses the insert race, the
// way two concurrent syncs interleave between the two commits.
type racingSyncRepo struct {
	repository.ImporterRepository
}

func (r *racingSyncRepo) RecoverStaleSyncs(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func (r *racingSyncRepo) HasActiveSync(context.Context) (bool, error) {
	return false, nil
}

func (r *racingSyncRepo) CreateSyncLog(context.Context, *model.SyncLog) error {
	return model.ErrSyncBusy
}

func TestSyncBusyWhenLogInsertRaces(t *testing.T) {
	svc := &importerService{
		repo: &racingSyncRepo{},
		now:  time.Now,
	}

	_, err := svc.Sync(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrSyncBusy)
}

func TestApplyFeedUpdatesChangedProduct(t *testing.T) {
	store := newFeedStore()
	svc := newApplyService(store)

	apply(t, svc, simpleFeed())

	flat := simpleFeed()
	flat.Products[0].StoreQuantityAvailable = 0

	log := apply(t, svc, flat)
	assert.Equal(t, 0, log.ProductsCreated)
	assert.Equal(t, 1, log.ProductsUpdated)
	assert.Equal(t, 0, store.products["PLUSH-1"].StoreQuantityAvailable)
}
