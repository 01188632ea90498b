package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	catalogrepo "warehouse-picking-backend/internal/domains/catalog/repository"
	"warehouse-picking-backend/internal/domains/importer/model"
	"warehouse-picking-backend/internal/domains/importer/repository"
	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	orderrepo "warehouse-picking-backend/internal/domains/order/repository"
	settingsservice "warehouse-picking-backend/internal/domains/settings/service"
	"warehouse-picking-backend/internal/infrastructure/upstream"
	"warehouse-picking-backend/pkg/logger"
)

const defaultLogLimit = 50

// =====================================================
// IMPORTER SERVICE IMPLEMENTATION
// =====================================================
type importerService struct {
	repo        repository.ImporterRepository
	productRepo catalogrepo.ProductRepository
	orderRepo   orderrepo.OrderRepository
	settings    settingsservice.SettingsService
	client      *upstream.Client
	now         func() time.Time
}

func NewImporterService(
	repo repository.ImporterRepository,
	productRepo catalogrepo.ProductRepository,
	orderRepo orderrepo.OrderRepository,
	settings settingsservice.SettingsService,
	client *upstream.Client,
) ImporterService {
	return &importerService{
		repo:        repo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		settings:    settings,
		client:      client,
		now:         time.Now,
	}
}

func (s *importerService) Sync(ctx context.Context, triggeredBy *int64) (*model.SyncLog, error) {
	if recovered, err := s.repo.RecoverStaleSyncs(ctx, model.StaleSyncAfter); err != nil {
		return nil, err
	} else if recovered > 0 {
		logger.Warn("recovered stale sync runs", map[string]interface{}{"count": recovered})
	}

	active, err := s.repo.HasActiveSync(ctx)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, model.ErrSyncBusy
	}

	// The in_progress row commits before the import starts so it doubles as
	// the cross-process lock.
	log := &model.SyncLog{TriggeredBy: triggeredBy}
	if err := s.repo.CreateSyncLog(ctx, log); err != nil {
		return nil, err
	}

	if err := s.runSync(ctx, log); err != nil {
		log.Status = model.SyncStatusError
		log.ErrorMessage = err.Error()
		if finishErr := s.repo.FinishSyncLog(ctx, log); finishErr != nil {
			logger.Error("failed to finish errored sync log", finishErr)
		}
		s.stamp(ctx, model.SyncStatusError)
		return log, err
	}

	log.Status = model.SyncStatusSuccess
	if err := s.repo.FinishSyncLog(ctx, log); err != nil {
		return log, err
	}
	s.stamp(ctx, model.SyncStatusSuccess)

	logger.Info("sync completed", map[string]interface{}{
		"orders_fetched": log.OrdersFetched,
		"orders_created": log.OrdersCreated,
		"orders_packed":  log.OrdersPacked,
		"lines_created":  log.LinesCreated,
		"warnings":       len(log.Warnings),
	})
	return log, nil
}

func (s *importerService) runSync(ctx context.Context, log *model.SyncLog) error {
	cfg, err := s.settings.GetAPIConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load api config: %w", err)
	}

	doc, err := s.client.FetchDocument(ctx, cfg.APIBaseURL, cfg.APIKey)
	if err != nil {
		return err
	}

	flat := model.Flatten(doc)
	log.OrdersFetched = len(flat.Orders)
	log.Warnings = append(log.Warnings, flat.Warnings...)

	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		return s.applyFeed(ctx, tx, flat, log)
	})
}

// applyFeed writes one flattened feed inside a single transaction. Orders are
// visited oldest first, matching the lock order of the pick engine.
func (s *importerService) applyFeed(ctx context.Context, tx pgx.Tx, flat *model.FlatDocument, log *model.SyncLog) error {
	products := make(map[string]int64, len(flat.Products))
	snapshots := make(map[string]int, len(flat.Products))

	for i := range flat.Products {
		p := &flat.Products[i]
		created, changed, err := s.productRepo.UpsertTx(ctx, tx, p)
		if err != nil {
			return err
		}
		if created {
			log.ProductsCreated++
		} else if changed {
			log.ProductsUpdated++
		}
		products[p.SKU] = p.ID
		snapshots[p.SKU] = i
	}

	sortedOrders := append([]model.FlatOrder(nil), flat.Orders...)
	sort.Slice(sortedOrders, func(i, j int) bool {
		if !sortedOrders[i].CreatedAt.Equal(sortedOrders[j].CreatedAt) {
			return sortedOrders[i].CreatedAt.Before(sortedOrders[j].CreatedAt)
		}
		return sortedOrders[i].ExternalID < sortedOrders[j].ExternalID
	})

	externalIDs := make([]string, len(sortedOrders))
	for i, o := range sortedOrders {
		externalIDs[i] = o.ExternalID
	}

	existing, err := s.repo.GetOrdersByExternalIDsTx(ctx, tx, externalIDs)
	if err != nil {
		return err
	}

	orderIDs := make(map[string]int64, len(sortedOrders))
	touched := make(map[int64]struct{})

	for _, fo := range sortedOrders {
		if order, ok := existing[fo.ExternalID]; ok {
			orderIDs[fo.ExternalID] = order.ID
			if order.Number != fo.Number || order.CustomerName != fo.CustomerName {
				if err := s.repo.UpdateOrderHeaderTx(ctx, tx, order.ID, fo.Number, fo.CustomerName); err != nil {
					return err
				}
			}
			// orders_updated counts every live order the feed still carries,
			// not just header rewrites.
			if order.Status != ordermodel.StatusPacked && order.Status != ordermodel.StatusCancelled {
				log.OrdersUpdated++
			}
			continue
		}

		order := &ordermodel.Order{
			ExternalID:      fo.ExternalID,
			Number:          fo.Number,
			CustomerName:    fo.CustomerName,
			CustomerMessage: fo.CustomerMessage,
			CreatedAt:       fo.CreatedAt,
		}
		if err := s.repo.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}
		orderIDs[fo.ExternalID] = order.ID
		log.OrdersCreated++
	}

	ids := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id)
	}
	linesByOrder, err := s.repo.ListLinesByOrderIDsTx(ctx, tx, ids)
	if err != nil {
		return err
	}

	type lineKey struct {
		orderID   int64
		productID int64
	}
	lineIndex := make(map[lineKey]*ordermodel.OrderLine)
	for orderID, lines := range linesByOrder {
		for i := range lines {
			lineIndex[lineKey{orderID, lines[i].ProductID}] = &linesByOrder[orderID][i]
		}
	}

	for _, fl := range flat.Lines {
		orderID, ok := orderIDs[fl.ExternalID]
		if !ok {
			log.Warnings = append(log.Warnings, fmt.Sprintf(
				"line %s/%s references an unknown order, skipped", fl.ExternalID, fl.SKU))
			continue
		}
		productID, ok := products[fl.SKU]
		if !ok {
			log.Warnings = append(log.Warnings, fmt.Sprintf(
				"line %s/%s references an unknown product, skipped", fl.ExternalID, fl.SKU))
			continue
		}

		if line, ok := lineIndex[lineKey{orderID, productID}]; ok {
			if line.QtyOrdered == fl.Qty {
				continue
			}
			if fl.Qty < line.QtyPicked+line.QtyShort {
				log.Warnings = append(log.Warnings, fmt.Sprintf(
					"line %s/%s: feed qty %d is below the %d already picked or short, kept %d",
					fl.ExternalID, fl.SKU, fl.Qty, line.QtyPicked+line.QtyShort, line.QtyOrdered))
				continue
			}
			if err := s.repo.UpdateLineQtyTx(ctx, tx, line.ID, fl.Qty); err != nil {
				return err
			}
			log.LinesUpdated++
			touched[orderID] = struct{}{}
			continue
		}

		snap := flat.Products[snapshots[fl.SKU]]
		line := &ordermodel.OrderLine{
			OrderID:    orderID,
			ProductID:  productID,
			SKU:        snap.SKU,
			Title:      snap.Title,
			Category:   snap.Category,
			ImageURL:   snap.ImageURL,
			QtyOrdered: fl.Qty,
		}
		if err := s.repo.CreateLineTx(ctx, tx, line); err != nil {
			return err
		}
		log.LinesCreated++
		touched[orderID] = struct{}{}
	}

	if len(sortedOrders) == 0 {
		log.Warnings = append(log.Warnings, "feed contained no orders, auto-pack skipped")
	} else {
		packed, err := s.repo.AutoPackAbsentTx(ctx, tx, externalIDs, s.now())
		if err != nil {
			return err
		}
		log.OrdersPacked = packed
	}

	return s.deriveTouched(ctx, tx, touched)
}

// deriveTouched re-derives every order whose line set changed this run.
func (s *importerService) deriveTouched(ctx context.Context, tx pgx.Tx, touched map[int64]struct{}) error {
	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, orderID := range ids {
		order, err := s.orderRepo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		lines, err := s.orderRepo.ListLinesInBatchTx(ctx, tx, orderID, order.CurrentShipment)
		if err != nil {
			return err
		}
		if ordermodel.Derive(order, lines) {
			if err := s.orderRepo.UpdateDerivedTx(ctx, tx, order); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *importerService) stamp(ctx context.Context, status string) {
	if err := s.settings.StampSync(ctx, s.now(), status); err != nil {
		logger.Error("failed to stamp sync status", err)
	}
}

func (s *importerService) Status(ctx context.Context) (*model.SyncStatus, error) {
	cfg, err := s.settings.GetAPIConfig(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.HasActiveSync(ctx)
	if err != nil {
		return nil, err
	}

	status := &model.SyncStatus{
		AutoSyncEnabled:     cfg.AutoSyncEnabled,
		SyncIntervalMinutes: cfg.SyncIntervalMinutes,
		LastSyncAt:          cfg.LastSyncAt,
		LastSyncStatus:      cfg.LastSyncStatus,
		InProgress:          active,
	}

	latest, err := s.repo.LatestSyncLog(ctx)
	if err == nil {
		status.LatestLog = latest
	} else if !errors.Is(err, model.ErrSyncLogNotFound) {
		return nil, err
	}

	return status, nil
}

func (s *importerService) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultLogLimit
	}
	return s.repo.ListSyncLogs(ctx, limit)
}
