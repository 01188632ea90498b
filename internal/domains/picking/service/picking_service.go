package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	catalogrepo "warehouse-picking-backend/internal/domains/catalog/repository"
	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/picking/model"
	"warehouse-picking-backend/internal/domains/picking/repository"
	stockservice "warehouse-picking-backend/internal/domains/stockexception/service"
	"warehouse-picking-backend/pkg/logger"
)

type pickingService struct {
	repo        repository.PickingRepository
	productRepo catalogrepo.ProductRepository
	exceptions  stockservice.StockExceptionService
}

func NewPickingService(
	repo repository.PickingRepository,
	productRepo catalogrepo.ProductRepository,
	exceptions stockservice.StockExceptionService,
) PickingService {
	return &pickingService{
		repo:        repo,
		productRepo: productRepo,
		exceptions:  exceptions,
	}
}

// =====================================================
// READ SIDE
// =====================================================

func (s *pickingService) PickList(ctx context.Context) ([]model.PickRow, error) {
	return s.repo.ListPickRows(ctx)
}

func (s *pickingService) PickListStats(ctx context.Context) (*model.PickListStats, error) {
	return s.repo.PickListStats(ctx)
}

func (s *pickingService) OrdersForSKU(ctx context.Context, sku string) ([]model.SKUOrder, error) {
	return s.repo.ListOrdersForSKU(ctx, sku)
}

func (s *pickingService) PickedItems(ctx context.Context, filter model.PickedItemFilter) ([]model.PickedItem, error) {
	return s.repo.ListPickedItems(ctx, filter)
}

func (s *pickingService) PickEvents(ctx context.Context, filter model.PickEventFilter) ([]model.PickEventRow, error) {
	return s.repo.ListPickEvents(ctx, filter)
}

// =====================================================
// PICK
// =====================================================

// Pick distributes qty units of a SKU across outstanding order lines in
// strict FIFO order. All or nothing: if demand exceeds the total remaining,
// no line is touched.
func (s *pickingService) Pick(ctx context.Context, req model.PickRequest, userID int64) (*model.PickResult, error) {
	result := &model.PickResult{SKU: req.SKU, Qty: req.Qty}

	err := s.repo.WithSerializableTx(ctx, func(tx pgx.Tx) error {
		lines, err := s.repo.LockLinesForSKU(ctx, tx, req.SKU)
		if err != nil {
			return err
		}

		allocations, err := model.Allocate(lines, req.Qty)
		if err != nil {
			return err
		}

		for _, a := range allocations {
			if err := s.repo.ApplyDeltaTx(ctx, tx, a.LineID, a.Take, 0); err != nil {
				return err
			}
			event := &model.PickEvent{
				OrderLineID: a.LineID,
				DeltaQty:    a.Take,
				Kind:        model.EventPick,
				UserID:      &userID,
				Notes:       req.Notes,
			}
			if err := s.repo.InsertPickEventTx(ctx, tx, event); err != nil {
				return err
			}
		}

		ready, err := s.deriveTouched(ctx, tx, touchedOrders(allocations))
		if err != nil {
			return err
		}

		result.Allocations = allocations
		result.OrdersReady = ready
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pick applied", map[string]interface{}{
		"sku":          req.SKU,
		"qty":          req.Qty,
		"lines":        len(result.Allocations),
		"orders_ready": len(result.OrdersReady),
	})
	return result, nil
}

// =====================================================
// MARK SHORT
// =====================================================

// MarkShort records a shortage against explicit order allocations and
// snapshots one stock exception covering all of them.
func (s *pickingService) MarkShort(ctx context.Context, req model.MarkShortRequest, userID int64) (*model.ShortResult, error) {
	result := &model.ShortResult{SKU: req.SKU}

	requested := make(map[int64]int, len(req.Allocations))
	orderIDs := make([]int64, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		if _, dup := requested[a.OrderID]; dup {
			return nil, fmt.Errorf("%w: order %d listed twice", model.ErrInvalidQuantity, a.OrderID)
		}
		requested[a.OrderID] = a.QtyShort
		orderIDs = append(orderIDs, a.OrderID)
	}

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		lines, err := s.repo.LockLinesForOrders(ctx, tx, req.SKU, orderIDs)
		if err != nil {
			return err
		}
		if len(lines) != len(orderIDs) {
			return fmt.Errorf("%w: some orders have no line for sku %s", model.ErrLineNotFound, req.SKU)
		}

		total := 0
		var orderNumbers []string
		for i := range lines {
			line := &lines[i]
			qtyShort := requested[line.OrderID]
			if qtyShort > line.Remaining() {
				return fmt.Errorf("%w: order %d has %d remaining, requested %d short",
					model.ErrInvalidQuantity, line.OrderID, line.Remaining(), qtyShort)
			}

			if err := s.repo.ApplyDeltaTx(ctx, tx, line.ID, 0, qtyShort); err != nil {
				return err
			}
			event := &model.PickEvent{
				OrderLineID: line.ID,
				DeltaQty:    qtyShort,
				Kind:        model.EventShort,
				UserID:      &userID,
				Notes:       req.Notes,
			}
			if err := s.repo.InsertPickEventTx(ctx, tx, event); err != nil {
				return err
			}
			total += qtyShort
		}

		// One exception per report, carrying every affected order number.
		for _, orderID := range orderIDs {
			order, err := s.repo.GetOrderForUpdateTx(ctx, tx, orderID)
			if err != nil {
				return err
			}
			orderNumbers = append(orderNumbers, order.Number)
		}

		product, err := s.productRepo.GetBySKU(ctx, req.SKU)
		if err != nil {
			return err
		}

		exc, err := s.exceptions.RecordShortageTx(ctx, tx, stockservice.ShortageParams{
			SKU:          req.SKU,
			ProductTitle: product.Title,
			Category:     product.Category,
			QtyShort:     total,
			OrderNumbers: orderNumbers,
			ReportedBy:   &userID,
			Notes:        req.Notes,
		})
		if err != nil {
			return err
		}

		ready, err := s.deriveTouched(ctx, tx, orderIDs)
		if err != nil {
			return err
		}

		result.TotalShort = total
		result.StockExceptionID = exc.ID
		result.OrdersAffected = ready
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("shortage recorded", map[string]interface{}{
		"sku":       req.SKU,
		"qty_short": result.TotalShort,
		"exception": result.StockExceptionID,
	})
	return result, nil
}

// =====================================================
// REVERT
// =====================================================

// RevertPickedItem undoes part or all of a line's picked quantity. The
// owning order may regress from ready_to_pack back to picking.
func (s *pickingService) RevertPickedItem(ctx context.Context, lineID int64, qty *int, userID int64) (*model.RevertResult, error) {
	result := &model.RevertResult{LineID: lineID}

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		line, err := s.repo.GetLineForUpdateTx(ctx, tx, lineID)
		if err != nil {
			return err
		}
		order, err := s.repo.GetOrderForUpdateTx(ctx, tx, line.OrderID)
		if err != nil {
			return err
		}

		revert := line.QtyPicked
		if qty != nil {
			revert = *qty
		}
		if revert < 1 || line.QtyPicked == 0 {
			return model.ErrNothingToRevert
		}
		if revert > line.QtyPicked {
			return fmt.Errorf("%w: line has %d picked, requested %d",
				model.ErrInvalidQuantity, line.QtyPicked, revert)
		}

		if err := s.repo.ApplyDeltaTx(ctx, tx, line.ID, -revert, 0); err != nil {
			return err
		}
		event := &model.PickEvent{
			OrderLineID: line.ID,
			DeltaQty:    -revert,
			Kind:        model.EventRevert,
			UserID:      &userID,
		}
		if err := s.repo.InsertPickEventTx(ctx, tx, event); err != nil {
			return err
		}

		lines, err := s.repo.ListLinesInBatchTx(ctx, tx, order.ID, order.CurrentShipment)
		if err != nil {
			return err
		}
		if ordermodel.Derive(order, lines) {
			if err := s.repo.UpdateOrderDerivedTx(ctx, tx, order); err != nil {
				return err
			}
		}

		result.OrderID = order.ID
		result.Reverted = revert
		result.QtyPicked = line.QtyPicked - revert
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// =====================================================
// MAINTENANCE
// =====================================================

func (s *pickingService) CleanupEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		retentionDays = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.repo.DeleteEventsBefore(ctx, cutoff)
}

// =====================================================
// HELPERS
// =====================================================

func touchedOrders(allocations []model.Allocation) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, a := range allocations {
		if _, ok := seen[a.OrderID]; !ok {
			seen[a.OrderID] = struct{}{}
			ids = append(ids, a.OrderID)
		}
	}
	return ids
}

// deriveTouched re-derives each touched order and reports the ones that
// became ready to pack. Orders are visited in id order; their row locks are
// already held from the FIFO walk.
func (s *pickingService) deriveTouched(ctx context.Context, tx pgx.Tx, orderIDs []int64) ([]int64, error) {
	sorted := append([]int64(nil), orderIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ready []int64
	for _, orderID := range sorted {
		order, err := s.repo.GetOrderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}

		lines, err := s.repo.ListLinesInBatchTx(ctx, tx, orderID, order.CurrentShipment)
		if err != nil {
			return nil, err
		}

		if ordermodel.Derive(order, lines) {
			if err := s.repo.UpdateOrderDerivedTx(ctx, tx, order); err != nil {
				return nil, err
			}
		}
		if order.ReadyToPack {
			ready = append(ready, orderID)
		}
	}
	return ready, nil
}
