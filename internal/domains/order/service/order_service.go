package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/order/repository"
	"warehouse-picking-backend/pkg/logger"
)

type orderService struct {
	repo repository.OrderRepository
	now  func() time.Time
}

func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{
		repo: repo,
		now:  time.Now,
	}
}

// =====================================================
// LISTINGS
// =====================================================

func (s *orderService) GetDetail(ctx context.Context, id int64) (*model.Detail, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ListLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for order %d: %w", id, err)
	}

	return &model.Detail{Order: *order, Lines: lines}, nil
}

func (s *orderService) StatusBoard(ctx context.Context) ([]model.StatusRow, error) {
	return s.repo.ListStatusBoard(ctx)
}

func (s *orderService) ReadyToPack(ctx context.Context) ([]model.StatusRow, error) {
	return s.repo.ListReadyToPack(ctx)
}

func (s *orderService) Packed(ctx context.Context, filter model.PackedFilter) ([]model.StatusRow, int, error) {
	return s.repo.ListPacked(ctx, filter)
}

// =====================================================
// MARK PACKED
// =====================================================

// MarkPacked confirms the current shipment. A partially shipped order
// advances to its next batch and returns to picking; the final batch packs
// the order for good.
func (s *orderService) MarkPacked(ctx context.Context, orderID, userID int64) (*model.Order, error) {
	var result *model.Order

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if !order.ReadyToPack || order.Status != model.StatusReadyToPack {
			return fmt.Errorf("%w: order %d is not ready to pack", model.ErrInvalidTransition, orderID)
		}

		if order.CurrentShipment < order.TotalShipments {
			order.CurrentShipment++
			order.ReadyToPack = false

			lines, err := s.repo.ListLinesInBatchTx(ctx, tx, orderID, order.CurrentShipment)
			if err != nil {
				return err
			}
			order.Status = model.StatusPicking
			model.Derive(order, lines)

			if err := s.repo.UpdatePackStateTx(ctx, tx, order); err != nil {
				return err
			}
		} else {
			now := s.now().UTC()
			order.Status = model.StatusPacked
			order.PackedAt = &now
			order.PackedBy = &userID

			if err := s.repo.UpdatePackStateTx(ctx, tx, order); err != nil {
				return err
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order marked packed", map[string]interface{}{
		"order_id":         orderID,
		"status":           result.Status,
		"current_shipment": result.CurrentShipment,
	})
	return result, nil
}

// =====================================================
// ADMIN REVERSALS
// =====================================================

// RevertToPicking drops the ready flag but keeps picking progress. A full
// reset of line quantities is a separate, deliberate action via the pick
// engine's revert.
func (s *orderService) RevertToPicking(ctx context.Context, orderID int64) (*model.Order, error) {
	var result *model.Order

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status != model.StatusReadyToPack {
			return fmt.Errorf("%w: order %d is not ready to pack", model.ErrInvalidTransition, orderID)
		}

		order.ReadyToPack = false
		order.Status = model.StatusPicking

		if err := s.repo.UpdateDerivedTx(ctx, tx, order); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *orderService) ChangeState(ctx context.Context, orderID, userID int64, target string) (*model.Order, error) {
	switch target {
	case model.StatusOpen, model.StatusPicking, model.StatusReadyToPack, model.StatusPacked:
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, target)
	}

	var result *model.Order

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == target {
			result = order
			return nil
		}

		switch target {
		case model.StatusPacked:
			now := s.now().UTC()
			order.Status = model.StatusPacked
			order.ReadyToPack = true
			order.PackedAt = &now
			order.PackedBy = &userID
		case model.StatusReadyToPack:
			order.Status = model.StatusReadyToPack
			order.ReadyToPack = true
			order.PackedAt = nil
			order.PackedBy = nil
		case model.StatusOpen, model.StatusPicking:
			order.Status = target
			order.ReadyToPack = false
			order.PackedAt = nil
			order.PackedBy = nil
			order.CurrentShipment = 1
		}

		if err := s.repo.UpdatePackStateTx(ctx, tx, order); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order state changed", map[string]interface{}{
		"order_id": orderID,
		"status":   target,
	})
	return result, nil
}

func (s *orderService) UpdateMessage(ctx context.Context, orderID int64, req model.UpdateMessageRequest) (*model.Order, error) {
	return s.repo.UpdateMessage(ctx, orderID, req.CustomerMessage, req.EmailSent)
}

// =====================================================
// SPLIT / UNSPLIT
// =====================================================

func (s *orderService) Split(ctx context.Context, orderID int64, req model.SplitRequest) (*model.Order, error) {
	var result *model.Order

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.StatusPacked || order.Status == model.StatusCancelled {
			return fmt.Errorf("%w: cannot split a %s order", model.ErrInvalidTransition, order.Status)
		}

		lines, err := s.repo.ListLinesTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if line.ShipmentBatch != order.CurrentShipment {
				return fmt.Errorf("%w: line %d is outside the current shipment", model.ErrInvalidSplit, line.ID)
			}
		}

		total, err := model.ValidateSplit(lines, req.Assignments)
		if err != nil {
			return err
		}

		for _, a := range req.Assignments {
			if err := s.repo.UpdateLineBatchTx(ctx, tx, a.LineID, a.Batch); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateShipmentsTx(ctx, tx, orderID, total, 1); err != nil {
			return err
		}
		order.TotalShipments = total
		order.CurrentShipment = 1

		batchLines, err := s.repo.ListLinesInBatchTx(ctx, tx, orderID, 1)
		if err != nil {
			return err
		}
		if model.Derive(order, batchLines) {
			if err := s.repo.UpdateDerivedTx(ctx, tx, order); err != nil {
				return err
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *orderService) Unsplit(ctx context.Context, orderID int64) (*model.Order, error) {
	var result *model.Order

	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repo.GetByIDForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.StatusPacked || order.Status == model.StatusCancelled {
			return fmt.Errorf("%w: cannot unsplit a %s order", model.ErrInvalidTransition, order.Status)
		}

		if err := s.repo.ResetLineBatchesTx(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.repo.UpdateShipmentsTx(ctx, tx, orderID, 1, 1); err != nil {
			return err
		}
		order.TotalShipments = 1
		order.CurrentShipment = 1

		lines, err := s.repo.ListLinesInBatchTx(ctx, tx, orderID, 1)
		if err != nil {
			return err
		}
		if model.Derive(order, lines) {
			if err := s.repo.UpdateDerivedTx(ctx, tx, order); err != nil {
				return err
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
