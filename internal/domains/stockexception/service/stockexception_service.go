package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	orderrepo "warehouse-picking-backend/internal/domains/order/repository"
	"warehouse-picking-backend/internal/domains/stockexception/model"
	"warehouse-picking-backend/internal/domains/stockexception/repository"
	"warehouse-picking-backend/pkg/logger"
)

type stockExceptionService struct {
	repo      repository.StockExceptionRepository
	orderRepo orderrepo.OrderRepository
}

func NewStockExceptionService(
	repo repository.StockExceptionRepository,
	orderRepo orderrepo.OrderRepository,
) StockExceptionService {
	return &stockExceptionService{
		repo:      repo,
		orderRepo: orderRepo,
	}
}

func (s *stockExceptionService) RecordShortageTx(ctx context.Context, tx pgx.Tx, params ShortageParams) (*model.StockException, error) {
	exc := &model.StockException{
		SKU:          params.SKU,
		ProductTitle: params.ProductTitle,
		Category:     params.Category,
		QtyShort:     params.QtyShort,
		OrderNumbers: params.OrderNumbers,
		ReportedBy:   params.ReportedBy,
		Notes:        params.Notes,
	}
	if err := s.repo.CreateTx(ctx, tx, exc); err != nil {
		return nil, err
	}
	return exc, nil
}

func (s *stockExceptionService) Get(ctx context.Context, id int64) (*model.StockException, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *stockExceptionService) List(ctx context.Context, filter model.Filter) ([]model.StockException, error) {
	return s.repo.List(ctx, filter)
}

func (s *stockExceptionService) Aggregate(ctx context.Context) ([]model.AggregateRow, error) {
	return s.repo.Aggregate(ctx)
}

// Resolve is idempotent: resolving an already-resolved exception is a no-op.
func (s *stockExceptionService) Resolve(ctx context.Context, id int64) (*model.StockException, error) {
	return s.repo.SetResolved(ctx, id)
}

func (s *stockExceptionService) ToggleOrderedFromCompany(ctx context.Context, id int64) (*model.StockException, error) {
	return s.repo.ToggleOrderedFromCompany(ctx, id)
}

// ToggleNaCancel flips the not-available flag. When it flips on, the items
// will never arrive, so the affected orders are re-derived right away
// instead of waiting for the next pick action.
func (s *stockExceptionService) ToggleNaCancel(ctx context.Context, id int64) (*model.StockException, error) {
	exc, err := s.repo.ToggleNaCancel(ctx, id)
	if err != nil {
		return nil, err
	}

	if exc.NaCancel {
		if err := s.rederiveAffected(ctx, exc.OrderNumbers); err != nil {
			logger.Error("failed to re-derive orders after na_cancel", err)
		}
	}

	return exc, nil
}

func (s *stockExceptionService) rederiveAffected(ctx context.Context, numbers []string) error {
	ids, err := s.repo.OrderIDsByNumbers(ctx, numbers)
	if err != nil {
		return err
	}

	for _, orderID := range ids {
		err := s.orderRepo.WithTx(ctx, func(tx pgx.Tx) error {
			order, err := s.orderRepo.GetByIDForUpdateTx(ctx, tx, orderID)
			if err != nil {
				return err
			}

			lines, err := s.orderRepo.ListLinesInBatchTx(ctx, tx, orderID, order.CurrentShipment)
			if err != nil {
				return err
			}

			if ordermodel.Derive(order, lines) {
				return s.orderRepo.UpdateDerivedTx(ctx, tx, order)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("re-derive order %d: %w", orderID, err)
		}
	}
	return nil
}
