package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"warehouse-picking-backend/internal/domains/stockexception/model"
)

// fakeExceptionRepo serves canned rows for the export tests.
type fakeExceptionRepo struct {
	exceptions []model.StockException
}

func (f *fakeExceptionRepo) List(_ context.Context, _ model.Filter) ([]model.StockException, error) {
	return f.exceptions, nil
}

func (f *fakeExceptionRepo) CreateTx(context.Context, pgx.Tx, *model.StockException) error {
	return nil
}
func (f *fakeExceptionRepo) GetByID(context.Context, int64) (*model.StockException, error) {
	return nil, model.ErrExceptionNotFound
}
func (f *fakeExceptionRepo) ListUnresolved(context.Context) ([]model.StockException, error) {
	return f.exceptions, nil
}
func (f *fakeExceptionRepo) Aggregate(context.Context) ([]model.AggregateRow, error) {
	return nil, nil
}
func (f *fakeExceptionRepo) SetResolved(context.Context, int64) (*model.StockException, error) {
	return nil, model.ErrExceptionNotFound
}
func (f *fakeExceptionRepo) ToggleOrderedFromCompany(context.Context, int64) (*model.StockException, error) {
	return nil, model.ErrExceptionNotFound
}
func (f *fakeExceptionRepo) ToggleNaCancel(context.Context, int64) (*model.StockException, error) {
	return nil, model.ErrExceptionNotFound
}
func (f *fakeExceptionRepo) OrderIDsByNumbers(context.Context, []string) ([]int64, error) {
	return nil, nil
}

func exportFixture() []model.StockException {
	return []model.StockException{
		{
			ID:                 1,
			SKU:                "PLUSH-1",
			ProductTitle:       "Bear",
			Category:           "Toys",
			QtyShort:           3,
			OrderNumbers:       []string{"1001", "1002"},
			ReportedByUsername: "alice",
			OrderedFromCompany: true,
			CreatedAt:          time.Date(2026, 8, 20, 14, 5, 0, 0, time.UTC),
		},
		{
			ID:           2,
			SKU:          "GAME-7",
			ProductTitle: "Chess Set",
			Category:     "Games",
			QtyShort:     1,
			Resolved:     true,
			Notes:        "restocked",
			CreatedAt:    time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewStockExceptionService(&fakeExceptionRepo{exceptions: exportFixture()}, nil)

	data, err := svc.ExportCSV(context.Background(), model.Filter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportHeader, records[0])

	assert.Equal(t, "2026-08-20 14:05", records[1][0])
	assert.Equal(t, "PLUSH-1", records[1][1])
	assert.Equal(t, "1001, 1002", records[1][5])
	assert.Equal(t, "alice", records[1][6])
	assert.Equal(t, "yes", records[1][7])
	assert.Equal(t, "no", records[1][9])

	assert.Equal(t, "GAME-7", records[2][1])
	assert.Equal(t, "yes", records[2][9])
	assert.Equal(t, "restocked", records[2][10])
}

func TestExportXLSX(t *testing.T) {
	svc := NewStockExceptionService(&fakeExceptionRepo{exceptions: exportFixture()}, nil)

	data, err := svc.ExportXLSX(context.Background(), model.Filter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Out of Stock")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "SKU", rows[0][1])
	assert.Equal(t, "PLUSH-1", rows[1][1])
	assert.Equal(t, "GAME-7", rows[2][1])
}
