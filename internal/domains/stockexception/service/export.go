package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"warehouse-picking-backend/internal/domains/stockexception/model"
)

var exportHeader = []string{
	"Reported At", "SKU", "Product", "Category", "Qty Short",
	"Orders", "Reported By", "Ordered From Company", "N/A Cancel", "Resolved", "Notes",
}

func exportRecord(e *model.StockException) []string {
	return []string{
		e.CreatedAt.Format("2006-01-02 15:04"),
		e.SKU,
		e.ProductTitle,
		e.Category,
		strconv.Itoa(e.QtyShort),
		strings.Join(e.OrderNumbers, ", "),
		e.ReportedByUsername,
		yesNo(e.OrderedFromCompany),
		yesNo(e.NaCancel),
		yesNo(e.Resolved),
		e.Notes,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (s *stockExceptionService) ExportCSV(ctx context.Context, filter model.Filter) ([]byte, error) {
	exceptions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range exceptions {
		if err := w.Write(exportRecord(&exceptions[i])); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *stockExceptionService) ExportXLSX(ctx context.Context, filter model.Filter) ([]byte, error) {
	exceptions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Out of Stock"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write xlsx header: %w", err)
		}
	}

	for i := range exceptions {
		record := exportRecord(&exceptions[i])
		for col, value := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write xlsx cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
