package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	sxmodel "warehouse-picking-backend/internal/domains/stockexception/model"
)

func TestBuildReport(t *testing.T) {
	at := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)

	exceptions := []sxmodel.StockException{
		{
			SKU:          "PLUSH-1",
			ProductTitle: "Bear",
			QtyShort:     3,
			OrderNumbers: []string{"1001", "1002"},
			Notes:        "vendor backorder",
		},
		{
			SKU:                "GAME-7",
			ProductTitle:       "Chess Set",
			QtyShort:           1,
			OrderedFromCompany: true,
			NaCancel:           true,
		},
	}

	report := BuildReport(exceptions, at)

	assert.True(t, strings.HasPrefix(report, "Out of Stock Report (2026-08-24 09:30)"))
	assert.Contains(t, report, "Unresolved shortages: 2")

	assert.Contains(t, report, "PLUSH-1 - Bear")
	assert.Contains(t, report, "short: 3")
	assert.Contains(t, report, "orders: 1001, 1002")
	assert.Contains(t, report, "notes: vendor backorder")

	assert.Contains(t, report, "GAME-7 - Chess Set")
	assert.Contains(t, report, "reordered from vendor")
	assert.Contains(t, report, "marked n/a cancel")

	// First exception has neither flag.
	bearBlock := report[:strings.Index(report, "GAME-7")]
	assert.NotContains(t, bearBlock, "reordered from vendor")
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC))
	assert.Contains(t, report, "Unresolved shortages: 0")
}

func TestSendReportRequestValidate(t *testing.T) {
	assert.NoError(t, SendReportRequest{Channel: ChannelEmail}.Validate())
	assert.NoError(t, SendReportRequest{Channel: ChannelSMS}.Validate())
	assert.Error(t, SendReportRequest{}.Validate())
	assert.Error(t, SendReportRequest{Channel: "pigeon"}.Validate())
}
