package model

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	sxmodel "warehouse-picking-backend/internal/domains/stockexception/model"
)

// Notification channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ReportSubject is the email subject line for the shortage report.
const ReportSubject = "Out of Stock Report"

// SendReportRequest triggers a shortage report on one channel. Recipients and
// message override the configured defaults when set.
type SendReportRequest struct {
	Channel    string   `json:"channel"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

func (r SendReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Channel, validation.Required, validation.In(ChannelEmail, ChannelSMS)),
	)
}

type TestEmailRequest struct {
	Recipient string `json:"recipient"`
}

func (r TestEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Recipient, validation.Required, is.Email),
	)
}

type TestSMSRequest struct {
	Phone string `json:"phone"`
}

func (r TestSMSRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required),
	)
}

// SendResult reports what a send actually did.
type SendResult struct {
	Channel    string   `json:"channel"`
	Recipients []string `json:"recipients"`
	Exceptions int      `json:"exceptions"`
	SentAt     string   `json:"sent_at"`
}

// BuildReport renders the unresolved shortages as a plain-text report, one
// block per SKU, oldest report first within whatever order the caller passed.
func BuildReport(exceptions []sxmodel.StockException, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", ReportSubject, at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Unresolved shortages: %d\n\n", len(exceptions))

	for _, exc := range exceptions {
		fmt.Fprintf(&b, "%s - %s\n", exc.SKU, exc.ProductTitle)
		fmt.Fprintf(&b, "  short: %d", exc.QtyShort)
		if len(exc.OrderNumbers) > 0 {
			fmt.Fprintf(&b, "  orders: %s", strings.Join(exc.OrderNumbers, ", "))
		}
		b.WriteString("\n")
		if exc.Notes != "" {
			fmt.Fprintf(&b, "  notes: %s\n", exc.Notes)
		}
		if exc.OrderedFromCompany {
			b.WriteString("  reordered from vendor\n")
		}
		if exc.NaCancel {
			b.WriteString("  marked n/a cancel\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}
