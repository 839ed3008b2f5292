package pdf

import (
	"context"

	"github.com/gosimple/slug"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
)

// Provider renders invoice documents.
type Provider interface {
	RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, settings settingsdomain.InvoiceSettings) ([]byte, error)
}

// FileName returns the attachment name for an invoice, e.g. "inv-202403-001.pdf".
func FileName(inv invoicedomain.Invoice) string {
	name := slug.Make(inv.InvoiceNumber)
	if name == "" {
		name = "invoice-" + inv.ID.String()
	}
	return name + ".pdf"
}

type NoOpProvider struct{}

func (p *NoOpProvider) RenderInvoice(context.Context, invoicedomain.Invoice, settingsdomain.InvoiceSettings) ([]byte, error) {
	return []byte{}, nil
}
