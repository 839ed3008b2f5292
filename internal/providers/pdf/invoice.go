package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
)

const displayDate = "02 Jan 2006"

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

// RenderInvoice lays out one invoice. A fully paid invoice is titled as a
// receipt and shows the payment date instead of the amount due.
func (p *MarotoProvider) RenderInvoice(ctx context.Context, inv invoicedomain.Invoice, settings settingsdomain.InvoiceSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	paid := inv.Status == invoicedomain.InvoiceStatusPaid
	title := "Invoice"
	if paid {
		title = "Receipt"
	}
	companyName := settings.CompanyName
	if companyName == "" {
		companyName = "Rent invoice"
	}

	m.AddRow(14,
		text.NewCol(8, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, companyName, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	meta := []string{
		"Invoice number: " + inv.InvoiceNumber,
		"Date of issue: " + inv.InvoiceDate.Format(displayDate),
		"Date due: " + inv.DueDate.Format(displayDate),
		"Rent period: " + inv.PeriodStart.Format(displayDate) + " - " + inv.PeriodEnd.Format(displayDate),
	}
	if paid && inv.PaidAt != nil {
		meta = append(meta, "Date paid: "+inv.PaidAt.Format(displayDate))
	}
	metaCol := col.New(6)
	for i, line := range meta {
		metaCol.Add(text.New(line, props.Text{Top: float64(i * 4)}))
	}
	m.AddRow(float64(len(meta)*4+6), metaCol, col.New(6))

	m.AddRow(34,
		col.New(6).Add(
			text.New(companyName, props.Text{Style: fontstyle.Bold}),
			text.New(settings.CompanyAddress, props.Text{Top: 5}),
			text.New(settings.CompanyEmail, props.Text{Top: 18}),
			text.New(settings.CompanyPhone, props.Text{Top: 22}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(inv.TenantName, props.Text{Top: 5}),
			text.New(inv.PropertyAddress, props.Text{Top: 9}),
			text.New(inv.TenantEmail, props.Text{Top: 22}),
		),
	)

	headline := money(inv.Outstanding()) + " due " + inv.DueDate.Format(displayDate)
	if paid {
		headline = money(inv.AmountPaid) + " paid"
		if inv.PaidAt != nil {
			headline += " on " + inv.PaidAt.Format(displayDate)
		}
	}
	m.AddRow(15,
		text.NewCol(12, headline, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range inv.LineItems {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	totals := [][2]string{
		{"Subtotal", money(inv.Amount)},
		{"Tax", money(inv.TaxAmount)},
		{"Total", money(inv.TotalAmount)},
		{"Amount paid", money(inv.AmountPaid)},
		{"Amount due", money(inv.Outstanding())},
	}
	for i, row := range totals {
		style := fontstyle.Normal
		if i == len(totals)-1 {
			style = fontstyle.Bold
		}
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, row[0], props.Text{Size: 9, Style: style}),
			text.NewCol(2, row[1], props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	var footer []string
	for _, s := range []string{settings.PaymentTerms, settings.PaymentInstructions, settings.FooterText} {
		if strings.TrimSpace(s) != "" {
			footer = append(footer, s)
		}
	}
	for _, s := range footer {
		m.AddRow(12, text.NewCol(12, s, props.Text{Size: 9, Top: 4}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
