package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	TemplateInvoice  = "invoice"
	TemplateReminder = "reminder"
)

// TemplateData is the view model shared by the invoice email templates.
type TemplateData struct {
	TenantName          string
	CompanyName         string
	InvoiceNumber       string
	Period              string
	DueDate             string
	AmountDue           string
	PaymentInstructions string
	FooterText          string
}

// RenderTemplate executes the named template into an HTML body.
func RenderTemplate(name string, data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return body.String(), nil
}
