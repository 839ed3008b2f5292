package context

import "strings"

// RouteResource names the ledger resource a gin route template addresses,
// e.g. "/api/invoices/:id/send" is "invoice". Unknown routes return "".
func RouteResource(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	if len(segments) < 2 || segments[0] != "api" {
		return ""
	}
	switch segments[1] {
	case "invoices":
		return "invoice"
	case "tenants", "tenant-summaries":
		return "tenant"
	case "recipients":
		return "recipient"
	case "invoice-settings":
		return "invoice_settings"
	case "audit-logs":
		return "audit_log"
	default:
		return ""
	}
}
