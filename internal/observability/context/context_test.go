package context

import (
	stdcontext "context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDs(t *testing.T) {
	ctx := WithRequestID(stdcontext.Background(), " req-1 ")
	ctx = WithRunID(ctx, "01HZX")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "01HZX", RunIDFromContext(ctx))
	assert.Empty(t, RunIDFromContext(stdcontext.Background()))
}

func TestRouteResource(t *testing.T) {
	cases := map[string]string{
		"/api/invoices/:id/send":             "invoice",
		"/api/tenants/:id/invoices/schedule": "tenant",
		"/api/tenant-summaries":              "tenant",
		"/api/recipients/:id/primary":        "recipient",
		"/api/invoice-settings":              "invoice_settings",
		"/api/audit-logs":                    "audit_log",
		"/health":                            "",
		"":                                   "",
	}
	for route, want := range cases {
		assert.Equal(t, want, RouteResource(route), route)
	}
}
