package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/rentledger/internal/observability/context"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = orgcontext.WithOrgID(ctx, snowflake.ID(42))
	ctx = orgcontext.WithActorID(ctx, "user-7")
	ctx = obscontext.WithRunID(ctx, "01HZXRUN")

	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["org_id"])
	assert.Equal(t, "user-7", fields["actor_id"])
	assert.Equal(t, "01HZXRUN", fields["run_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestRedactCoreMasksRecipientFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(NewRedactCore(core, DefaultRedactKeys)).With(zap.String("sent_to", "bob@example.com"))

	log.Info("invoice sent",
		zap.String("recipient", "alice@example.com"),
		zap.Strings("email", []string{"carol@example.com"}),
		zap.String("invoice_number", "INV-202403-001"),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "b****@example.com", fields["sent_to"])
	assert.Equal(t, "a****@example.com", fields["recipient"])
	assert.Equal(t, redactedValue, fields["email"])
	assert.Equal(t, "INV-202403-001", fields["invoice_number"])
}

func TestNewRedactCoreWithoutKeysIsPassThrough(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	assert.Equal(t, core, NewRedactCore(core, []string{" "}))
}

func TestGinMiddlewareEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinMiddleware(MiddlewareConfig{}))

	var seen string
	engine.GET("/ping", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("  select * from invoices"))
	assert.Equal(t, "UPDATE", operationFromSQL("UPDATE invoices SET status = ?"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "invoices", tableFromSQL(`SELECT * FROM "invoices" WHERE organization_id = 1`))
	assert.Equal(t, "invoice_settings", tableFromSQL("INSERT INTO `invoice_settings` (`id`) VALUES (1)"))
	assert.Equal(t, "audit_logs", tableFromSQL(`UPDATE audit_logs SET action = 'x'`))
	assert.Equal(t, "invoice_recipients", tableFromSQL(`DELETE FROM "invoice_recipients" WHERE id = 3`))
	assert.Equal(t, "", tableFromSQL("SELECT 1"))
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("silent"))
	assert.Equal(t, gormlogger.Info, ParseGormLevel(" INFO "))
	assert.Equal(t, gormlogger.Error, ParseGormLevel("error"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel("bogus"))
}

func TestGormLoggerLogsSlowQueriesWithTable(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 100 * time.Millisecond, IgnoreRecordNotFound: true})

	begin := time.Now().Add(-time.Second)
	gl.Trace(context.Background(), begin, func() (string, int64) {
		return `SELECT * FROM "invoices"`, 3
	}, nil)
	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "invoices"`, 0
	}, gormlogger.ErrRecordNotFound)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "invoices", entry.ContextMap()["table"])
	assert.Equal(t, int64(3), entry.ContextMap()["rows_affected"])
}

func TestGinMiddlewareTagsResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	engine := gin.New()
	engine.Use(GinMiddleware(MiddlewareConfig{}))
	engine.GET("/api/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil))
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "invoice", fields["resource_type"])
	assert.Equal(t, "42", fields["resource_id"])
	assert.Equal(t, zap.DebugLevel, logs.All()[1].Level)
}
