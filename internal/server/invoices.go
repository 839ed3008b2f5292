package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
)

type lineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type createInvoiceRequest struct {
	TenantID          string            `json:"tenant_id" binding:"required"`
	PeriodStart       string            `json:"period_start" binding:"required"`
	PeriodEnd         string            `json:"period_end" binding:"required"`
	InvoiceDate       string            `json:"invoice_date"`
	DueDate           string            `json:"due_date"`
	Amount            decimal.Decimal   `json:"amount"`
	TaxAmount         decimal.Decimal   `json:"tax_amount"`
	LineItems         []lineItemRequest `json:"line_items"`
	Notes             string            `json:"notes"`
	SubmitForApproval bool              `json:"submit_for_approval"`
}

type recipientsRequest struct {
	Recipients []string `json:"recipients"`
}

type recordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Query("tenant_id"))
	if _, err := parseOptionalSnowflakeID(tenantID); err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_tenant_id", "invalid tenant id"))
		return
	}

	items, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		TenantID: tenantID,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		AbortWithError(c, newValidationError("period_start", "invalid_date", "invalid period start"))
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		AbortWithError(c, newValidationError("period_end", "invalid_date", "invalid period end"))
		return
	}
	invoiceDate, err := parseOptionalDate(req.InvoiceDate)
	if err != nil {
		AbortWithError(c, newValidationError("invoice_date", "invalid_date", "invalid invoice date"))
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_date", "invalid due date"))
		return
	}

	lineItems := make([]invoicedomain.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		lineItems = append(lineItems, invoicedomain.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		})
	}

	item, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		TenantID:          req.TenantID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		Amount:            req.Amount,
		TaxAmount:         req.TaxAmount,
		LineItems:         lineItems,
		Notes:             req.Notes,
		SubmitForApproval: req.SubmitForApproval,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ApproveInvoice(c *gin.Context) {
	item, err := s.invoiceSvc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) SendInvoice(c *gin.Context) {
	var req recipientsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.SendInvoice(c.Request.Context(), c.Param("id"), req.Recipients)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	var req recipientsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.MarkAsSent(c.Request.Context(), c.Param("id"), req.Recipients)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ToggleInvoicePaid(c *gin.Context) {
	item, err := s.invoiceSvc.TogglePaidStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) RecordInvoicePayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.RecordPayment(c.Request.Context(), c.Param("id"), invoicedomain.RecordPaymentRequest{
		Amount:    req.Amount,
		Method:    invoicedomain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method))),
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	item, err := s.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) SendInvoiceReminder(c *gin.Context) {
	item, err := s.invoiceSvc.SendReminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	rendered, err := s.invoiceSvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+rendered.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", rendered.Content)
}
