package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	recipientdomain "github.com/smallbiznis/rentledger/internal/recipient/domain"
)

type generateScheduleRequest struct {
	PropertyID      string          `json:"property_id"`
	TenantName      string          `json:"tenant_name"`
	TenantEmail     string          `json:"tenant_email"`
	PropertyAddress string          `json:"property_address"`
	LeaseStart      string          `json:"lease_start" binding:"required"`
	LeaseEnd        string          `json:"lease_end" binding:"required"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	RentDueDay      int             `json:"rent_due_day"`
}

type addRecipientRequest struct {
	Email     string `json:"email" binding:"required"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
}

func (s *Server) GenerateSchedule(c *gin.Context) {
	var req generateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	leaseStart, err := parseDate(req.LeaseStart)
	if err != nil {
		AbortWithError(c, newValidationError("lease_start", "invalid_date", "invalid lease start"))
		return
	}
	leaseEnd, err := parseDate(req.LeaseEnd)
	if err != nil {
		AbortWithError(c, newValidationError("lease_end", "invalid_date", "invalid lease end"))
		return
	}

	result, err := s.invoiceSvc.GenerateSchedule(c.Request.Context(), invoicedomain.GenerateScheduleRequest{
		TenantID:        c.Param("id"),
		PropertyID:      req.PropertyID,
		TenantName:      req.TenantName,
		TenantEmail:     req.TenantEmail,
		PropertyAddress: req.PropertyAddress,
		LeaseStart:      leaseStart,
		LeaseEnd:        leaseEnd,
		MonthlyRent:     req.MonthlyRent,
		RentDueDay:      req.RentDueDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(scheduleStatus(result), gin.H{"data": result})
}

func (s *Server) RegenerateSchedule(c *gin.Context) {
	result, err := s.invoiceSvc.RegenerateForTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(scheduleStatus(result), gin.H{"data": result})
}

// scheduleStatus reports partial generation as 207 so callers notice skipped periods.
func scheduleStatus(result invoicedomain.GenerateScheduleResult) int {
	if len(result.FailedPeriods) > 0 {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}

func (s *Server) ListTenantSummaries(c *gin.Context) {
	summaries, err := s.invoiceSvc.ListTenantSummaries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) ListRecipients(c *gin.Context) {
	items, err := s.recipientSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) AddRecipient(c *gin.Context) {
	var req addRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.recipientSvc.Add(c.Request.Context(), recipientdomain.AddRequest{
		TenantID:  c.Param("id"),
		Email:     req.Email,
		Name:      req.Name,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) SetPrimaryRecipient(c *gin.Context) {
	item, err := s.recipientSvc.SetPrimary(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) RemoveRecipient(c *gin.Context) {
	if err := s.recipientSvc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetInvoiceSettings(c *gin.Context) {
	settings, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) UpsertInvoiceSettings(c *gin.Context) {
	var req settingsdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.settingsSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}
