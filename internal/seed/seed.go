package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	tenantdomain "github.com/smallbiznis/rentledger/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	demoCompanyName     = "Harbour Lettings"
	demoCompanyEmail    = "accounts@harbour-lettings.example"
	demoPropertyAddress = "12 Analytical Row, London"
	demoTenantName      = "Ada Lovelace"
	demoTenantEmail     = "ada@example.com"
	demoUnitLabel       = "Flat 1"
	demoRentDueDay      = 1
)

var demoMonthlyRent = decimal.NewFromInt(1250)

// Result reports what EnsureDemoData created or found.
type Result struct {
	PropertyID snowflake.ID
	TenantID   snowflake.ID
	Created    bool
}

// EnsureDemoData seeds one property, an active tenant and invoice settings
// for orgID. Running it again returns the existing tenant unchanged.
func EnsureDemoData(ctx context.Context, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) (Result, error) {
	if db == nil {
		return Result{}, errors.New("seed database handle is required")
	}
	if node == nil {
		return Result{}, errors.New("seed id generator is required")
	}
	if orgID == 0 {
		return Result{}, errors.New("seed organization is required")
	}

	var result Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant tenantdomain.Tenant
		err := tx.Where("organization_id = ? AND email = ?", orgID, demoTenantEmail).First(&tenant).Error
		if err == nil {
			result.TenantID = tenant.ID
			if tenant.PropertyID != nil {
				result.PropertyID = *tenant.PropertyID
			}
			return ensureSettingsTx(tx, node, orgID, now)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		property, err := createPropertyTx(tx, node, orgID, now)
		if err != nil {
			return err
		}
		tenant, err = createTenantTx(tx, node, orgID, property.ID, now)
		if err != nil {
			return err
		}
		if err := tx.Create(&tenantdomain.UnitTenant{
			ID:         node.Generate(),
			OrgID:      orgID,
			TenantID:   tenant.ID,
			PropertyID: property.ID,
			UnitLabel:  demoUnitLabel,
			CreatedAt:  now,
		}).Error; err != nil {
			return err
		}

		result = Result{PropertyID: property.ID, TenantID: tenant.ID, Created: true}
		return ensureSettingsTx(tx, node, orgID, now)
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func createPropertyTx(tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) (tenantdomain.Property, error) {
	property := tenantdomain.Property{
		ID:        node.Generate(),
		OrgID:     orgID,
		Address:   demoPropertyAddress,
		CreatedAt: now,
	}
	if err := tx.Create(&property).Error; err != nil {
		return tenantdomain.Property{}, err
	}
	return property, nil
}

// createTenantTx starts the lease on the first of the current month so a
// regenerated schedule covers the months ahead.
func createTenantTx(tx *gorm.DB, node *snowflake.Node, orgID, propertyID snowflake.ID, now time.Time) (tenantdomain.Tenant, error) {
	today := now.UTC()
	leaseStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	leaseEnd := leaseStart.AddDate(1, 0, -1)
	tenant := tenantdomain.Tenant{
		ID:          node.Generate(),
		OrgID:       orgID,
		Name:        demoTenantName,
		Email:       demoTenantEmail,
		PropertyID:  &propertyID,
		LeaseStart:  &leaseStart,
		LeaseEnd:    &leaseEnd,
		MonthlyRent: demoMonthlyRent,
		RentDueDay:  demoRentDueDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(&tenant).Error; err != nil {
		return tenantdomain.Tenant{}, err
	}
	return tenant, nil
}

func ensureSettingsTx(tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, now time.Time) error {
	var count int64
	if err := tx.Model(&settingsdomain.InvoiceSettings{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	settings := settingsdomain.Defaults(orgID, "")
	settings.ID = node.Generate()
	settings.CompanyName = demoCompanyName
	settings.CompanyEmail = demoCompanyEmail
	settings.PaymentTerms = "Due on receipt"
	settings.CreatedAt = now
	settings.UpdatedAt = now
	return tx.Create(&settings).Error
}
