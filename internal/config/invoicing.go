package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig holds organization-independent invoicing defaults.
type InvoicingConfig struct {
	DefaultPrefix         string `mapstructure:"defaultPrefix"`
	DefaultRentDueDay     int    `mapstructure:"defaultRentDueDay"`
	ScheduleHorizonMonths int    `mapstructure:"scheduleHorizonMonths"`
	// ApplyInvoiceDateOffset dates generated invoices invoice_date_days_before_rent
	// days before the period start instead of on it.
	ApplyInvoiceDateOffset bool   `mapstructure:"applyInvoiceDateOffset"`
	Currency               string `mapstructure:"currency"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		DefaultPrefix:          "INV",
		DefaultRentDueDay:      1,
		ScheduleHorizonMonths:  12,
		ApplyInvoiceDateOffset: false,
		Currency:               "GBP",
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfigHolder returns a holder that never reloads.
func NewStaticInvoicingConfigHolder(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder(appCfg Config) (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	for _, path := range appCfg.InvoicingConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("RENTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.defaultPrefix", defaults.DefaultPrefix)
	v.SetDefault("invoicing.defaultRentDueDay", defaults.DefaultRentDueDay)
	v.SetDefault("invoicing.scheduleHorizonMonths", defaults.ScheduleHorizonMonths)
	v.SetDefault("invoicing.applyInvoiceDateOffset", defaults.ApplyInvoiceDateOffset)
	v.SetDefault("invoicing.currency", defaults.Currency)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInvoicingConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	if h == nil {
		return DefaultInvoicingConfig()
	}
	cfg, ok := h.current.Load().(InvoicingConfig)
	if !ok {
		return DefaultInvoicingConfig()
	}
	return cfg
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if strings.TrimSpace(cfg.DefaultPrefix) == "" {
		return errors.New("invoicing.defaultPrefix cannot be empty")
	}
	if cfg.DefaultRentDueDay < 1 || cfg.DefaultRentDueDay > 31 {
		return errors.New("invoicing.defaultRentDueDay must be between 1 and 31")
	}
	if cfg.ScheduleHorizonMonths <= 0 {
		return errors.New("invoicing.scheduleHorizonMonths must be positive")
	}
	return nil
}
