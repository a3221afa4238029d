package config

import (
	"fmt"
	"sort"
	"strings"
)

// RegionConfig holds one region's merchant credential pair and settlement
// currency. A region is configured iff both KeyID and KeySecret are
// non-empty. The secret must never be logged or echoed in any response.
type RegionConfig struct {
	Code      string
	KeyID     string
	KeySecret string
	Currency  string
}

// Configured reports whether the credential pair is complete.
func (c RegionConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// ConfigError reports an unknown or incompletely configured region.
type ConfigError struct {
	Region string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("region %q is unknown or not configured", e.Region)
}

// regionCurrencies maps each supported region to its settlement currency.
var regionCurrencies = map[string]string{
	"IN": "INR",
	"AE": "AED",
	"US": "USD",
	"GB": "GBP",
	"SG": "SGD",
}

// Regions is the immutable region credential table, built once at startup.
// It is read-only for the process lifetime and safe for concurrent use
// without synchronization.
type Regions struct {
	table map[string]RegionConfig
}

// LoadRegions builds the region table from RAZORPAY_<CC>_KEY_ID and
// RAZORPAY_<CC>_KEY_SECRET environment pairs. A missing pair marks the
// region unconfigured but does not prevent startup.
func LoadRegions() *Regions {
	table := make(map[string]RegionConfig, len(regionCurrencies))
	for code, currency := range regionCurrencies {
		table[code] = RegionConfig{
			Code:      code,
			KeyID:     GetEnv("RAZORPAY_"+code+"_KEY_ID", ""),
			KeySecret: GetEnv("RAZORPAY_"+code+"_KEY_SECRET", ""),
			Currency:  currency,
		}
	}
	return &Regions{table: table}
}

// NewRegions builds a region table from explicit configs.
func NewRegions(configs ...RegionConfig) *Regions {
	table := make(map[string]RegionConfig, len(configs))
	for _, cfg := range configs {
		if cfg.Currency == "" {
			cfg.Currency = regionCurrencies[strings.ToUpper(cfg.Code)]
		}
		table[strings.ToUpper(cfg.Code)] = cfg
	}
	return &Regions{table: table}
}

// Resolve returns the credential config for a region code. It succeeds only
// if the region is known and both identifier and secret are present.
func (r *Regions) Resolve(code string) (RegionConfig, error) {
	cfg, ok := r.table[strings.ToUpper(code)]
	if !ok || !cfg.Configured() {
		return RegionConfig{}, &ConfigError{Region: code}
	}
	return cfg, nil
}

// Codes returns the supported region codes in sorted order.
func (r *Regions) Codes() []string {
	codes := make([]string, 0, len(r.table))
	for code := range r.table {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RegionStatus is the health-check view of a region: configuration state and
// currency only, never credentials.
type RegionStatus struct {
	Configured bool   `json:"configured"`
	Currency   string `json:"currency"`
}

// Status returns the per-region configuration state for the health endpoint.
func (r *Regions) Status() map[string]RegionStatus {
	status := make(map[string]RegionStatus, len(r.table))
	for code, cfg := range r.table {
		status[code] = RegionStatus{
			Configured: cfg.Configured(),
			Currency:   cfg.Currency,
		}
	}
	return status
}
