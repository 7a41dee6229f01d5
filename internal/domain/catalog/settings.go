package catalog

import (
	"strings"

	"github.com/stocklink/backend/internal/domain/shared"
)

const (
	// MaxStorefronts is the number of storefront credential slots kept in settings.
	MaxStorefronts = 6

	// DefaultSalesLookbackDays is used when no lookback window is configured.
	DefaultSalesLookbackDays = 30

	// MaxSalesLookbackDays bounds the configurable sales lookback window.
	MaxSalesLookbackDays = 365
)

// StoreCredential holds the connection details for one storefront.
type StoreCredential struct {
	URL         string `json:"url"`
	AccessToken string `json:"access_token"`
	LocationID  string `json:"location_id"`
}

// Configured reports whether the slot has enough detail to query the store.
func (c StoreCredential) Configured() bool {
	return c.URL != "" && c.AccessToken != ""
}

// Settings is the single-row application configuration record. Storefront
// credentials live here (they are operator-editable at runtime); the
// order-management database connection comes from static configuration.
type Settings struct {
	ID uint `gorm:"primaryKey" json:"-"`

	Store1 StoreCredential `gorm:"embedded;embeddedPrefix:store1_" json:"store1"`
	Store2 StoreCredential `gorm:"embedded;embeddedPrefix:store2_" json:"store2"`
	Store3 StoreCredential `gorm:"embedded;embeddedPrefix:store3_" json:"store3"`
	Store4 StoreCredential `gorm:"embedded;embeddedPrefix:store4_" json:"store4"`
	Store5 StoreCredential `gorm:"embedded;embeddedPrefix:store5_" json:"store5"`
	Store6 StoreCredential `gorm:"embedded;embeddedPrefix:store6_" json:"store6"`

	ExcludedSKUs     string `json:"excluded_skus"`
	SalesOrderTag    string `json:"sales_order_tag"`
	SalesLookbackDay int    `gorm:"column:sales_lookback_days" json:"sales_lookback_days"`
}

// TableName returns the table name for GORM
func (Settings) TableName() string {
	return "settings"
}

// StoreSlots returns all credential slots in priority order, configured or not.
func (s *Settings) StoreSlots() []StoreCredential {
	return []StoreCredential{s.Store1, s.Store2, s.Store3, s.Store4, s.Store5, s.Store6}
}

// ConfiguredStores returns the configured storefront credentials in priority
// order (slot 1 is the primary store).
func (s *Settings) ConfiguredStores() []StoreCredential {
	stores := make([]StoreCredential, 0, MaxStorefronts)
	for _, c := range s.StoreSlots() {
		if c.Configured() {
			stores = append(stores, c)
		}
	}
	return stores
}

// PrimaryStore returns the first configured storefront credential.
func (s *Settings) PrimaryStore() (StoreCredential, error) {
	stores := s.ConfiguredStores()
	if len(stores) == 0 {
		return StoreCredential{}, shared.ErrNotConfigured
	}
	return stores[0], nil
}

// LookbackDays returns the sales lookback window clamped to the valid range.
func (s *Settings) LookbackDays() int {
	if s.SalesLookbackDay < 1 || s.SalesLookbackDay > MaxSalesLookbackDays {
		return DefaultSalesLookbackDays
	}
	return s.SalesLookbackDay
}

// ExcludedPrefixes parses the excluded-SKU setting into a list of prefixes.
// The raw value is comma or newline separated, matching the import format.
func (s *Settings) ExcludedPrefixes() []string {
	raw := strings.ReplaceAll(s.ExcludedSKUs, ",", "\n")
	var prefixes []string
	for _, part := range strings.Split(raw, "\n") {
		if p := strings.TrimSpace(part); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}
