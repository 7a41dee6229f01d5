package ordersdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	syncdomain "github.com/stocklink/backend/internal/domain/sync"
	"github.com/stocklink/backend/internal/infrastructure/config"
)

// SourceName identifies the orders database in failure reports
const SourceName = "orders-db"

// Item is the read-only view of the order-management item table. Only the
// columns the price sync needs are mapped.
type Item struct {
	UPCBarcode string          `gorm:"column:upc_barcode"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// Client reads item prices from the external order-management database. It
// implements the synchronization price source interface.
type Client struct {
	db *gorm.DB
}

// Open connects to the orders database and returns a client
func Open(cfg *config.OrdersDBConfig) (*Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncdomain.ErrSourceUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	return NewClient(db), nil
}

// NewClient wraps an existing database handle
func NewClient(db *gorm.DB) *Client {
	return &Client{db: db}
}

// Name identifies the source in failure reports
func (c *Client) Name() string {
	return SourceName
}

// QueryPrice looks up the unit price for one barcode. A missing row is not an
// error; it reports found=false so the caller can record the barcode as absent.
func (c *Client) QueryPrice(ctx context.Context, sku string) (decimal.Decimal, bool, error) {
	var item Item
	err := c.db.WithContext(ctx).
		Select("upc_barcode", "unit_price").
		Where("upc_barcode = ?", sku).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %v", syncdomain.ErrSourceUnavailable, err)
	}
	return item.UnitPrice, true, nil
}

// TestConnection verifies the database is reachable
func (c *Client) TestConnection(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", syncdomain.ErrSourceUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ensure Client implements the sync price source interface
var _ syncdomain.PriceSource = (*Client)(nil)
