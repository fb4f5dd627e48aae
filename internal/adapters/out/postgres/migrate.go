package postgres

import (
	"parcelbot/internal/adapters/out/postgres/orderrepo"
	"parcelbot/internal/adapters/out/postgres/paymentrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the orders and payments tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&orderrepo.OrderDTO{}, &paymentrepo.PaymentDTO{})
}
