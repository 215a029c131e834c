package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
)

// GetPaymentSettings returns a company's payment settings, or the defaults
// if it never saved any.
func GetPaymentSettings(ctx context.Context, db *sqlx.DB, companyID int64) (*model.PaymentSettings, error) {
	return paymentSettings(ctx, db, companyID)
}

func paymentSettings(ctx context.Context, q queryer, companyID int64) (*model.PaymentSettings, error) {
	s := &model.PaymentSettings{}
	err := get(ctx, q, s, `SELECT * FROM company_payment_settings WHERE company_id = ?`, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		d := model.DefaultPaymentSettings(companyID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting payment settings: %w", err)
	}
	return s, nil
}

// SavePaymentSettings stores a company's payment settings.
func SavePaymentSettings(ctx context.Context, db *sqlx.DB, s model.PaymentSettings) (*model.PaymentSettings, error) {
	if s.MinOrderAmount.IsNegative() {
		return nil, Invalid("min_order_amount must not be negative")
	}

	_, err := exec(ctx, db,
		`INSERT INTO company_payment_settings (company_id, cash_on_delivery, bank_transfer, card, min_order_amount)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (company_id) DO UPDATE SET
		     cash_on_delivery = excluded.cash_on_delivery,
		     bank_transfer = excluded.bank_transfer,
		     card = excluded.card,
		     min_order_amount = excluded.min_order_amount`,
		s.CompanyID, s.CashOnDelivery, s.BankTransfer, s.Card, s.MinOrderAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("saving payment settings: %w", err)
	}
	return GetPaymentSettings(ctx, db, s.CompanyID)
}
