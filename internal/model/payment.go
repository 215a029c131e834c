package model

import "github.com/shopspring/decimal"

// Payment methods.
const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentBankTransfer   = "bank_transfer"
	PaymentCard           = "card"
)

// ValidPaymentMethod reports whether method is a known payment method.
func ValidPaymentMethod(method string) bool {
	return method == PaymentCashOnDelivery || method == PaymentBankTransfer || method == PaymentCard
}

// PaymentSettings lists which payment methods a company accepts and the
// smallest order subtotal it ships.
type PaymentSettings struct {
	CompanyID      int64           `db:"company_id" json:"company_id"`
	CashOnDelivery bool            `db:"cash_on_delivery" json:"cash_on_delivery"`
	BankTransfer   bool            `db:"bank_transfer" json:"bank_transfer"`
	Card           bool            `db:"card" json:"card"`
	MinOrderAmount decimal.Decimal `db:"min_order_amount" json:"min_order_amount"`
}

// DefaultPaymentSettings applies to companies that never saved settings.
func DefaultPaymentSettings(companyID int64) PaymentSettings {
	return PaymentSettings{
		CompanyID:      companyID,
		CashOnDelivery: true,
		BankTransfer:   true,
		Card:           true,
		MinOrderAmount: decimal.Zero,
	}
}

// Enabled reports whether the method is accepted.
func (s *PaymentSettings) Enabled(method string) bool {
	switch method {
	case PaymentCashOnDelivery:
		return s.CashOnDelivery
	case PaymentBankTransfer:
		return s.BankTransfer
	case PaymentCard:
		return s.Card
	}
	return false
}
