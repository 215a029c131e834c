package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/pricing"
)

// CreateDiscount creates a discount. A company may only discount itself or
// its own products and variants; anything else is reported as missing.
func CreateDiscount(ctx context.Context, db *sqlx.DB, actor model.Actor, d model.Discount) (*model.Discount, error) {
	if err := d.Validate(); err != nil {
		return nil, Invalid(err.Error())
	}
	if err := checkDiscountTarget(ctx, db, actor, &d); err != nil {
		return nil, err
	}

	id, err := insertID(ctx, db,
		`INSERT INTO discounts (percentage, start_date, end_date, is_active, variant_id, product_id, company_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Percentage, d.StartDate.UTC(), d.EndDate.UTC(), d.Active, d.VariantID, d.ProductID, d.CompanyID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating discount: %w", err)
	}
	return GetDiscount(ctx, db, id)
}

// GetDiscount returns a discount by ID.
func GetDiscount(ctx context.Context, db *sqlx.DB, id int64) (*model.Discount, error) {
	d := &model.Discount{}
	err := get(ctx, db, d, `SELECT * FROM discounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting discount: %w", err)
	}
	return d, nil
}

// ListDiscounts returns every discount an admin sees, or the discounts that
// touch one company's catalog.
func ListDiscounts(ctx context.Context, db *sqlx.DB, companyID *int64) ([]model.Discount, error) {
	query := `SELECT * FROM discounts`
	var args []any
	if companyID != nil {
		query += ` WHERE company_id = ?
		    OR product_id IN (SELECT id FROM products WHERE company_id = ?)
		    OR variant_id IN (SELECT v.id FROM variants v JOIN products p ON p.id = v.product_id WHERE p.company_id = ?)`
		args = append(args, *companyID, *companyID, *companyID)
	}
	query += ` ORDER BY id`

	discounts := []model.Discount{}
	if err := sel(ctx, db, &discounts, query, args...); err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return discounts, nil
}

// SetDiscountActive switches a discount on or off.
func SetDiscountActive(ctx context.Context, db *sqlx.DB, actor model.Actor, id int64, active bool) (*model.Discount, error) {
	d, err := GetDiscount(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, notFound("discount not found")
	}
	if err := checkDiscountTarget(ctx, db, actor, d); err != nil {
		return nil, notFound("discount not found")
	}

	if _, err := exec(ctx, db, `UPDATE discounts SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return nil, fmt.Errorf("updating discount: %w", err)
	}
	return GetDiscount(ctx, db, id)
}

// ResolveDiscount loads the discounts that could apply to ref and prices the
// line at now. The result is never cached.
func ResolveDiscount(ctx context.Context, q queryer, ref pricing.Ref, price decimal.Decimal, now time.Time) (decimal.Decimal, *model.AppliedDiscount, error) {
	candidates, err := discountCandidates(ctx, q, ref)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	discounted, applied := pricing.Resolve(candidates, ref, price, now)
	return discounted, applied, nil
}

func discountCandidates(ctx context.Context, q queryer, ref pricing.Ref) ([]model.Discount, error) {
	var companyID int64
	if ref.CompanyID != nil {
		companyID = *ref.CompanyID
	}

	var candidates []model.Discount
	err := sel(ctx, q, &candidates,
		`SELECT * FROM discounts
		 WHERE is_active AND (variant_id = ? OR product_id = ? OR company_id = ?)
		 ORDER BY id`,
		ref.VariantID, ref.ProductID, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading discounts: %w", err)
	}
	return candidates, nil
}

func pricingRef(productID, variantID int64, companyID *int64) pricing.Ref {
	return pricing.Ref{ProductID: productID, VariantID: variantID, CompanyID: companyID}
}

// checkDiscountTarget verifies the scoped entity exists and belongs to the actor.
func checkDiscountTarget(ctx context.Context, q queryer, actor model.Actor, d *model.Discount) error {
	switch actor.Kind {
	case model.ActorAdmin, model.ActorCompany:
	default:
		return notFound("discount target not found")
	}

	switch d.Scope() {
	case model.ScopeCompany:
		if actor.Kind == model.ActorCompany && *d.CompanyID != actor.ID {
			return notFound("company not found")
		}
		ok, err := actorExists(ctx, q, model.Actor{Kind: model.ActorCompany, ID: *d.CompanyID})
		if err != nil {
			return err
		}
		if !ok {
			return notFound("company not found")
		}
		return nil
	case model.ScopeProduct:
		return checkProductOwner(ctx, q, actor, *d.ProductID)
	case model.ScopeVariant:
		var productID int64
		err := get(ctx, q, &productID, `SELECT product_id FROM variants WHERE id = ?`, *d.VariantID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("variant not found")
		}
		if err != nil {
			return fmt.Errorf("getting variant: %w", err)
		}
		if err := checkProductOwner(ctx, q, actor, productID); err != nil {
			return notFound("variant not found")
		}
		return nil
	}
	return Invalid("invalid discount scope")
}
