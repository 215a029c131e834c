package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
)

// ProductInput holds the fields of a new product.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Active      *bool  `json:"is_active"`
	CompanyID   *int64 `json:"company_id"`
	PartnerID   *int64 `json:"partner_id"`
}

// ProductFlags holds the toggles of a product. Nil fields are left unchanged.
type ProductFlags struct {
	Active     *bool `json:"is_active"`
	OutOfStock *bool `json:"out_of_stock"`
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	ActiveOnly bool
	CompanyID  *int64
	PartnerID  *int64
}

// VariantInput holds the fields of a new variant.
type VariantInput struct {
	Name      string `json:"name"`
	Inventory int    `json:"inventory"`
	model.VariantPricing
}

// CreateProduct creates a product. Companies and partners always own what
// they create; an admin may assign the product to any company or partner.
func CreateProduct(ctx context.Context, db *sqlx.DB, actor model.Actor, in ProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, Invalid("name is required")
	}

	switch actor.Kind {
	case model.ActorCompany:
		in.CompanyID, in.PartnerID = &actor.ID, nil
	case model.ActorPartner:
		in.CompanyID, in.PartnerID = nil, &actor.ID
	case model.ActorAdmin:
		if in.CompanyID != nil {
			if ok, err := actorExists(ctx, db, model.Actor{Kind: model.ActorCompany, ID: *in.CompanyID}); err != nil {
				return nil, err
			} else if !ok {
				return nil, notFound("company not found")
			}
		}
		if in.PartnerID != nil {
			if ok, err := actorExists(ctx, db, model.Actor{Kind: model.ActorPartner, ID: *in.PartnerID}); err != nil {
				return nil, err
			} else if !ok {
				return nil, notFound("partner not found")
			}
		}
	default:
		return nil, notFound("product not found")
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	id, err := insertID(ctx, db,
		`INSERT INTO products (name, description, image_url, is_active, company_id, partner_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.ImageURL, active, in.CompanyID, in.PartnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return GetProduct(ctx, db, id, time.Now())
}

// GetProduct returns a product with its variants, each carrying the discount
// live at now. Returns nil if the product does not exist.
func GetProduct(ctx context.Context, db *sqlx.DB, id int64, now time.Time) (*model.Product, error) {
	p := &model.Product{}
	err := get(ctx, db, p, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}

	p.Variants = []model.Variant{}
	if err := sel(ctx, db, &p.Variants,
		`SELECT * FROM variants WHERE product_id = ? ORDER BY id`, id,
	); err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		_, v.Discount, err = ResolveDiscount(ctx, db, pricingRef(p.ID, v.ID, p.CompanyID), v.CustomerPrice, now)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ListProducts returns products matching filter, newest first.
func ListProducts(ctx context.Context, db *sqlx.DB, filter ProductFilter) ([]model.Product, error) {
	query := `SELECT * FROM products WHERE 1=1`
	var args []any

	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	if filter.CompanyID != nil {
		query += ` AND company_id = ?`
		args = append(args, *filter.CompanyID)
	}
	if filter.PartnerID != nil {
		query += ` AND partner_id = ?`
		args = append(args, *filter.PartnerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	products := []model.Product{}
	if err := sel(ctx, db, &products, query, args...); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// UpdateProductFlags toggles the active and out-of-stock flags of a product
// the actor owns.
func UpdateProductFlags(ctx context.Context, db *sqlx.DB, actor model.Actor, id int64, flags ProductFlags) (*model.Product, error) {
	if err := checkProductOwner(ctx, db, actor, id); err != nil {
		return nil, err
	}

	_, err := exec(ctx, db,
		`UPDATE products
		 SET is_active = COALESCE(?, is_active),
		     out_of_stock = COALESCE(?, out_of_stock),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		flags.Active, flags.OutOfStock, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	return GetProduct(ctx, db, id, time.Now())
}

// AddVariant adds a variant to a product the actor owns.
func AddVariant(ctx context.Context, db *sqlx.DB, actor model.Actor, productID int64, in VariantInput) (*model.Variant, error) {
	if in.Name == "" {
		return nil, Invalid("name is required")
	}
	if in.Inventory < 0 {
		return nil, Invalid("inventory must not be negative")
	}
	if err := in.VariantPricing.Validate(); err != nil {
		return nil, Invalid(err.Error())
	}
	if err := checkProductOwner(ctx, db, actor, productID); err != nil {
		return nil, err
	}

	id, err := insertID(ctx, db,
		`INSERT INTO variants (product_id, name, customer_price, company_price, dealer_price, inventory)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		productID, in.Name, in.CustomerPrice, in.CompanyPrice, in.DealerPrice, in.Inventory,
	)
	if err != nil {
		return nil, fmt.Errorf("creating variant: %w", err)
	}
	return GetVariant(ctx, db, id)
}

// GetVariant returns a variant by ID.
func GetVariant(ctx context.Context, db *sqlx.DB, id int64) (*model.Variant, error) {
	v := &model.Variant{}
	err := get(ctx, db, v, `SELECT * FROM variants WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting variant: %w", err)
	}
	return v, nil
}

// UpdateVariantPricing replaces the prices of a variant whose product the
// actor owns. Variants of someone else's product are reported as missing.
func UpdateVariantPricing(ctx context.Context, db *sqlx.DB, actor model.Actor, variantID int64, p model.VariantPricing) (*model.Variant, error) {
	if err := p.Validate(); err != nil {
		return nil, Invalid(err.Error())
	}

	var productID int64
	err := get(ctx, db, &productID, `SELECT product_id FROM variants WHERE id = ?`, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("variant not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting variant: %w", err)
	}
	if err := checkProductOwner(ctx, db, actor, productID); err != nil {
		return nil, notFound("variant not found")
	}

	_, err = exec(ctx, db,
		`UPDATE variants SET customer_price = ?, company_price = ?, dealer_price = ? WHERE id = ?`,
		p.CustomerPrice, p.CompanyPrice, p.DealerPrice, variantID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating variant pricing: %w", err)
	}
	return GetVariant(ctx, db, variantID)
}

// SetAllInStock clears the out-of-stock flag of every product, or of every
// product of one company, in a single statement.
func SetAllInStock(ctx context.Context, db *sqlx.DB, companyID *int64) (int64, error) {
	query := `UPDATE products SET out_of_stock = ?, updated_at = CURRENT_TIMESTAMP WHERE out_of_stock`
	args := []any{false}
	if companyID != nil {
		query += ` AND company_id = ?`
		args = append(args, *companyID)
	}

	result, err := exec(ctx, db, query, args...)
	if err != nil {
		return 0, fmt.Errorf("marking products in stock: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// checkProductOwner returns a not-found error unless the product exists and
// the actor may change it.
func checkProductOwner(ctx context.Context, q queryer, actor model.Actor, productID int64) error {
	var query string
	args := []any{productID}
	switch actor.Kind {
	case model.ActorAdmin:
		query = `SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`
	case model.ActorCompany:
		query = `SELECT EXISTS (SELECT 1 FROM products WHERE id = ? AND company_id = ?)`
		args = append(args, actor.ID)
	case model.ActorPartner:
		query = `SELECT EXISTS (SELECT 1 FROM products WHERE id = ? AND partner_id = ?)`
		args = append(args, actor.ID)
	default:
		return notFound("product not found")
	}

	var ok bool
	if err := get(ctx, q, &ok, query, args...); err != nil {
		return fmt.Errorf("checking product owner: %w", err)
	}
	if !ok {
		return notFound("product not found")
	}
	return nil
}
