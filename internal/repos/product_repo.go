package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"stockledger/internal/domain"
	applog "stockledger/internal/log"
	"stockledger/internal/validate"
)

type ProductRepo struct {
	db *sqlx.DB

	// AllowNegative accepts negative opening or corrected stock, matching
	// the ledger's policy.
	AllowNegative bool
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// productSelect joins every product with its category name; uncategorised
// products come back with a NULL category_name.
const productSelect = `
  SELECT
    p.id, p.name, p.category_id, c.name AS category_name,
    COALESCE(p.barcode,'') AS barcode, p.unit_price, p.current_stock, p.minimum_stock,
    p.supplier, p.description, p.added_at
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

// Create inserts a product and returns its id. InitialStock seeds
// current_stock; later changes go through the ledger.
func (r *ProductRepo) Create(np domain.NewProduct) (int64, error) {
	name, ok := validate.Name(np.Name)
	if !ok {
		return 0, fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	barcode, ok := validate.Barcode(np.Barcode)
	if !ok {
		return 0, fmt.Errorf("%w: malformed barcode %q", domain.ErrValidation, np.Barcode)
	}
	if !validate.Price(np.UnitPrice) {
		return 0, fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}
	if err := r.checkStock(np.InitialStock, np.MinimumStock); err != nil {
		return 0, err
	}
	supplier, ok1 := validate.Text(np.Supplier)
	desc, ok2 := validate.Text(np.Description)
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%w: text field too long", domain.ErrValidation)
	}

	res, err := r.db.Exec(`
		INSERT INTO products
		  (name, category_id, barcode, unit_price, current_stock, minimum_stock, supplier, description, added_at)
		VALUES
		  (?,    ?,           NULLIF(?,''), ?,    ?,             ?,             ?,        ?,           ?)
	`, name, np.CategoryID, barcode, np.UnitPrice, np.InitialStock, np.MinimumStock, supplier, desc, stamp(time.Now()))
	if err != nil {
		if cerr := productConstraintErr(err, barcode, np.CategoryID); cerr != nil {
			return 0, cerr
		}
		applog.Error("product.create.fail", err, map[string]any{"name": name})
		return 0, storeErr("create product", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create product", err)
	}
	applog.Audit("product.create", map[string]any{"product_id": id, "name": name, "stock": np.InitialStock})
	return id, nil
}

func (r *ProductRepo) checkStock(stock, minimum int) error {
	if stock < 0 && !r.AllowNegative {
		return fmt.Errorf("%w: stock must not be negative, got %d", domain.ErrValidation, stock)
	}
	if minimum < 0 {
		return fmt.Errorf("%w: minimum stock must not be negative, got %d", domain.ErrValidation, minimum)
	}
	return nil
}

func productConstraintErr(err error, barcode string, categoryID *int64) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: barcode %q is already used", domain.ErrDuplicateBarcode, barcode)
	case isForeignKeyViolation(err):
		if categoryID != nil {
			return fmt.Errorf("%w: no category %d", domain.ErrInvalidCategory, *categoryID)
		}
		return fmt.Errorf("%w: dangling category reference", domain.ErrInvalidCategory)
	}
	return nil
}

// List returns all products ordered by name.
func (r *ProductRepo) List() ([]domain.Product, error) {
	return r.selectProducts("list products", productSelect+` ORDER BY p.name, p.id`)
}

// Get returns the product with id, or nil when there is none.
func (r *ProductRepo) Get(id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, productSelect+` WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return &p, nil
}

// Search matches term case-insensitively against name or barcode. Both
// sides are case-folded with fold, so accented letters compare too.
func (r *ProductRepo) Search(term string) ([]domain.Product, error) {
	like := "%" + escapeLike(fold(validate.Term(term))) + "%"
	return r.selectProducts("search products", productSelect+`
  WHERE fold(p.name) LIKE ? ESCAPE '\' OR fold(COALESCE(p.barcode,'')) LIKE ? ESCAPE '\'
  ORDER BY p.name, p.id`, like, like)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ByCategory returns the products of one category ordered by name.
func (r *ProductRepo) ByCategory(categoryID int64) ([]domain.Product, error) {
	return r.selectProducts("products by category", productSelect+`
  WHERE p.category_id = ?
  ORDER BY p.name, p.id`, categoryID)
}

// LowStock returns products below their minimum, worst shortfall first.
func (r *ProductRepo) LowStock() ([]domain.Product, error) {
	return r.selectProducts("low stock", productSelect+`
  WHERE p.current_stock < p.minimum_stock
  ORDER BY (p.current_stock - p.minimum_stock), p.name, p.id`)
}

func (r *ProductRepo) selectProducts(op, query string, args ...any) ([]domain.Product, error) {
	out := []domain.Product{}
	if err := r.db.Select(&out, query, args...); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

// Update changes the fields set in p and reports whether a product matched.
// Setting CurrentStock bypasses the ledger; it is an administrative
// correction and leaves no movement behind.
func (r *ProductRepo) Update(id int64, p domain.ProductPatch) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Name != nil {
		name, ok := validate.Name(*p.Name)
		if !ok {
			return false, fmt.Errorf("%w: product name is required", domain.ErrValidation)
		}
		set("name", name)
	}
	switch {
	case p.ClearCategory:
		set("category_id", nil)
	case p.CategoryID != nil:
		set("category_id", *p.CategoryID)
	}
	barcode := ""
	if p.Barcode != nil {
		var ok bool
		barcode, ok = validate.Barcode(*p.Barcode)
		if !ok {
			return false, fmt.Errorf("%w: malformed barcode %q", domain.ErrValidation, *p.Barcode)
		}
		sets = append(sets, "barcode = NULLIF(?,'')")
		args = append(args, barcode)
	}
	if p.UnitPrice != nil {
		if !validate.Price(*p.UnitPrice) {
			return false, fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
		}
		set("unit_price", *p.UnitPrice)
	}
	if p.CurrentStock != nil {
		if err := r.checkStock(*p.CurrentStock, 0); err != nil {
			return false, err
		}
		set("current_stock", *p.CurrentStock)
	}
	if p.MinimumStock != nil {
		if err := r.checkStock(0, *p.MinimumStock); err != nil {
			return false, err
		}
		set("minimum_stock", *p.MinimumStock)
	}
	if p.Supplier != nil {
		s, ok := validate.Text(*p.Supplier)
		if !ok {
			return false, fmt.Errorf("%w: supplier too long", domain.ErrValidation)
		}
		set("supplier", s)
	}
	if p.Description != nil {
		s, ok := validate.Text(*p.Description)
		if !ok {
			return false, fmt.Errorf("%w: description too long", domain.ErrValidation)
		}
		set("description", s)
	}
	args = append(args, id)

	res, err := r.db.Exec(`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		categoryID := p.CategoryID
		if p.ClearCategory {
			categoryID = nil
		}
		if cerr := productConstraintErr(err, barcode, categoryID); cerr != nil {
			return false, cerr
		}
		applog.Error("product.update.fail", err, map[string]any{"product_id": id})
		return false, storeErr("update product", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		fields := map[string]any{"product_id": id, "columns": len(sets)}
		if p.CurrentStock != nil {
			fields["stock_override"] = *p.CurrentStock
		}
		applog.Audit("product.update", fields)
	}
	return n > 0, nil
}

// Delete removes a product. Products with ledger history are kept and the
// call fails with ErrInUse.
func (r *ProductRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%w: product %d has recorded movements", domain.ErrInUse, id)
		}
		applog.Error("product.delete.fail", err, map[string]any{"product_id": id})
		return false, storeErr("delete product", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		applog.Audit("product.delete", map[string]any{"product_id": id})
	}
	return n > 0, nil
}
