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

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, description, created_at`

// Create inserts a category and returns its id.
func (r *CategoryRepo) Create(name, description string) (int64, error) {
	name, ok := validate.Name(name)
	if !ok {
		return 0, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	description, ok = validate.Text(description)
	if !ok {
		return 0, fmt.Errorf("%w: category description too long", domain.ErrValidation)
	}

	res, err := r.db.Exec(`
		INSERT INTO categories(name, description, created_at)
		VALUES (?, ?, ?)
	`, name, description, stamp(time.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: category %q already exists", domain.ErrDuplicateName, name)
		}
		applog.Error("category.create.fail", err, map[string]any{"name": name})
		return 0, storeErr("create category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create category", err)
	}
	applog.Audit("category.create", map[string]any{"category_id": id, "name": name})
	return id, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	if err := r.db.Select(&out, `SELECT `+categoryCols+` FROM categories ORDER BY name`); err != nil {
		return nil, storeErr("list categories", err)
	}
	return out, nil
}

// Get returns the category with id, or nil when there is none.
func (r *CategoryRepo) Get(id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get category", err)
	}
	return &c, nil
}

// Update changes the fields set in p. It reports false when p is empty or
// no category has id.
func (r *CategoryRepo) Update(id int64, p domain.CategoryPatch) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	var sets []string
	var args []any
	if p.Name != nil {
		name, ok := validate.Name(*p.Name)
		if !ok {
			return false, fmt.Errorf("%w: category name is required", domain.ErrValidation)
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if p.Description != nil {
		desc, ok := validate.Text(*p.Description)
		if !ok {
			return false, fmt.Errorf("%w: category description too long", domain.ErrValidation)
		}
		sets = append(sets, "description = ?")
		args = append(args, desc)
	}
	args = append(args, id)

	res, err := r.db.Exec(`UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%w: category %q already exists", domain.ErrDuplicateName, *p.Name)
		}
		applog.Error("category.update.fail", err, map[string]any{"category_id": id})
		return false, storeErr("update category", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		applog.Audit("category.update", map[string]any{"category_id": id})
	}
	return n > 0, nil
}

// Delete removes a category. Its products stay and lose their category
// (ON DELETE SET NULL).
func (r *CategoryRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		applog.Error("category.delete.fail", err, map[string]any{"category_id": id})
		return false, storeErr("delete category", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		applog.Audit("category.delete", map[string]any{"category_id": id})
	}
	return n > 0, nil
}
