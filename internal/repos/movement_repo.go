package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockledger/internal/domain"
	applog "stockledger/internal/log"
	"stockledger/internal/metrics"
	"stockledger/internal/validate"
)

// MovementRepo is the stock ledger. Recording a movement appends the ledger
// row and adjusts the product's current_stock in one transaction.
type MovementRepo struct {
	db      *sqlx.DB
	metrics *metrics.Metrics

	// AllowNegative lets OUTBOUND movements take stock below zero.
	AllowNegative bool
	// Now stamps new movements; defaults to time.Now.
	Now func() time.Time
}

// NewMovementRepo returns a ledger over db. m may be nil.
func NewMovementRepo(db *sqlx.DB, m *metrics.Metrics) *MovementRepo {
	return &MovementRepo{db: db, metrics: m, Now: time.Now}
}

const movementSelect = `
  SELECT
    m.id, m.product_id, p.name AS product_name, m.type, m.quantity,
    m.reason, m.user_name, m.timestamp, m.remarks
  FROM movements m
  JOIN products p ON p.id = m.product_id`

const newestFirst = ` ORDER BY m.timestamp DESC, m.id DESC`

// Record validates nm, then inserts the ledger row and applies its stock
// delta atomically. On any failure neither table changes.
func (r *MovementRepo) Record(nm domain.NewMovement) (int64, error) {
	if !nm.Type.Valid() {
		r.metrics.MovementFailed("validation")
		return 0, fmt.Errorf("%w: movement type %q", domain.ErrValidation, nm.Type)
	}
	if !validate.Quantity(nm.Quantity) {
		r.metrics.MovementFailed("validation")
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrValidation, nm.Quantity)
	}
	reason, ok1 := validate.Text(nm.Reason)
	user, ok2 := validate.Text(nm.User)
	remarks, ok3 := validate.Text(nm.Remarks)
	if !ok1 || !ok2 || !ok3 {
		r.metrics.MovementFailed("validation")
		return 0, fmt.Errorf("%w: text field too long", domain.ErrValidation)
	}

	op := uuid.NewString()
	fields := map[string]any{"op": op, "product_id": nm.ProductID, "type": nm.Type, "qty": nm.Quantity}

	id, stock, err := r.apply(nm, reason, user, remarks)
	if err != nil {
		r.metrics.MovementFailed(failureReason(err))
		applog.Warn("ledger.record.fail", err, fields)
		return 0, err
	}

	r.metrics.MovementRecorded(string(nm.Type))
	fields["movement_id"] = id
	fields["stock"] = stock
	applog.Audit("ledger.record", fields)
	return id, nil
}

func (r *MovementRepo) apply(nm domain.NewMovement, reason, user, remarks string) (int64, int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, 0, storeErr("begin movement", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO movements(product_id, type, quantity, reason, user_name, timestamp, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nm.ProductID, string(nm.Type), nm.Quantity, reason, user, stamp(r.now()), remarks)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, 0, fmt.Errorf("%w: %w: product %d", domain.ErrTransactionFailed, domain.ErrNotFound, nm.ProductID)
		}
		return 0, 0, txErr("insert movement", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, txErr("insert movement", err)
	}

	var stock int
	err = tx.Get(&stock, `SELECT current_stock FROM products WHERE id = ?`, nm.ProductID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %w: product %d", domain.ErrTransactionFailed, domain.ErrNotFound, nm.ProductID)
	}
	if err != nil {
		return 0, 0, txErr("read stock", err)
	}

	next := stock + nm.Type.Delta(nm.Quantity)
	if next < 0 && !r.AllowNegative {
		return 0, 0, fmt.Errorf("%w: product %d has %d, cannot issue %d",
			domain.ErrInsufficientStock, nm.ProductID, stock, nm.Quantity)
	}

	res, err = tx.Exec(`UPDATE products SET current_stock = ? WHERE id = ?`, next, nm.ProductID)
	if err != nil {
		return 0, 0, txErr("adjust stock", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return 0, 0, fmt.Errorf("%w: stock adjustment touched %d rows", domain.ErrTransactionFailed, n)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, txErr("commit movement", err)
	}
	return id, next, nil
}

func (r *MovementRepo) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// txErr wraps a failure inside the ledger transaction. Store-level failures
// keep ErrStoreUnavailable so callers can tell a busy store apart.
func txErr(op string, err error) error {
	if isCheckViolation(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, op, err)
	}
	return fmt.Errorf("%w: %w: %s: %v", domain.ErrTransactionFailed, domain.ErrStoreUnavailable, op, err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "store"
	}
}

// List returns the whole ledger, newest first.
func (r *MovementRepo) List() ([]domain.Movement, error) {
	return r.selectMovements("list movements", movementSelect+newestFirst)
}

// ForProduct returns one product's history, newest first.
func (r *MovementRepo) ForProduct(productID int64) ([]domain.Movement, error) {
	return r.selectMovements("movements for product",
		movementSelect+` WHERE m.product_id = ?`+newestFirst, productID)
}

// InDateRange returns movements whose calendar day (UTC) lies between the
// days of start and end, both included, newest first.
func (r *MovementRepo) InDateRange(start, end time.Time) ([]domain.Movement, error) {
	const day = "2006-01-02"
	return r.selectMovements("movements in range",
		movementSelect+` WHERE DATE(m.timestamp) BETWEEN ? AND ?`+newestFirst,
		start.UTC().Format(day), end.UTC().Format(day))
}

// ByType returns movements of one type, newest first.
func (r *MovementRepo) ByType(t domain.MovementType) ([]domain.Movement, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: movement type %q", domain.ErrValidation, t)
	}
	return r.selectMovements("movements by type",
		movementSelect+` WHERE m.type = ?`+newestFirst, string(t))
}

func (r *MovementRepo) selectMovements(op, query string, args ...any) ([]domain.Movement, error) {
	out := []domain.Movement{}
	if err := r.db.Select(&out, query, args...); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}
