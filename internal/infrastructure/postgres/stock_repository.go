package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var (
	_ repository.StockLotRepository      = (*StockLotRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockLotRepo lotes de stock sobre PostgreSQL. Los métodos ForUpdate solo bloquean
// cuando q es una transacción.
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const lotColumns = `id, material_id, lot_number, quantity, unit, expiry_date, received_date, supplier_id, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(&l.ID, &l.MaterialID, &l.LotNumber, &l.Quantity, &l.Unit, &l.ExpiryDate,
		&l.ReceivedDate, &l.SupplierID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *StockLotRepo) Create(ctx context.Context, l *entity.StockLot) error {
	query := `INSERT INTO stock_lots (` + lotColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, l.ID, l.MaterialID, l.LotNumber, l.Quantity, l.Unit, l.ExpiryDate,
		l.ReceivedDate, l.SupplierID, l.CreatedAt, l.UpdatedAt)
	return wrapWrite("create lot", err)
}

func (r *StockLotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockLotRepo) getOne(ctx context.Context, query, id string) (*entity.StockLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

func (r *StockLotRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE material_id = $1
		ORDER BY received_date, id`, materialID)
}

// ListAvailableForUpdate bloquea en orden FIFO los lotes con existencia.
func (r *StockLotRepo) ListAvailableForUpdate(ctx context.Context, materialID string) ([]*entity.StockLot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE material_id = $1 AND quantity > 0
		ORDER BY received_date, id
		FOR UPDATE`, materialID)
}

// ListNewestForUpdate bloquea todos los lotes del material, el más reciente primero.
func (r *StockLotRepo) ListNewestForUpdate(ctx context.Context, materialID string) ([]*entity.StockLot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE material_id = $1
		ORDER BY received_date DESC, id DESC
		FOR UPDATE`, materialID)
}

func (r *StockLotRepo) list(ctx context.Context, query, materialID string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

// UpdateQuantity fija la nueva cantidad del lote. El CHECK de la tabla rechaza negativos.
func (r *StockLotRepo) UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	tag, err := r.q.Exec(ctx, `UPDATE stock_lots SET quantity = $2, updated_at = now() WHERE id = $1`, id, qty)
	if err != nil {
		return wrapWrite("update lot quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("lot", id)
	}
	return nil
}

// SumByMaterial existencia total del material; cero si no tiene lotes.
func (r *StockLotRepo) SumByMaterial(ctx context.Context, materialID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_lots WHERE material_id = $1`, materialID,
	).Scan(&total)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("sum lots: %w", err)
	}
	return total, nil
}

// StockMovementRepo libro de movimientos; solo inserción y consulta.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, material_id, lot_id, type, direction, quantity, unit, batch_id,
	service_order_id, document_number, notes, created_by, created_at`

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, m.ID, m.MaterialID, nullable(m.LotID), m.Type, m.Direction,
		m.Quantity, m.Unit, nullable(m.BatchID), nullable(m.ServiceOrderID), m.DocumentNumber, m.Notes,
		m.CreatedBy, m.CreatedAt)
	return wrapWrite("create movement", err)
}

// List consulta el libro en orden cronológico de inserción.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.MaterialID != "" {
		add("material_id::text = $%d", f.MaterialID)
	}
	if f.LotID != "" {
		add("lot_id::text = $%d", f.LotID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.BatchID != "" {
		add("batch_id::text = $%d", f.BatchID)
	}
	if f.ServiceOrderID != "" {
		add("service_order_id::text = $%d", f.ServiceOrderID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	p := f.Page.Normalize()
	args = append(args, p.Limit, p.Offset)
	query += fmt.Sprintf(` ORDER BY created_at, seq LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m                   entity.StockMovement
			lotID, batch, order *string
		)
		if err := rows.Scan(&m.ID, &m.MaterialID, &lotID, &m.Type, &m.Direction, &m.Quantity,
			&m.Unit, &batch, &order, &m.DocumentNumber, &m.Notes, &m.CreatedBy,
			&m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.LotID, m.BatchID, m.ServiceOrderID = deref(lotID), deref(batch), deref(order)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Totals suma del libro por dirección para un material.
func (r *StockMovementRepo) Totals(ctx context.Context, materialID string) (repository.MovementTotals, error) {
	t := repository.MovementTotals{In: decimal.Zero, Out: decimal.Zero}
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
		FROM stock_movements WHERE material_id = $1`, materialID,
	).Scan(&t.In, &t.Out)
	if err != nil {
		return t, fmt.Errorf("movement totals: %w", err)
	}
	return t, nil
}
