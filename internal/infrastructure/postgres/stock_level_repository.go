package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de niveles de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene el nivel de stock de un producto en una ubicación.
func (r *StockLevelRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	query := `
		SELECT id, product_id, location_id, quantity, last_updated
		FROM stock_levels WHERE product_id = $1 AND location_id = $2`
	return r.getOne(ctx, "get stock level", query, productID, locationID)
}

// GetForUpdate obtiene el nivel y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	query := `
		SELECT id, product_id, location_id, quantity, last_updated
		FROM stock_levels WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	return r.getOne(ctx, "get stock level for update", query, productID, locationID)
}

func (r *StockLevelRepo) getOne(ctx context.Context, op, query string, productID, locationID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, locationID).Scan(
		&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// GetOrCreateForUpdate inserta el nivel con cantidad 0 si no existe (ON CONFLICT DO NOTHING)
// y luego lo bloquea. Si otra tx lo está creando en paralelo, el INSERT espera a que termine.
func (r *StockLevelRepo) GetOrCreateForUpdate(ctx context.Context, level *entity.StockLevel) (*entity.StockLevel, bool, error) {
	query := `
		INSERT INTO stock_levels (id, product_id, location_id, quantity, last_updated)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (product_id, location_id) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query, level.ID, level.ProductID, level.LocationID, level.LastUpdated)
	if err != nil {
		return nil, false, fmt.Errorf("insert stock level: %w", err)
	}
	created := cmd.RowsAffected() == 1

	stock, err := r.GetForUpdate(ctx, level.ProductID, level.LocationID)
	if err != nil {
		return nil, false, err
	}
	if stock == nil {
		return nil, false, fmt.Errorf("insert stock level: fila no visible tras el insert")
	}
	return stock, created, nil
}

// UpdateQuantity fija la cantidad y la fecha de actualización del nivel.
func (r *StockLevelRepo) UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_levels SET quantity = $2, last_updated = $3 WHERE id = $1`,
		id, quantity, at,
	)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrStockLevelNotFound
	}
	return nil
}

// ListByProduct niveles del producto con los datos de cada ubicación, por nombre de ubicación.
func (r *StockLevelRepo) ListByProduct(ctx context.Context, productID string) ([]repository.LocationStock, error) {
	query := `
		SELECT s.id, s.product_id, s.location_id, s.quantity, s.last_updated,
		       l.name, l.address, l.contact_person
		FROM stock_levels s
		JOIN locations l ON l.id = s.location_id
		WHERE s.product_id = $1
		ORDER BY l.name ASC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels by product: %w", err)
	}
	defer rows.Close()
	list := []repository.LocationStock{}
	for rows.Next() {
		var s repository.LocationStock
		if err := rows.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.LastUpdated,
			&s.LocationName, &s.Address, &s.ContactPerson); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListByLocation niveles de la ubicación con los datos de cada producto, por nombre de producto.
func (r *StockLevelRepo) ListByLocation(ctx context.Context, locationID string) ([]repository.ProductStock, error) {
	query := `
		SELECT s.id, s.product_id, s.location_id, s.quantity, s.last_updated,
		       p.name, p.sku, p.category, p.unit_of_measurement, p.price, p.is_active
		FROM stock_levels s
		JOIN products p ON p.id = s.product_id
		WHERE s.location_id = $1
		ORDER BY p.name ASC`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels by location: %w", err)
	}
	defer rows.Close()
	list := []repository.ProductStock{}
	for rows.Next() {
		var s repository.ProductStock
		if err := rows.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.LastUpdated,
			&s.ProductName, &s.SKU, &s.Category, &s.UnitOfMeasurement, &s.Price, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// LowStock suma las cantidades de cada producto activo (LEFT JOIN + COALESCE) y devuelve los que
// quedan por debajo del umbral. Sin includeUnstocked se descartan los productos sin niveles.
func (r *StockLevelRepo) LowStock(ctx context.Context, threshold int64, includeUnstocked bool) ([]repository.LowStockItem, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.category, p.price,
		       COALESCE(SUM(s.quantity), 0)::bigint AS total_stock,
		       COUNT(s.id)::int                     AS locations
		FROM products p
		LEFT JOIN stock_levels s ON s.product_id = p.id
		WHERE p.is_active
		GROUP BY p.id, p.name, p.sku, p.category, p.price
		HAVING COALESCE(SUM(s.quantity), 0) < $1
		   AND ($2 OR COUNT(s.id) > 0)
		ORDER BY total_stock ASC, p.name ASC`
	rows, err := r.q.Query(ctx, query, threshold, includeUnstocked)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	list := []repository.LowStockItem{}
	for rows.Next() {
		var i repository.LowStockItem
		if err := rows.Scan(&i.ProductID, &i.Name, &i.SKU, &i.Category, &i.Price, &i.TotalStock, &i.Locations); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}
