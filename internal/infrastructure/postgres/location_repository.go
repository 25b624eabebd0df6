package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, name, address, contact_person, created_at, updated_at`

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Address, &l.ContactPerson, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		location.ID, location.Name, location.Address, location.ContactPerson,
		location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

// GetByName obtiene una ubicación por nombre exacto.
func (r *LocationRepo) GetByName(ctx context.Context, name string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = $1`, name)
}

func (r *LocationRepo) getOne(ctx context.Context, query string, arg string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// ListByIDs obtiene las ubicaciones de la lista de ids.
func (r *LocationRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list locations by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Update actualiza nombre, dirección y contacto.
func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	query := `
		UPDATE locations SET name = $2, address = $3, contact_person = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		location.ID, location.Name, location.Address, location.ContactPerson, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ubicaciones ordenadas por nombre con paginación.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM locations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+locationColumns+` FROM locations ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	list := []*entity.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, total, rows.Err()
}

// Delete elimina una ubicación por ID.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
