package designs

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Design, int, error)
	Get(ctx context.Context, id int64) (Design, error)
	GetByCode(ctx context.Context, code string) (Design, error)
	Create(ctx context.Context, design Design) (Design, error)
	Update(ctx context.Context, id int64, design Design) error
	Delete(ctx context.Context, id int64) error
	UsageCount(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Design, int, error) {
	query := `SELECT id, code, type_name, created_at, updated_at FROM designs WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND code ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM designs WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND code ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code ASC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Design
	for rows.Next() {
		var d Design
		if err := rows.Scan(&d.ID, &d.Code, &d.TypeName, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Design, error) {
	var d Design
	err := r.db.QueryRow(ctx, `SELECT id, code, type_name, created_at, updated_at FROM designs WHERE id = $1`, id).
		Scan(&d.ID, &d.Code, &d.TypeName, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Design{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Design, error) {
	var d Design
	err := r.db.QueryRow(ctx, `SELECT id, code, type_name, created_at, updated_at FROM designs WHERE code = $1`, code).
		Scan(&d.ID, &d.Code, &d.TypeName, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Design{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) Create(ctx context.Context, design Design) (Design, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO designs (code, type_name, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		design.Code, design.TypeName, now, now).Scan(&design.ID)
	if err != nil {
		return Design{}, err
	}
	design.CreatedAt = now
	design.UpdatedAt = now
	return design, nil
}

func (r *repository) Update(ctx context.Context, id int64, design Design) error {
	_, err := r.db.Exec(ctx, `UPDATE designs SET code = $1, type_name = $2, updated_at = $3 WHERE id = $4`,
		design.Code, design.TypeName, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM designs WHERE id = $1`, id)
	return err
}

func (r *repository) UsageCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM color_kitchen_entries WHERE design_id = $1`, id).Scan(&count)
	return count, err
}
