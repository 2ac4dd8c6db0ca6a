package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, email, full_name, phone, profile_image, date_of_birth,
        street, city, state, postal_code, country, is_completed, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	if err := postgres.Conn(ctx, r.DB).GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &users, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) (bool, error) {
	query := `
        UPDATE users
        SET full_name = :full_name,
            phone = :phone,
            profile_image = :profile_image,
            date_of_birth = :date_of_birth,
            street = :street,
            city = :city,
            state = :state,
            postal_code = :postal_code,
            country = :country,
            is_completed = :is_completed,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, u)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
