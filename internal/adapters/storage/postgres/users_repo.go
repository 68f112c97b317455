package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-insurance-api/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, email, password_hash,
	first_name, last_name, phone, role,
	address_street, address_city, address_country, address_postal_code,
	is_active, created_at, updated_at
`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Role,
		u.Address.Street,
		u.Address.City,
		u.Address.Country,
		u.Address.PostalCode,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			password_hash = $3,
			first_name = $4,
			last_name = $5,
			phone = $6,
			role = $7,
			address_street = $8,
			address_city = $9,
			address_country = $10,
			address_postal_code = $11,
			is_active = $12,
			updated_at = $13
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Role,
		u.Address.Street,
		u.Address.City,
		u.Address.Country,
		u.Address.PostalCode,
		u.IsActive,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func (r *UsersRepo) List(ctx context.Context, filter users.ListFilter) ([]users.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR
		       first_name ILIKE '%' || $2 || '%' OR
		       last_name ILIKE '%' || $2 || '%' OR
		       email ILIKE '%' || $2 || '%')
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, filter.Role, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.Role,
		&u.Address.Street,
		&u.Address.City,
		&u.Address.Country,
		&u.Address.PostalCode,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return users.User{}, ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}
