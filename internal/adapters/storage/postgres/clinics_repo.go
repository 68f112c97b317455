package postgres

import (
	"context"
	"database/sql"

	"pet-insurance-api/internal/domain/clinics"
)

type ClinicsRepo struct {
	db *sql.DB
}

func NewClinicsRepo(db *sql.DB) *ClinicsRepo {
	return &ClinicsRepo{db: db}
}

const clinicColumns = `
	id, name,
	address_street, address_city, address_country, address_postal_code,
	phone, email, services,
	is_active, created_at, updated_at
`

func (r *ClinicsRepo) Create(ctx context.Context, c clinics.Clinic) error {
	services, err := jsonText(c.Services)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clinics (`+clinicColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		c.ID,
		c.Name,
		c.Address.Street,
		c.Address.City,
		c.Address.Country,
		c.Address.PostalCode,
		c.Phone,
		c.Email,
		services,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ClinicsRepo) Update(ctx context.Context, c clinics.Clinic) error {
	services, err := jsonText(c.Services)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE clinics
		SET
			name = $2,
			address_street = $3,
			address_city = $4,
			address_country = $5,
			address_postal_code = $6,
			phone = $7,
			email = $8,
			services = $9,
			is_active = $10,
			updated_at = $11
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Address.Street,
		c.Address.City,
		c.Address.Country,
		c.Address.PostalCode,
		c.Phone,
		c.Email,
		services,
		c.IsActive,
		c.UpdatedAt,
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

func (r *ClinicsRepo) GetByID(ctx context.Context, id string) (clinics.Clinic, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clinicColumns+`
		FROM clinics
		WHERE id = $1
	`, id)
	return scanClinic(row)
}

func (r *ClinicsRepo) List(ctx context.Context, f clinics.ListFilter) ([]clinics.Clinic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clinicColumns+`
		FROM clinics
		WHERE ($1 = false OR is_active = true)
		  AND ($2 = '' OR address_city ILIKE $2)
		ORDER BY name ASC
	`, f.OnlyActive, f.City)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clinics.Clinic, 0)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClinic(row rowScanner) (clinics.Clinic, error) {
	var c clinics.Clinic
	var services string
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address.Street,
		&c.Address.City,
		&c.Address.Country,
		&c.Address.PostalCode,
		&c.Phone,
		&c.Email,
		&services,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return clinics.Clinic{}, ErrNotFound
	}
	if err != nil {
		return clinics.Clinic{}, err
	}
	if err := fromJSONText(services, &c.Services); err != nil {
		return clinics.Clinic{}, err
	}
	return c, nil
}
