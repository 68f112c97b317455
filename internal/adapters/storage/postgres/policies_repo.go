package postgres

import (
	"context"
	"database/sql"

	"pet-insurance-api/internal/domain/policies"
)

type PoliciesRepo struct {
	db *sql.DB
}

func NewPoliciesRepo(db *sql.DB) *PoliciesRepo {
	return &PoliciesRepo{db: db}
}

const policyColumns = `
	id, policy_number, pet_id, owner_user_id,
	start_date, end_date, status,
	coverage_type, premium, coverage_amount, deductible,
	covered_conditions, exclusions, notes,
	created_at, updated_at
`

func (r *PoliciesRepo) Create(ctx context.Context, p policies.Policy) error {
	covered, err := jsonText(p.CoveredConditions)
	if err != nil {
		return err
	}
	exclusions, err := jsonText(p.Exclusions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO policies (`+policyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.PolicyNumber,
		p.PetID,
		p.OwnerUserID,
		p.StartDate,
		p.EndDate,
		string(p.Status),
		string(p.CoverageType),
		p.Premium,
		p.CoverageAmount,
		p.Deductible,
		covered,
		exclusions,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PoliciesRepo) Update(ctx context.Context, p policies.Policy) error {
	covered, err := jsonText(p.CoveredConditions)
	if err != nil {
		return err
	}
	exclusions, err := jsonText(p.Exclusions)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE policies
		SET
			start_date = $2,
			end_date = $3,
			status = $4,
			covered_conditions = $5,
			exclusions = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		p.StartDate,
		p.EndDate,
		string(p.Status),
		covered,
		exclusions,
		p.Notes,
		p.UpdatedAt,
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

func (r *PoliciesRepo) GetByID(ctx context.Context, id string) (policies.Policy, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		WHERE id = $1
	`, id)
	return scanPolicy(row)
}

func (r *PoliciesRepo) ListAll(ctx context.Context) ([]policies.Policy, error) {
	return r.list(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		ORDER BY created_at ASC
	`)
}

func (r *PoliciesRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]policies.Policy, error) {
	return r.list(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
}

func (r *PoliciesRepo) ListByPet(ctx context.Context, petID string) ([]policies.Policy, error) {
	return r.list(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
}

func (r *PoliciesRepo) list(ctx context.Context, query string, args ...any) ([]policies.Policy, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]policies.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPolicy(row rowScanner) (policies.Policy, error) {
	var p policies.Policy
	var status, coverageType, covered, exclusions string
	err := row.Scan(
		&p.ID,
		&p.PolicyNumber,
		&p.PetID,
		&p.OwnerUserID,
		&p.StartDate,
		&p.EndDate,
		&status,
		&coverageType,
		&p.Premium,
		&p.CoverageAmount,
		&p.Deductible,
		&covered,
		&exclusions,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return policies.Policy{}, ErrNotFound
	}
	if err != nil {
		return policies.Policy{}, err
	}

	p.Status = policies.Status(status)
	p.CoverageType = policies.CoverageType(coverageType)
	if err := fromJSONText(covered, &p.CoveredConditions); err != nil {
		return policies.Policy{}, err
	}
	if err := fromJSONText(exclusions, &p.Exclusions); err != nil {
		return policies.Policy{}, err
	}
	return p, nil
}
