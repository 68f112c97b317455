package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-insurance-api/internal/domain/claims"
)

type ClaimsRepo struct {
	db *sql.DB
}

func NewClaimsRepo(db *sql.DB) *ClaimsRepo {
	return &ClaimsRepo{db: db}
}

const claimColumns = `
	id, claim_number, policy_id, pet_id, clinic_id,
	claim_date, incident_date,
	description, diagnosis, claim_type,
	claim_amount, approved_amount,
	status, source,
	reviewed_by_user_id, review_date, rejection_reason, payment_date,
	notes, created_at, updated_at
`

func (r *ClaimsRepo) Create(ctx context.Context, c claims.Claim) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`, claimArgs(c)...)
	return err
}

func (r *ClaimsRepo) Update(ctx context.Context, c claims.Claim) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims
		SET
			description = $2,
			diagnosis = $3,
			claim_amount = $4,
			approved_amount = $5,
			status = $6,
			reviewed_by_user_id = $7,
			review_date = $8,
			rejection_reason = $9,
			payment_date = $10,
			notes = $11,
			updated_at = $12
		WHERE id = $1
	`,
		c.ID,
		c.Description,
		c.Diagnosis,
		c.ClaimAmount,
		c.ApprovedAmount,
		string(c.Status),
		c.ReviewedByUserID,
		toNullTime(c.ReviewDate),
		c.RejectionReason,
		toNullTime(c.PaymentDate),
		c.Notes,
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

func (r *ClaimsRepo) GetByID(ctx context.Context, id string) (claims.Claim, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+claimColumns+`
		FROM claims
		WHERE id = $1
	`, id)
	return scanClaim(row)
}

func (r *ClaimsRepo) ListAll(ctx context.Context) ([]claims.Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+claimColumns+`
		FROM claims
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClaims(rows)
}

func (r *ClaimsRepo) ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]claims.Claim, error) {
	ids, err := jsonText(policyIDs)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+claimColumns+`
		FROM claims
		WHERE policy_id IN (
			SELECT jsonb_array_elements_text($1::jsonb)
		)
		ORDER BY created_at ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClaims(rows)
}

// CreateIfNoOpenClaim: el insert condicionado corre en un solo statement,
// así el chequeo de dedup y la inserción son atómicos en el servidor.
func (r *ClaimsRepo) CreateIfNoOpenClaim(ctx context.Context, c claims.Claim, since time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21
		WHERE NOT EXISTS (
			SELECT 1 FROM claims
			WHERE pet_id = $4
			  AND status IN ('pending', 'under_review')
			  AND created_at >= $22
		)
	`, append(claimArgs(c), since)...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func claimArgs(c claims.Claim) []any {
	return []any{
		c.ID,
		c.ClaimNumber,
		c.PolicyID,
		c.PetID,
		c.ClinicID,
		c.ClaimDate,
		c.IncidentDate,
		c.Description,
		c.Diagnosis,
		string(c.ClaimType),
		c.ClaimAmount,
		c.ApprovedAmount,
		string(c.Status),
		string(c.Source),
		c.ReviewedByUserID,
		toNullTime(c.ReviewDate),
		c.RejectionReason,
		toNullTime(c.PaymentDate),
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	}
}

func collectClaims(rows *sql.Rows) ([]claims.Claim, error) {
	out := make([]claims.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClaim(row rowScanner) (claims.Claim, error) {
	var c claims.Claim
	var claimType, status, source string
	var reviewDate, paymentDate sql.NullTime
	err := row.Scan(
		&c.ID,
		&c.ClaimNumber,
		&c.PolicyID,
		&c.PetID,
		&c.ClinicID,
		&c.ClaimDate,
		&c.IncidentDate,
		&c.Description,
		&c.Diagnosis,
		&claimType,
		&c.ClaimAmount,
		&c.ApprovedAmount,
		&status,
		&source,
		&c.ReviewedByUserID,
		&reviewDate,
		&c.RejectionReason,
		&paymentDate,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return claims.Claim{}, ErrNotFound
	}
	if err != nil {
		return claims.Claim{}, err
	}

	c.ClaimType = claims.ClaimType(claimType)
	c.Status = claims.Status(status)
	c.Source = claims.Source(source)
	c.ReviewDate = fromNullTime(reviewDate)
	c.PaymentDate = fromNullTime(paymentDate)
	return c, nil
}
