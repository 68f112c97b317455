package postgres

import (
	"context"
	"database/sql"

	"pet-insurance-api/internal/domain/medrecords"
)

type MedicalRecordsRepo struct {
	db *sql.DB
}

func NewMedicalRecordsRepo(db *sql.DB) *MedicalRecordsRepo {
	return &MedicalRecordsRepo{db: db}
}

const medicalRecordColumns = `
	id, pet_id, clinic_id, veterinarian_user_id,
	visit_date, record_type,
	description, diagnosis, treatment, medications, cost, notes,
	related_claim_id,
	created_at, updated_at
`

func (r *MedicalRecordsRepo) Create(ctx context.Context, rec medrecords.MedicalRecord) error {
	medications, err := jsonText(rec.Medications)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+medicalRecordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		rec.ID,
		rec.PetID,
		rec.ClinicID,
		rec.VeterinarianUserID,
		rec.VisitDate,
		string(rec.RecordType),
		rec.Description,
		rec.Diagnosis,
		rec.Treatment,
		medications,
		rec.Cost,
		rec.Notes,
		rec.RelatedClaimID,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *MedicalRecordsRepo) Update(ctx context.Context, rec medrecords.MedicalRecord) error {
	medications, err := jsonText(rec.Medications)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET
			diagnosis = $2,
			treatment = $3,
			medications = $4,
			cost = $5,
			notes = $6,
			updated_at = $7
		WHERE id = $1
	`,
		rec.ID,
		rec.Diagnosis,
		rec.Treatment,
		medications,
		rec.Cost,
		rec.Notes,
		rec.UpdatedAt,
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

func (r *MedicalRecordsRepo) GetByID(ctx context.Context, id string) (medrecords.MedicalRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicalRecordColumns+`
		FROM medical_records
		WHERE id = $1
	`, id)
	return scanMedicalRecord(row)
}

func (r *MedicalRecordsRepo) ListByPet(ctx context.Context, petID string) ([]medrecords.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicalRecordColumns+`
		FROM medical_records
		WHERE pet_id = $1
		ORDER BY visit_date DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medrecords.MedicalRecord, 0)
	for rows.Next() {
		rec, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanMedicalRecord(row rowScanner) (medrecords.MedicalRecord, error) {
	var rec medrecords.MedicalRecord
	var recordType, medications string
	err := row.Scan(
		&rec.ID,
		&rec.PetID,
		&rec.ClinicID,
		&rec.VeterinarianUserID,
		&rec.VisitDate,
		&recordType,
		&rec.Description,
		&rec.Diagnosis,
		&rec.Treatment,
		&medications,
		&rec.Cost,
		&rec.Notes,
		&rec.RelatedClaimID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return medrecords.MedicalRecord{}, ErrNotFound
	}
	if err != nil {
		return medrecords.MedicalRecord{}, err
	}
	rec.RecordType = medrecords.RecordType(recordType)
	if err := fromJSONText(medications, &rec.Medications); err != nil {
		return medrecords.MedicalRecord{}, err
	}
	return rec, nil
}
