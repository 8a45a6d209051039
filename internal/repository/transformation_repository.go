package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/julianfleck/fragment-editor-api/internal/model"
)

type TransformationRepository struct {
	db *sql.DB
}

func NewTransformationRepository(db *sql.DB) *TransformationRepository {
	return &TransformationRepository{db: db}
}

func (r *TransformationRepository) SaveTransformation(rec *model.TransformationRecord) error {
	return r.db.QueryRow(`
		INSERT INTO transformation(operation, request_type, mode, original_tokens, target_percentages,
			versions_requested, final_versions, passed, model_used, response_body)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, rec.Operation, rec.RequestType, rec.Mode, rec.OriginalTokens, pq.Array(rec.TargetPercentages),
		rec.VersionsRequested, rec.FinalVersions, rec.Passed, rec.ModelUsed, rec.ResponseBody).Scan(&rec.ID)
}

func (r *TransformationRepository) GetTransformations(limit, offset int) ([]model.TransformationRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, operation, request_type, mode, original_tokens, target_percentages,
			versions_requested, final_versions, passed, model_used, created_at
		FROM transformation
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TransformationRecord
	for rows.Next() {
		var rec model.TransformationRecord
		var percentages pq.Int64Array
		err := rows.Scan(&rec.ID, &rec.Operation, &rec.RequestType, &rec.Mode, &rec.OriginalTokens,
			&percentages, &rec.VersionsRequested, &rec.FinalVersions, &rec.Passed, &rec.ModelUsed, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.TargetPercentages = toIntSlice(percentages)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *TransformationRepository) GetTransformationTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM transformation
	`).Scan(&total)
	return total, err
}

func (r *TransformationRepository) GetTransformationByID(id int64) (*model.TransformationRecord, error) {
	var rec model.TransformationRecord
	var percentages pq.Int64Array
	err := r.db.QueryRow(`
		SELECT id, operation, request_type, mode, original_tokens, target_percentages,
			versions_requested, final_versions, passed, model_used, response_body, created_at
		FROM transformation
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Operation, &rec.RequestType, &rec.Mode, &rec.OriginalTokens,
		&percentages, &rec.VersionsRequested, &rec.FinalVersions, &rec.Passed, &rec.ModelUsed,
		&rec.ResponseBody, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	rec.TargetPercentages = toIntSlice(percentages)
	return &rec, nil
}

func toIntSlice(values pq.Int64Array) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
