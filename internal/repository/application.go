package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"estate-intake/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type ApplicationsFilter struct {
	BHKType        *string
	ApplicantCount *int
	Search         *string
}

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	query := `
		INSERT INTO applications (id, application_id, form_data, applicant_count, bhk_type, pdf_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ApplicationID,
		a.FormData,
		a.ApplicantCount,
		a.BHKType,
		a.PDFKey,
	)
	return err
}

// List returns applications newest first.
func (r *ApplicationRepository) List(ctx context.Context, f ApplicationsFilter) ([]domain.Application, error) {
	baseQuery := `
		SELECT
			a.id,
			a.application_id,
			a.form_data,
			a.applicant_count,
			a.bhk_type,
			a.pdf_key,
			a.created_at,
			a.updated_at
		FROM applications a
	`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.BHKType != nil {
		where = append(where, fmt.Sprintf("a.bhk_type = $%d", i))
		args = append(args, *f.BHKType)
		i++
	}

	if f.ApplicantCount != nil {
		where = append(where, fmt.Sprintf("a.applicant_count = $%d", i))
		args = append(args, *f.ApplicantCount)
		i++
	}

	if f.Search != nil {
		where = append(where, fmt.Sprintf("(a.application_id ILIKE $%d OR a.form_data ILIKE $%d)", i, i))
		args = append(args, "%"+*f.Search+"%")
		i++
	}

	query := baseQuery + " WHERE " + strings.Join(where, " AND ") + " ORDER BY a.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Application

	for rows.Next() {
		var a domain.Application

		if err := rows.Scan(
			&a.ID,
			&a.ApplicationID,
			&a.FormData,
			&a.ApplicantCount,
			&a.BHKType,
			&a.PDFKey,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}

		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindByID accepts either the readable application id (EST-XXXXXX) or the
// internal UUID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	var column string
	if strings.HasPrefix(id, domain.ApplicationIDPrefix) {
		column = "application_id"
	} else {
		column = "id"
	}

	query := `
		SELECT
			a.id,
			a.application_id,
			a.form_data,
			a.applicant_count,
			a.bhk_type,
			a.pdf_key,
			a.created_at,
			a.updated_at
		FROM applications a
		WHERE a.` + column + ` = $1
	`

	var a domain.Application
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.ApplicationID,
		&a.FormData,
		&a.ApplicantCount,
		&a.BHKType,
		&a.PDFKey,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *ApplicationRepository) UpdatePDFKey(ctx context.Context, id string, pdfKey string) error {
	query := `
		UPDATE applications
		SET pdf_key = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, pdfKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
