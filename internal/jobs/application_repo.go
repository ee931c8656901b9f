package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationColumns = `id, job_id, applicant_id, employer_id, status, cover_letter, resume, created_at, updated_at`

type ApplicationRepository struct {
	DB *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

type ApplicationCreate struct {
	JobID       string
	ApplicantID string
	EmployerID  string
	CoverLetter string
	Resume      *string
}

func (r *ApplicationRepository) Create(ctx context.Context, in ApplicationCreate) (*JobApplication, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO job_applications
		(id, job_id, applicant_id, employer_id, status, cover_letter, resume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+applicationColumns,
		uuid.NewString(), in.JobID, in.ApplicantID, in.EmployerID, ApplicationPending,
		in.CoverLetter, in.Resume)

	app, err := scanApplication(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*JobApplication, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id=$1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

func (r *ApplicationRepository) ByApplicant(ctx context.Context, applicantID string) ([]JobApplication, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+applicationColumns+` FROM job_applications WHERE applicant_id=$1 ORDER BY created_at DESC
	`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ByJob(ctx context.Context, jobID string) ([]JobApplication, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+applicationColumns+` FROM job_applications WHERE job_id=$1 ORDER BY created_at DESC
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ByEmployer(ctx context.Context, employerID string) ([]JobApplication, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+applicationColumns+` FROM job_applications WHERE employer_id=$1 ORDER BY created_at DESC
	`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) Exists(ctx context.Context, jobID, applicantID string) (bool, error) {
	var count int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM job_applications WHERE job_id=$1 AND applicant_id=$2
	`, jobID, applicantID).Scan(&count)
	return count > 0, err
}

func (r *ApplicationRepository) Update(ctx context.Context, id string, upd ApplicationUpdate) (*JobApplication, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	if upd.CoverLetter != nil {
		sets = append(sets, fmt.Sprintf("cover_letter=$%d", idx))
		args = append(args, *upd.CoverLetter)
		idx++
	}
	if upd.Resume != nil {
		sets = append(sets, fmt.Sprintf("resume=$%d", idx))
		args = append(args, *upd.Resume)
		idx++
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE job_applications SET %s WHERE id=$%d
		RETURNING `+applicationColumns,
		strings.Join(sets, ", "), idx)

	app, err := scanApplication(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

func (r *ApplicationRepository) SetStatus(ctx context.Context, id string, status ApplicationStatus) (*JobApplication, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE job_applications SET status=$1, updated_at=NOW() WHERE id=$2
		RETURNING `+applicationColumns,
		status, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM job_applications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*JobApplication, error) {
	var a JobApplication
	err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.EmployerID, &a.Status,
		&a.CoverLetter, &a.Resume, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]JobApplication, error) {
	apps := []JobApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}
