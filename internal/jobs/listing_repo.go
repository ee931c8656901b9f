package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `id, employer_id, title, description, location, salary, is_filled, application_count, status, work_mode, experience_level, job_type, skills, created_at, updated_at`

type ListingRepository struct {
	DB *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{DB: db}
}

type ListingCreate struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	Salary          int64           `json:"salary"`
	Status          ListingStatus   `json:"status"`
	WorkMode        WorkMode        `json:"workMode"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	JobType         JobType         `json:"jobType"`
	Skills          []string        `json:"skills"`
}

func (r *ListingRepository) Create(ctx context.Context, employerID string, in ListingCreate) (*JobListing, error) {
	if in.Skills == nil {
		in.Skills = []string{}
	}

	row := r.DB.QueryRow(ctx, `
		INSERT INTO job_listings
		(id, employer_id, title, description, location, salary, status, work_mode, experience_level, job_type, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+listingColumns,
		uuid.NewString(), employerID, in.Title, in.Description, in.Location, in.Salary,
		in.Status, in.WorkMode, in.ExperienceLevel, in.JobType, in.Skills)

	listing, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("create job listing: %w", err)
	}
	return listing, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*JobListing, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id=$1`, id)
	listing, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return listing, err
}

func (r *ListingRepository) All(ctx context.Context) ([]JobListing, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+listingColumns+` FROM job_listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) Filter(ctx context.Context, f ListingFilter) ([]JobListing, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	add := func(cond string, val interface{}) {
		where = append(where, fmt.Sprintf(cond, idx))
		args = append(args, val)
		idx++
	}

	if f.Location != "" {
		add("location ILIKE $%d", "%"+f.Location+"%")
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.WorkMode != "" {
		add("work_mode=$%d", f.WorkMode)
	}
	if f.ExperienceLevel != "" {
		add("experience_level=$%d", f.ExperienceLevel)
	}
	if f.JobType != "" {
		add("job_type=$%d", f.JobType)
	}
	if f.MinSalary > 0 {
		add("salary >= $%d", f.MinSalary)
	}

	query := `SELECT ` + listingColumns + ` FROM job_listings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// Recommend returns open listings sharing at least one skill with the
// given set, newest first. An empty skill set matches nothing.
func (r *ListingRepository) Recommend(ctx context.Context, skills []string) ([]JobListing, error) {
	if len(skills) == 0 {
		return []JobListing{}, nil
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+listingColumns+` FROM job_listings
		WHERE status=$1 AND skills && $2
		ORDER BY created_at DESC
	`, ListingOpen, skills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) ByEmployer(ctx context.Context, employerID string) ([]JobListing, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+listingColumns+` FROM job_listings WHERE employer_id=$1 ORDER BY created_at DESC
	`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) Update(ctx context.Context, id string, upd ListingUpdate) (*JobListing, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, val)
		idx++
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Salary != nil {
		add("salary", *upd.Salary)
	}
	if upd.IsFilled != nil {
		add("is_filled", *upd.IsFilled)
	}
	if upd.WorkMode != nil {
		add("work_mode", *upd.WorkMode)
	}
	if upd.ExperienceLevel != nil {
		add("experience_level", *upd.ExperienceLevel)
	}
	if upd.JobType != nil {
		add("job_type", *upd.JobType)
	}
	if upd.Skills != nil {
		add("skills", *upd.Skills)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE job_listings SET %s WHERE id=$%d
		RETURNING `+listingColumns,
		strings.Join(sets, ", "), idx)

	listing, err := scanListing(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return listing, err
}

func (r *ListingRepository) SetStatus(ctx context.Context, id string, status ListingStatus) (*JobListing, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE job_listings SET status=$1, updated_at=NOW() WHERE id=$2
		RETURNING `+listingColumns,
		status, id)
	listing, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return listing, err
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM job_listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) IncrementApplications(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE job_listings SET application_count=application_count+1, updated_at=NOW() WHERE id=$1
	`, id)
	return err
}

func scanListing(row pgx.Row) (*JobListing, error) {
	var l JobListing
	err := row.Scan(&l.ID, &l.EmployerID, &l.Title, &l.Description, &l.Location, &l.Salary,
		&l.IsFilled, &l.ApplicationCount, &l.Status, &l.WorkMode, &l.ExperienceLevel,
		&l.JobType, &l.Skills, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if l.Skills == nil {
		l.Skills = []string{}
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]JobListing, error) {
	listings := []JobListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}
