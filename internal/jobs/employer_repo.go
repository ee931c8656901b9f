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

const uniqueViolation = "23505"

const employerColumns = `id, user_id, company_name, company_website, company_description, company_size, industry, company_location, created_at, updated_at`

type EmployerRepository struct {
	DB *pgxpool.Pool
}

func NewEmployerRepository(db *pgxpool.Pool) *EmployerRepository {
	return &EmployerRepository{DB: db}
}

type EmployerCreate struct {
	CompanyName        string  `json:"companyName"`
	CompanyWebsite     *string `json:"companyWebsite"`
	CompanyDescription *string `json:"companyDescription"`
	CompanySize        *string `json:"companySize"`
	Industry           *string `json:"industry"`
	CompanyLocation    *string `json:"companyLocation"`
}

func (r *EmployerRepository) Create(ctx context.Context, userID string, in EmployerCreate) (*EmployerProfile, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO employer_profiles
		(id, user_id, company_name, company_website, company_description, company_size, industry, company_location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+employerColumns,
		uuid.NewString(), userID, in.CompanyName, in.CompanyWebsite, in.CompanyDescription,
		in.CompanySize, in.Industry, in.CompanyLocation)

	profile, err := scanEmployer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateProfile
		}
		return nil, fmt.Errorf("create employer profile: %w", err)
	}
	return profile, nil
}

func (r *EmployerRepository) FindByID(ctx context.Context, id string) (*EmployerProfile, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+employerColumns+` FROM employer_profiles WHERE id=$1`, id)
	profile, err := scanEmployer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *EmployerRepository) FindByUserID(ctx context.Context, userID string) (*EmployerProfile, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+employerColumns+` FROM employer_profiles WHERE user_id=$1`, userID)
	profile, err := scanEmployer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *EmployerRepository) Update(ctx context.Context, id string, upd EmployerUpdate) (*EmployerProfile, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, val)
		idx++
	}

	if upd.CompanyName != nil {
		add("company_name", *upd.CompanyName)
	}
	if upd.CompanyWebsite != nil {
		add("company_website", *upd.CompanyWebsite)
	}
	if upd.CompanyDescription != nil {
		add("company_description", *upd.CompanyDescription)
	}
	if upd.CompanySize != nil {
		add("company_size", *upd.CompanySize)
	}
	if upd.Industry != nil {
		add("industry", *upd.Industry)
	}
	if upd.CompanyLocation != nil {
		add("company_location", *upd.CompanyLocation)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE employer_profiles SET %s WHERE id=$%d
		RETURNING `+employerColumns,
		strings.Join(sets, ", "), idx)

	profile, err := scanEmployer(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *EmployerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM employer_profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployer(row pgx.Row) (*EmployerProfile, error) {
	var p EmployerProfile
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.CompanyWebsite, &p.CompanyDescription,
		&p.CompanySize, &p.Industry, &p.CompanyLocation, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
