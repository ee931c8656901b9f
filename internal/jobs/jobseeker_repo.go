package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const seekerColumns = `id, user_id, phone_number, bio, location, resume, skills, experiences, education, social_links, created_at, updated_at`

type JobSeekerRepository struct {
	DB *pgxpool.Pool
}

func NewJobSeekerRepository(db *pgxpool.Pool) *JobSeekerRepository {
	return &JobSeekerRepository{DB: db}
}

type JobSeekerCreate struct {
	PhoneNumber *string      `json:"phoneNumber"`
	Bio         *string      `json:"bio"`
	Location    *string      `json:"location"`
	Resume      *string      `json:"resume"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	SocialLinks SocialLinks  `json:"socialLinks"`
}

func (r *JobSeekerRepository) Create(ctx context.Context, userID string, in JobSeekerCreate) (*JobSeekerProfile, error) {
	bio := "Bio not added yet"
	if in.Bio != nil && strings.TrimSpace(*in.Bio) != "" {
		bio = *in.Bio
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}

	experiences, err := json.Marshal(orEmptyExperiences(in.Experiences))
	if err != nil {
		return nil, fmt.Errorf("encode experiences: %w", err)
	}
	education, err := json.Marshal(orEmptyEducation(in.Education))
	if err != nil {
		return nil, fmt.Errorf("encode education: %w", err)
	}
	socialLinks, err := json.Marshal(in.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("encode social links: %w", err)
	}

	row := r.DB.QueryRow(ctx, `
		INSERT INTO job_seeker_profiles
		(id, user_id, phone_number, bio, location, resume, skills, experiences, education, social_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+seekerColumns,
		uuid.NewString(), userID, in.PhoneNumber, bio, in.Location, in.Resume,
		in.Skills, experiences, education, socialLinks)

	profile, err := scanSeeker(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateProfile
		}
		return nil, fmt.Errorf("create job seeker profile: %w", err)
	}
	return profile, nil
}

func (r *JobSeekerRepository) FindByID(ctx context.Context, id string) (*JobSeekerProfile, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+seekerColumns+` FROM job_seeker_profiles WHERE id=$1`, id)
	profile, err := scanSeeker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *JobSeekerRepository) FindByUserID(ctx context.Context, userID string) (*JobSeekerProfile, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+seekerColumns+` FROM job_seeker_profiles WHERE user_id=$1`, userID)
	profile, err := scanSeeker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *JobSeekerRepository) Update(ctx context.Context, id string, upd JobSeekerUpdate) (*JobSeekerProfile, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, val)
		idx++
	}

	if upd.PhoneNumber != nil {
		add("phone_number", *upd.PhoneNumber)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Resume != nil {
		add("resume", *upd.Resume)
	}
	if upd.Skills != nil {
		add("skills", *upd.Skills)
	}
	if upd.Experiences != nil {
		raw, err := json.Marshal(orEmptyExperiences(*upd.Experiences))
		if err != nil {
			return nil, fmt.Errorf("encode experiences: %w", err)
		}
		add("experiences", raw)
	}
	if upd.Education != nil {
		raw, err := json.Marshal(orEmptyEducation(*upd.Education))
		if err != nil {
			return nil, fmt.Errorf("encode education: %w", err)
		}
		add("education", raw)
	}
	if upd.SocialLinks != nil {
		raw, err := json.Marshal(*upd.SocialLinks)
		if err != nil {
			return nil, fmt.Errorf("encode social links: %w", err)
		}
		add("social_links", raw)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE job_seeker_profiles SET %s WHERE id=$%d
		RETURNING `+seekerColumns,
		strings.Join(sets, ", "), idx)

	profile, err := scanSeeker(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

func (r *JobSeekerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM job_seeker_profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSeeker(row pgx.Row) (*JobSeekerProfile, error) {
	var (
		p           JobSeekerProfile
		experiences []byte
		education   []byte
		socialLinks []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.PhoneNumber, &p.Bio, &p.Location, &p.Resume,
		&p.Skills, &experiences, &education, &socialLinks, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(experiences, &p.Experiences); err != nil {
		return nil, fmt.Errorf("decode experiences: %w", err)
	}
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("decode education: %w", err)
	}
	if err := json.Unmarshal(socialLinks, &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

func orEmptyExperiences(in []Experience) []Experience {
	if in == nil {
		return []Experience{}
	}
	return in
}

func orEmptyEducation(in []Education) []Education {
	if in == nil {
		return []Education{}
	}
	return in
}
