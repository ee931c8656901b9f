package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookmarkRepository struct {
	DB *pgxpool.Pool
}

func NewBookmarkRepository(db *pgxpool.Pool) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

func (r *BookmarkRepository) Create(ctx context.Context, userID, jobListingID string) (*Bookmark, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO bookmarks (id, user_id, job_listing_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, job_listing_id, created_at
	`, uuid.NewString(), userID, jobListingID)

	var b Bookmark
	if err := row.Scan(&b.ID, &b.UserID, &b.JobListingID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateBookmark
		}
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	return &b, nil
}

func (r *BookmarkRepository) Delete(ctx context.Context, userID, jobListingID string) error {
	tag, err := r.DB.Exec(ctx, `
		DELETE FROM bookmarks WHERE user_id=$1 AND job_listing_id=$2
	`, userID, jobListingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookmarkRepository) ByUser(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, job_listing_id, created_at
		FROM bookmarks WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []Bookmark{}
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.JobListingID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (r *BookmarkRepository) Exists(ctx context.Context, userID, jobListingID string) (bool, error) {
	var count int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookmarks WHERE user_id=$1 AND job_listing_id=$2
	`, userID, jobListingID).Scan(&count)
	return count > 0, err
}
