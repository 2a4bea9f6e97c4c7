package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shorty/internal/database"
	"github.com/vadimbarashkov/shorty/internal/models"
)

type urlRecord struct {
	ID         int64     `db:"id"`
	ShortCode  string    `db:"short_code"`
	LongURL    string    `db:"long_url"`
	ClickCount int64     `db:"click_count"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:         r.ID,
		ShortCode:  r.ShortCode,
		LongURL:    r.LongURL,
		ClickCount: r.ClickCount,
		CreatedAt:  r.CreatedAt,
	}
}

// URLRepository provides access to the urls table. Uniqueness of short codes
// is enforced by the table's UNIQUE constraint, independent of any checks
// made by callers.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new url record. It returns database.ErrShortCodeExists if
// the short code lost a uniqueness race to a concurrent writer.
func (r *URLRepository) Create(ctx context.Context, shortCode, longURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, long_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, longURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByShortCode retrieves a url record by its short code without touching
// the click counter.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByLongURL retrieves a url record by exact match of the long URL. It is
// used for duplicate detection when shortening.
func (r *URLRepository) GetByLongURL(ctx context.Context, longURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByLongURL"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE long_url = $1 LIMIT 1`

	err := r.db.GetContext(ctx, rec, query, longURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// ExistsByShortCode reports whether a url record with the given short code exists.
func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "database.postgres.URLRepository.ExistsByShortCode"

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	err := r.db.GetContext(ctx, &exists, query, shortCode)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check url record existence: %w", op, err)
	}

	return exists, nil
}

// IncrementClickCount atomically increments the click counter for the given
// short code and returns the updated record. The increment and the read are a
// single UPDATE, so concurrent resolves never lose updates.
func (r *URLRepository) IncrementClickCount(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.IncrementClickCount"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	return rec.ToURL(), nil
}

// Count returns the number of stored url records.
func (r *URLRepository) Count(ctx context.Context) (int64, error) {
	const op = "database.postgres.URLRepository.Count"

	var count int64
	query := `SELECT COUNT(*) FROM urls`

	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count url records: %w", op, err)
	}

	return count, nil
}

// SumClickCounts returns the total number of clicks across all url records.
func (r *URLRepository) SumClickCounts(ctx context.Context) (int64, error) {
	const op = "database.postgres.URLRepository.SumClickCounts"

	var sum int64
	query := `SELECT COALESCE(SUM(click_count), 0) FROM urls`

	err := r.db.GetContext(ctx, &sum, query)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to sum click counts: %w", op, err)
	}

	return sum, nil
}
