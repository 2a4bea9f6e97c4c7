// Package service contains the core URL shortening business logic: URL
// validation, duplicate detection, short code generation with retry and
// click counting.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shorty/internal/database"
	"github.com/vadimbarashkov/shorty/internal/models"
	"github.com/vadimbarashkov/shorty/internal/shortcode"
)

// maxGenerationAttempts bounds the generate-and-check loop. Exceeding it at
// the default alphabet and length signals a misconfigured code space rather
// than a transient condition.
const maxGenerationAttempts = 10

// ErrCodeSpaceExhausted is returned when the maximum number of attempts for
// generating a unique short code is exceeded.
var ErrCodeSpaceExhausted = errors.New("exhausted attempts to generate unique short code")

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Create inserts a new shortened URL into the repository.
	// Returns database.ErrShortCodeExists if the short code is already taken.
	Create(ctx context.Context, shortCode, longURL string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code without mutating it.
	// Returns database.ErrURLNotFound if no such record exists.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByLongURL retrieves a URL by exact match of its long URL.
	// Returns database.ErrURLNotFound if no such record exists.
	GetByLongURL(ctx context.Context, longURL string) (*models.URL, error)

	// ExistsByShortCode reports whether a record with the short code exists.
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)

	// IncrementClickCount atomically increments the click counter for the
	// short code and returns the updated record.
	IncrementClickCount(ctx context.Context, shortCode string) (*models.URL, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// SumClickCounts returns the total click count across all records.
	SumClickCounts(ctx context.Context) (int64, error)
}

// URLService provides methods to manage URL shortening operations.
// It is stateless between calls; all shared mutable state lives in the
// repository, so the service needs no internal synchronization.
type URLService struct {
	repo         URLRepository
	gen          *shortcode.Generator
	validateURLs bool
}

// NewURLService creates a new URLService with the provided repository and
// short code generator. When validateURLs is false, every submitted URL is
// accepted verbatim.
func NewURLService(repo URLRepository, gen *shortcode.Generator, validateURLs bool) *URLService {
	return &URLService{
		repo:         repo,
		gen:          gen,
		validateURLs: validateURLs,
	}
}

// ShortenURL creates a short code for the provided long URL and stores the
// mapping. Submitting a long URL that is already stored returns the existing
// record unchanged instead of creating a duplicate.
//
// Two concurrent first-time requests for the same long URL may both miss the
// duplicate check and end up with two distinct codes. That race is accepted:
// the unique constraint on short codes keeps the data consistent, and a
// stray duplicate mapping does not corrupt anything.
func (s *URLService) ShortenURL(ctx context.Context, longURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if s.validateURLs {
		if err := ValidateURL(longURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	url, err := s.repo.GetByLongURL(ctx, longURL)
	if err == nil {
		return url, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to check for existing url: %w", op, err)
	}

	for i := 0; i < maxGenerationAttempts; i++ {
		shortCode, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		exists, err := s.repo.ExistsByShortCode(ctx, shortCode)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if exists {
			continue
		}

		url, err := s.repo.Create(ctx, shortCode, longURL)
		if err != nil {
			// A concurrent writer may take the code between the existence
			// check and the insert. The unique constraint surfaces that as
			// ErrShortCodeExists, which counts as a collision.
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrCodeSpaceExhausted)
}

// ResolveShortCode retrieves the URL associated with the provided short code
// without touching the click counter.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// ResolveAndCount retrieves the URL associated with the provided short code
// and increments its click counter as a single atomic update, so concurrent
// redirects never lose increments.
func (s *URLService) ResolveAndCount(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveAndCount"

	url, err := s.repo.IncrementClickCount(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats retrieves the URL associated with the provided short code,
// including its click count.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// GetSystemStats aggregates usage counters across all stored URLs.
func (s *URLService) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	const op = "service.URLService.GetSystemStats"

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count urls: %w", op, err)
	}

	clicks, err := s.repo.SumClickCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to sum click counts: %w", op, err)
	}

	stats := &models.SystemStats{
		TotalURLs:   total,
		TotalClicks: clicks,
	}
	if total > 0 {
		stats.AvgClicksPerURL = float64(clicks) / float64(total)
	}

	return stats, nil
}
