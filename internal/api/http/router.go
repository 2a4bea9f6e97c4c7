// Package http provides the HTTP delivery layer for the URL shortener.
// It routes requests to the shortening engine and maps its results and
// errors to status codes and JSON payloads.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shorty/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL creates a shortened version of the provided long URL, or
	// returns the existing record if the URL was already shortened.
	ShortenURL(ctx context.Context, longURL string) (*models.URL, error)

	// ResolveAndCount retrieves the URL for a short code and increments its
	// click counter atomically.
	ResolveAndCount(ctx context.Context, shortCode string) (*models.URL, error)

	// GetURLStats retrieves the URL for a short code, including its click count.
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)

	// GetSystemStats aggregates usage counters across all stored URLs.
	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
// baseURL is the public prefix short URLs are served under.
func NewRouter(logger *httplog.Logger, urlSvc URLService, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Route("/api", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)
		r.Get("/health", handleHealth(urlSvc))
		r.Get("/stats", handleGetSystemStats(urlSvc))

		r.Route("/urls", func(r chi.Router) {
			r.Post("/", handleShortenURL(urlSvc, validate, baseURL))
			r.Get("/{shortCode}/stats", handleGetURLStats(urlSvc, baseURL))
		})
	})

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}
