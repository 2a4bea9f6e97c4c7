package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorty/internal/database"
	"github.com/vadimbarashkov/shorty/internal/models"
	"github.com/vadimbarashkov/shorty/internal/service"
	"github.com/vadimbarashkov/shorty/pkg/response"
)

// createdAtLayout is an ISO-8601 local date-time with second precision.
const createdAtLayout = "2006-01-02T15:04:05"

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// urlRequest represents the request payload for shortening a URL.
//
// Blank and oversized URLs are structural violations rejected here with
// per-field details; semantic URL validation (scheme, host) belongs to the
// shortening engine.
type urlRequest struct {
	LongURL string `json:"longUrl" validate:"required,max=2048"`
}

// urlResponse represents the response payload for a shortened URL.
type urlResponse struct {
	ShortCode string `json:"shortCode"`
	LongURL   string `json:"longUrl"`
	ShortURL  string `json:"shortUrl"`
	CreatedAt string `json:"createdAt"`
}

// urlStatsResponse extends urlResponse with the click counter.
type urlStatsResponse struct {
	urlResponse
	ClickCount int64 `json:"clickCount"`
}

// systemStatsResponse represents the system-wide usage counters.
type systemStatsResponse struct {
	TotalURLs           int64   `json:"totalUrls"`
	TotalClicks         int64   `json:"totalClicks"`
	AverageClicksPerURL float64 `json:"averageClicksPerUrl"`
}

// toURLResponse converts a URL model from the business layer into a response payload.
func toURLResponse(url *models.URL, baseURL string) urlResponse {
	return urlResponse{
		ShortCode: url.ShortCode,
		LongURL:   url.LongURL,
		ShortURL:  strings.TrimSuffix(baseURL, "/") + "/" + url.ShortCode,
		CreatedAt: url.CreatedAt.Format(createdAtLayout),
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The handler validates the request structurally, delegates to the shortening
// engine and returns the created mapping. Resubmitting a known URL returns
// the existing mapping with the same 201 status.
func handleShortenURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.LongURL)
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidURLResponse(errors.Unwrap(err)))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, toURLResponse(url, baseURL))
	}
}

// handleRedirect handles GET requests on a short code.
//
// The handler resolves the code, increments its click counter and replies
// with a 302 redirect to the long URL, or a 404 error if the code is unknown.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveAndCount(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.LongURL, http.StatusFound)
	}
}

// handleGetURLStats handles GET requests to retrieve usage statistics for a shortened URL.
func handleGetURLStats(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, urlStatsResponse{
			urlResponse: toURLResponse(url, baseURL),
			ClickCount:  url.ClickCount,
		})
	}
}

// handleGetSystemStats handles GET requests to retrieve system-wide usage counters.
func handleGetSystemStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetSystemStats"

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GetSystemStats(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, systemStatsResponse{
			TotalURLs:           stats.TotalURLs,
			TotalClicks:         stats.TotalClicks,
			AverageClicksPerURL: stats.AvgClicksPerURL,
		})
	}
}

// handleHealth handles GET requests for a database-backed health status.
func handleHealth(svc URLService) http.HandlerFunc {
	const op = "api.http.handleHealth"

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GetSystemStats(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.ServiceUnavailableResponse)
			return
		}

		msg := fmt.Sprintf("Database accessible, %d urls stored.", stats.TotalURLs)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(msg))
	}
}
