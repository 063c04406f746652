// Package handler implements the HTTP endpoints of the IMDb API.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/scraper"
)

// Version is reported by GET /health.
const Version = "0.1.0"

var imdbIDRE = regexp.MustCompile(`^tt\d+$`)

// IMDb is the extraction surface the handlers depend on. *scraper.Scraper
// implements it.
type IMDb interface {
	FindTitle(ctx context.Context, id, locale string, includeEpisodes bool) (*models.Title, error)
	Search(ctx context.Context, q scraper.SearchQuery) []models.SearchResult
}

// SessionStats reports the state of the browser session. *browser.Session
// implements it.
type SessionStats interface {
	Stats() models.BrowserInfo
}

func validID(id string) bool {
	return imdbIDRE.MatchString(id)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: message},
	})
}

// respondError writes the response for a failed title lookup. Any scrape
// failure means the title could not be produced, so it is reported as
// NOT_FOUND with the underlying code kept in the message.
func respondError(c *gin.Context, id string, err error) {
	code := models.ErrorCode(err)
	status := mapErrorToStatus(code)

	detail := &models.ErrorDetail{Code: code, Message: err.Error()}
	if status == http.StatusNotFound {
		detail = &models.ErrorDetail{
			Code:    models.ErrCodeNotFound,
			Message: fmt.Sprintf("title %s could not be extracted (%s)", id, code),
		}
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeSession, models.ErrCodeNavigation, models.ErrCodeTimeout,
		models.ErrCodeExtraction, models.ErrCodeNotFound:
		return http.StatusNotFound
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
