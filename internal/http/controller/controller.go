package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/auth"
	"github.com/iyhunko/inventory-dashboard/internal/exchange"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/iyhunko/inventory-dashboard/internal/service"
)

const dateLayout = "2006-01-02"

// Controller handles general HTTP requests.
type Controller struct{}

// New creates a new Controller.
func New() *Controller {
	return &Controller{}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// respondError maps err to a status code. Unknown errors are logged and reported as a generic 500.
func respondError(c *gin.Context, err error, action string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, repository.ErrInvalidPaginationToken),
		errors.Is(err, exchange.ErrInvalidRate):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUserExists):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("action", action),
			slog.String("path", c.Request.URL.Path),
			slog.Any("err", err))
		c.JSON(status, gin.H{"error": "failed to " + action})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// DateRangeRequest holds the optional report bounds. A bare date covers the whole day.
type DateRangeRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (r DateRangeRequest) toRange() (service.DateRange, error) {
	var dates service.DateRange
	if r.StartDate != "" {
		from, _, err := parseDate(r.StartDate)
		if err != nil {
			return dates, fmt.Errorf("invalid start_date: %w", err)
		}
		dates.From = &from
	}
	if r.EndDate != "" {
		to, dayOnly, err := parseDate(r.EndDate)
		if err != nil {
			return dates, fmt.Errorf("invalid end_date: %w", err)
		}
		if dayOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		dates.To = &to
	}
	if dates.From != nil && dates.To != nil && dates.To.Before(*dates.From) {
		return dates, errors.New("end_date is before start_date")
	}
	return dates, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339 and reports whether the value was a bare date.
func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", value)
	}
	return t.UTC(), false, nil
}
