package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// respondError maps a service error onto a status code and writes it.
// Internal failures are logged at error level and their detail is hidden.
func respondError(c *gin.Context, logger *slog.Logger, err error, failureMsg string) {
	var unbalanced *apperrors.UnbalancedEntryError
	switch {
	case errors.As(err, &unbalanced):
		logger.Warn("Unbalanced journal entry rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"debitTotal":  unbalanced.DebitTotal,
			"creditTotal": unbalanced.CreditTotal,
		})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict with recorded state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(failureMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failureMsg})
	}
}

// parseDateParam reads an optional date query parameter. Both YYYY-MM-DD and
// RFC 3339 are accepted; a bare date is read as the end of that day (UTC) when
// endOfDay is set and as its start otherwise.
func parseDateParam(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperrors.Validationf("invalid %s %q, use YYYY-MM-DD", name, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
