package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler exposes cache maintenance and snapshot operations.
type ledgerHandler struct {
	balanceService  portssvc.BalanceResolverSvc
	snapshotService portssvc.SnapshotSvc
}

// RegisterLedgerRoutes registers ledger maintenance routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceResolverSvc, snapshotService portssvc.SnapshotSvc) {
	h := &ledgerHandler{balanceService: balanceService, snapshotService: snapshotService}

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/verify", h.verifyCache)
		ledger.POST("/rebuild", h.rebuildCache)
		ledger.GET("/snapshot", h.exportSnapshot)
		ledger.POST("/snapshot", h.saveSnapshot)
		ledger.POST("/snapshot/restore", h.restoreSnapshot)
	}
}

// verifyCache godoc
// @Summary Verify cached balances
// @Description Compares every cached balance with a full replay of the journal
// @Tags ledger
// @Produce  json
// @Success 200 {object} domain.CacheVerification
// @Failure 500 {object} map[string]string "Failed to verify balances"
// @Router /ledger/verify [get]
func (h *ledgerHandler) verifyCache(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.balanceService.VerifyCache(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to verify balances")
		return
	}

	c.JSON(http.StatusOK, result)
}

// rebuildCache godoc
// @Summary Rebuild cached balances
// @Description Overwrites cached balances with a full replay and reports what changed
// @Tags ledger
// @Produce  json
// @Success 200 {object} domain.CacheVerification
// @Failure 500 {object} map[string]string "Failed to rebuild balances"
// @Router /ledger/rebuild [post]
func (h *ledgerHandler) rebuildCache(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.balanceService.RebuildCache(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to rebuild balances")
		return
	}

	logger.Info("Cached balances rebuilt", slog.Int("corrected", len(result.Warnings)))
	c.JSON(http.StatusOK, result)
}

// exportSnapshot godoc
// @Summary Export the ledger state
// @Tags ledger
// @Produce  json
// @Success 200 {object} domain.Snapshot
// @Failure 500 {object} map[string]string "Failed to export snapshot"
// @Router /ledger/snapshot [get]
func (h *ledgerHandler) exportSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snap, err := h.snapshotService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to export snapshot")
		return
	}

	c.JSON(http.StatusOK, snap)
}

// saveSnapshot godoc
// @Summary Persist a snapshot
// @Description Writes the current state to the configured snapshot repository
// @Tags ledger
// @Success 204 "No Content"
// @Failure 500 {object} map[string]string "Failed to save snapshot"
// @Router /ledger/snapshot [post]
func (h *ledgerHandler) saveSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := h.snapshotService.Save(c.Request.Context()); err != nil {
		respondError(c, logger, err, "Failed to save snapshot")
		return
	}

	logger.Info("Snapshot saved")
	c.Status(http.StatusNoContent)
}

// restoreSnapshot godoc
// @Summary Restore the latest snapshot
// @Description Replaces the in-memory state with the latest persisted snapshot
// @Tags ledger
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "No snapshot stored"
// @Failure 500 {object} map[string]string "Failed to restore snapshot"
// @Router /ledger/snapshot/restore [post]
func (h *ledgerHandler) restoreSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := h.snapshotService.Restore(c.Request.Context()); err != nil {
		respondError(c, logger, err, "Failed to restore snapshot")
		return
	}

	logger.Info("Snapshot restored")
	c.Status(http.StatusNoContent)
}
