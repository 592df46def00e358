package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

type taxHandler struct {
	taxService portssvc.TaxSvc
}

// RegisterTaxRoutes registers tax rate and tax settings routes.
func RegisterTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxSvc) {
	h := &taxHandler{taxService: taxService}

	tax := rg.Group("/tax")
	{
		tax.POST("/rates", h.createTaxRate)
		tax.GET("/rates", h.listTaxRates)
		tax.POST("/rates/:id/deactivate", h.deactivateTaxRate)
		tax.GET("/settings", h.getTaxSettings)
		tax.PUT("/settings", h.updateTaxSettings)
		tax.POST("/compute", h.computeTax)
	}
}

// createTaxRate godoc
// @Summary Create a tax rate
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateTaxRateRequest true "Tax rate"
// @Success 201 {object} domain.TaxRate
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create tax rate"
// @Router /tax/rates [post]
func (h *taxHandler) createTaxRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTaxRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rate, err := h.taxService.CreateTaxRate(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to create tax rate")
		return
	}

	logger.Info("Tax rate created", slog.String("tax_rate_id", rate.TaxRateID), slog.String("rate", rate.Rate.String()))
	c.JSON(http.StatusCreated, rate)
}

// listTaxRates godoc
// @Summary List tax rates
// @Tags tax
// @Produce  json
// @Param   activeOnly query bool false "Only active rates"
// @Success 200 {array} domain.TaxRate
// @Failure 500 {object} map[string]string "Failed to list tax rates"
// @Router /tax/rates [get]
func (h *taxHandler) listTaxRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	activeOnly, _ := strconv.ParseBool(c.Query("activeOnly"))
	rates, err := h.taxService.ListTaxRates(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, logger, err, "Failed to list tax rates")
		return
	}

	c.JSON(http.StatusOK, rates)
}

// deactivateTaxRate godoc
// @Summary Deactivate a tax rate
// @Tags tax
// @Param   id path string true "Tax rate ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Tax rate not found"
// @Failure 500 {object} map[string]string "Failed to deactivate tax rate"
// @Router /tax/rates/{id}/deactivate [post]
func (h *taxHandler) deactivateTaxRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("tax_rate_id", c.Param("id")))

	if err := h.taxService.DeactivateTaxRate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to deactivate tax rate")
		return
	}

	c.Status(http.StatusNoContent)
}

// getTaxSettings godoc
// @Summary Get tax settings
// @Tags tax
// @Produce  json
// @Success 200 {object} domain.TaxSettings
// @Failure 500 {object} map[string]string "Failed to retrieve tax settings"
// @Router /tax/settings [get]
func (h *taxHandler) getTaxSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	settings, err := h.taxService.GetTaxSettings(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve tax settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// updateTaxSettings godoc
// @Summary Update tax settings
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   settings body dto.UpdateTaxSettingsRequest true "Tax settings"
// @Success 200 {object} domain.TaxSettings
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to update tax settings"
// @Router /tax/settings [put]
func (h *taxHandler) updateTaxSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateTaxSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTaxSettings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	settings, err := h.taxService.UpdateTaxSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update tax settings")
		return
	}

	logger.Info("Tax settings updated", slog.Bool("inclusive", settings.Inclusive))
	c.JSON(http.StatusOK, settings)
}

// computeTax godoc
// @Summary Compute the tax split of an amount
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   request body dto.ComputeTaxRequest true "Amount and optional rate"
// @Success 200 {object} domain.TaxBreakdown
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Tax rate not found"
// @Failure 500 {object} map[string]string "Failed to compute tax"
// @Router /tax/compute [post]
func (h *taxHandler) computeTax(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ComputeTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ComputeTax", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	breakdown, err := h.taxService.ComputeTax(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to compute tax")
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
