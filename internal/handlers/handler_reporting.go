package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	clock            func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		clock:            time.Now,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/general-ledger", h.getGeneralLedger)
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/cash-flow", h.getCashFlow)
		reportingGroup.GET("/tax", h.getTaxReport)
	}
}

// period reads startDate and endDate. A missing endDate means today and a
// missing startDate means the first day of the end date's month.
func (h *reportingHandler) period(c *gin.Context) (dto.PeriodParams, error) {
	start, err := parseDateParam(c, "startDate", false)
	if err != nil {
		return dto.PeriodParams{}, err
	}
	end, err := parseDateParam(c, "endDate", true)
	if err != nil {
		return dto.PeriodParams{}, err
	}
	if end == nil {
		now := h.clock().UTC()
		e := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	if start == nil {
		s := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
		start = &s
	}
	return dto.PeriodParams{StartDate: *start, EndDate: *end}, nil
}

// getGeneralLedger godoc
// @Summary Generate general ledger
// @Description Running-balance view of one account, or every active account, over a window
// @Tags reports
// @Produce json
// @Param accountID query string false "Account ID; all active accounts when empty"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {array} domain.AccountLedger
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/general-ledger [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	start, err := parseDateParam(c, "startDate", false)
	if err != nil {
		respondError(c, logger, err, "Failed to generate general ledger")
		return
	}
	end, err := parseDateParam(c, "endDate", true)
	if err != nil {
		respondError(c, logger, err, "Failed to generate general ledger")
		return
	}

	ledgers, err := h.reportingService.GeneralLedger(c.Request.Context(), dto.GeneralLedgerParams{
		AccountID: c.Query("accountID"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		respondError(c, logger, err, "Failed to generate general ledger")
		return
	}

	logger.Info("General ledger generated", slog.Int("account_count", len(ledgers)))
	c.JSON(http.StatusOK, ledgers)
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report as of a specific date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD, inclusive); defaults to now"
// @Success 200 {object} domain.TrialBalanceReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseDateParam(c, "asOf", true)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(report.Rows)), slog.Bool("balanced", report.Balanced))
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Generates a balance sheet as of a specific date, including unclosed earnings in equity
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD, inclusive); defaults to now"
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseDateParam(c, "asOf", true)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet report")
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet report")
		return
	}

	logger.Info("Balance sheet report generated successfully", slog.Bool("balanced", report.Balanced))
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Description Revenue, COGS and expense activity for a period
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD); defaults to the first of the month"
// @Param endDate query string false "End date (YYYY-MM-DD, inclusive); defaults to today"
// @Success 200 {object} domain.IncomeStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	period, err := h.period(c)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), period)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}

	c.JSON(http.StatusOK, report)
}

// getCashFlow godoc
// @Summary Generate cash flow statement
// @Description Indirect-method cash flow statement for a period
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD); defaults to the first of the month"
// @Param endDate query string false "End date (YYYY-MM-DD, inclusive); defaults to today"
// @Success 200 {object} domain.CashFlowStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	period, err := h.period(c)
	if err != nil {
		respondError(c, logger, err, "Failed to generate cash flow statement")
		return
	}

	report, err := h.reportingService.CashFlowStatement(c.Request.Context(), period)
	if err != nil {
		respondError(c, logger, err, "Failed to generate cash flow statement")
		return
	}

	c.JSON(http.StatusOK, report)
}

// getTaxReport godoc
// @Summary Generate tax report
// @Description Tax collected on sales within a period
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD); defaults to the first of the month"
// @Param endDate query string false "End date (YYYY-MM-DD, inclusive); defaults to today"
// @Success 200 {object} domain.TaxReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/tax [get]
func (h *reportingHandler) getTaxReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	period, err := h.period(c)
	if err != nil {
		respondError(c, logger, err, "Failed to generate tax report")
		return
	}

	report, err := h.reportingService.TaxReport(c.Request.Context(), period)
	if err != nil {
		respondError(c, logger, err, "Failed to generate tax report")
		return
	}

	c.JSON(http.StatusOK, report)
}
