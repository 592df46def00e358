package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// subledgerHandler handles customers, vendors, invoices and payments.
type subledgerHandler struct {
	subledgerService portssvc.SubledgerSvcFacade
}

// RegisterSubledgerRoutes registers receivable and payable routes.
func RegisterSubledgerRoutes(rg *gin.RouterGroup, subledgerService portssvc.SubledgerSvcFacade) {
	h := &subledgerHandler{subledgerService: subledgerService}

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCounterparty(domain.Customer))
		customers.GET("", h.listCounterparties(domain.Customer))
	}
	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.createCounterparty(domain.Vendor))
		vendors.GET("", h.listCounterparties(domain.Vendor))
	}
	counterparties := rg.Group("/counterparties")
	{
		counterparties.GET("/:id", h.getCounterparty)
		counterparties.DELETE("/:id", h.deleteCounterparty)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.POST("/:id/issue", h.issueInvoice)
		invoices.POST("/:id/cancel", h.cancelInvoice)
		invoices.DELETE("/:id", h.deleteInvoice)
		invoices.GET("/:id/payments", h.listInvoicePayments)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
	}

	rg.GET("/reports/aging", h.getAgingReport)
}

// parseInvoiceType accepts SALE and PURCHASE plus the receivable and payable aliases.
func parseInvoiceType(raw string) (domain.InvoiceType, error) {
	switch strings.ToLower(raw) {
	case "sale", "receivable", "receivables":
		return domain.InvoiceSale, nil
	case "purchase", "payable", "payables":
		return domain.InvoicePurchase, nil
	}
	return "", apperrors.Validationf("unknown invoice type %q", raw)
}

// createCounterparty godoc
// @Summary Create a customer or vendor
// @Tags subledger
// @Accept  json
// @Produce  json
// @Param   counterparty body dto.CreateCounterpartyRequest true "Counterparty details"
// @Success 201 {object} domain.Counterparty
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create counterparty"
// @Router /customers [post]
// @Router /vendors [post]
func (h *subledgerHandler) createCounterparty(kind domain.CounterpartyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("kind", string(kind)))

		var req dto.CreateCounterpartyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CreateCounterparty", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}

		create := h.subledgerService.CreateCustomer
		if kind == domain.Vendor {
			create = h.subledgerService.CreateVendor
		}
		cp, err := create(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err, "Failed to create counterparty")
			return
		}

		logger.Info("Counterparty created", slog.String("counterparty_id", cp.CounterpartyID))
		c.JSON(http.StatusCreated, cp)
	}
}

// listCounterparties godoc
// @Summary List customers or vendors
// @Tags subledger
// @Produce  json
// @Success 200 {array} domain.Counterparty
// @Failure 500 {object} map[string]string "Failed to list counterparties"
// @Router /customers [get]
// @Router /vendors [get]
func (h *subledgerHandler) listCounterparties(kind domain.CounterpartyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())

		cps, err := h.subledgerService.ListCounterparties(c.Request.Context(), kind)
		if err != nil {
			respondError(c, logger, err, "Failed to list counterparties")
			return
		}

		c.JSON(http.StatusOK, cps)
	}
}

// getCounterparty godoc
// @Summary Get a counterparty with its outstanding balance
// @Tags subledger
// @Produce  json
// @Param   id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Failure 500 {object} map[string]string "Failed to retrieve counterparty"
// @Router /counterparties/{id} [get]
func (h *subledgerHandler) getCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("counterparty_id", c.Param("id")))

	cp, err := h.subledgerService.GetCounterparty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve counterparty")
		return
	}
	balance, err := h.subledgerService.CounterpartyBalance(c.Request.Context(), cp.CounterpartyID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve counterparty")
		return
	}

	c.JSON(http.StatusOK, dto.CounterpartyResponse{Counterparty: *cp, Balance: balance})
}

// deleteCounterparty godoc
// @Summary Delete a counterparty
// @Description Removes a counterparty that no invoice references
// @Tags subledger
// @Param   id path string true "Counterparty ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Failure 409 {object} map[string]string "Counterparty has invoices"
// @Failure 500 {object} map[string]string "Failed to delete counterparty"
// @Router /counterparties/{id} [delete]
func (h *subledgerHandler) deleteCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("counterparty_id", c.Param("id")))

	if err := h.subledgerService.DeleteCounterparty(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to delete counterparty")
		return
	}

	c.Status(http.StatusNoContent)
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Creates a draft, or an issued invoice posted to the journal in the same transaction
// @Tags subledger
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} domain.Invoice
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Counterparty or tax rate not found"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Router /invoices [post]
func (h *subledgerHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	inv, err := h.subledgerService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created", slog.String("invoice_id", inv.InvoiceID), slog.String("status", string(inv.Status)))
	c.JSON(http.StatusCreated, inv)
}

// listInvoices godoc
// @Summary List invoices
// @Tags subledger
// @Produce  json
// @Param   type query string false "Invoice type" Enums(SALE, PURCHASE)
// @Param   status query string false "Invoice status"
// @Param   counterpartyID query string false "Counterparty ID"
// @Success 200 {array} domain.Invoice
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Router /invoices [get]
func (h *subledgerHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListInvoices", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	invoices, err := h.subledgerService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags subledger
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Router /invoices/{id} [get]
func (h *subledgerHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", c.Param("id")))

	inv, err := h.subledgerService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, inv)
}

// issueInvoice godoc
// @Summary Issue a draft invoice
// @Tags subledger
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 500 {object} map[string]string "Failed to issue invoice"
// @Router /invoices/{id}/issue [post]
func (h *subledgerHandler) issueInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", c.Param("id")))

	inv, err := h.subledgerService.IssueInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to issue invoice")
		return
	}

	logger.Info("Invoice issued", slog.String("journal_entry_id", inv.JournalEntryID))
	c.JSON(http.StatusOK, inv)
}

// cancelInvoice godoc
// @Summary Cancel an unpaid invoice
// @Description Reverses the invoice posting and marks it cancelled
// @Tags subledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Param   reversal body dto.ReverseJournalRequest false "Cancellation reason"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice has payments or is already cancelled"
// @Failure 500 {object} map[string]string "Failed to cancel invoice"
// @Router /invoices/{id}/cancel [post]
func (h *subledgerHandler) cancelInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", c.Param("id")))

	var req struct {
		Reason string `json:"reason" binding:"max=500"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CancelInvoice", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	inv, err := h.subledgerService.CancelInvoice(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel invoice")
		return
	}

	logger.Info("Invoice cancelled")
	c.JSON(http.StatusOK, inv)
}

// deleteInvoice godoc
// @Summary Delete an unpaid invoice
// @Tags subledger
// @Param   id path string true "Invoice ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice has payments"
// @Failure 500 {object} map[string]string "Failed to delete invoice"
// @Router /invoices/{id} [delete]
func (h *subledgerHandler) deleteInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", c.Param("id")))

	if err := h.subledgerService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, logger, err, "Failed to delete invoice")
		return
	}

	c.Status(http.StatusNoContent)
}

// recordPayment godoc
// @Summary Record a payment against an invoice
// @Description Posts the settlement entry and updates the invoice's paid amount and status
// @Tags subledger
// @Accept  json
// @Produce  json
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} map[string]string "Invalid input or overpayment"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not open"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Router /payments [post]
func (h *subledgerHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	payment, err := h.subledgerService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded", slog.String("payment_id", payment.PaymentID), slog.String("invoice_id", payment.InvoiceID))
	c.JSON(http.StatusCreated, payment)
}

// listPayments godoc
// @Summary List payments
// @Description Lists every payment, or the payments of one invoice
// @Tags subledger
// @Produce  json
// @Param   invoiceID query string false "Invoice ID"
// @Success 200 {array} domain.Payment
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /payments [get]
func (h *subledgerHandler) listPayments(c *gin.Context) {
	h.respondPayments(c, c.Query("invoiceID"))
}

// listInvoicePayments godoc
// @Summary List the payments of an invoice
// @Description Lists the payments of one invoice in recording order
// @Tags subledger
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {array} domain.Payment
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /invoices/{id}/payments [get]
func (h *subledgerHandler) listInvoicePayments(c *gin.Context) {
	h.respondPayments(c, c.Param("id"))
}

func (h *subledgerHandler) respondPayments(c *gin.Context, invoiceID string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payments, err := h.subledgerService.ListPayments(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, logger, err, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// getAgingReport godoc
// @Summary Generate aging report
// @Description Buckets unpaid invoices by days past due
// @Tags reports
// @Produce json
// @Param type query string true "SALE, PURCHASE, receivable or payable"
// @Param asOf query string false "Report date (YYYY-MM-DD); defaults to today"
// @Success 200 {object} domain.AgingReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/aging [get]
func (h *subledgerHandler) getAgingReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	invoiceType, err := parseInvoiceType(c.Query("type"))
	if err != nil {
		respondError(c, logger, err, "Failed to generate aging report")
		return
	}
	asOf, err := parseDateParam(c, "asOf", false)
	if err != nil {
		respondError(c, logger, err, "Failed to generate aging report")
		return
	}

	report, err := h.subledgerService.AgingReport(c.Request.Context(), invoiceType, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate aging report")
		return
	}

	logger.Info("Aging report generated", slog.String("type", string(invoiceType)), slog.Int("invoice_count", len(report.Invoices)))
	c.JSON(http.StatusOK, report)
}
