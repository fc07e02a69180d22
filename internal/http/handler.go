package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anupk/wpts-service/internal/http/middleware"
	"github.com/anupk/wpts-service/internal/service"
)

type Handler struct {
	payments *service.PaymentService
	workers  *service.WorkerService
	log      zerolog.Logger
}

func NewHandler(payments *service.PaymentService, workers *service.WorkerService, log zerolog.Logger) *Handler {
	return &Handler{payments: payments, workers: workers, log: log}
}

func (h *Handler) Register(router *gin.Engine, workerAuth gin.HandlerFunc) {
	admin := router.Group("/api/admin")
	admin.POST("/payments", h.createPayment)
	admin.GET("/payments", h.listPayments)
	admin.POST("/payments/:id/record-payments", h.recordActualPayments)
	admin.GET("/worker-payments", h.listWorkerPayments)
	admin.GET("/worker-payments/export", h.exportWorkerPayments)
	admin.POST("/workers", h.addWorker)
	admin.GET("/workers", h.listWorkers)

	payments := router.Group("/api/payments")
	payments.GET("/contractor/:name", h.listForContractor)
	payments.POST("/:id/allocate", h.allocate)
	payments.POST("/:id/mark-complete", h.markComplete)
	payments.GET("/:id/receipt", h.receipt)

	worker := router.Group("/api/worker")
	worker.POST("/login", h.workerLogin)
	protected := worker.Group("/")
	protected.Use(workerAuth)
	protected.GET("/payments", h.workerPayments)
	protected.POST("/verify-payment", h.verifyPayment)
	protected.POST("/report-discrepancy", h.reportDiscrepancy)

	router.GET("/api/health", h.health)
}

type createPaymentRequest struct {
	WorkOrder  string  `json:"workorder" binding:"required"`
	Contractor string  `json:"contractor" binding:"required"`
	Amount     float64 `json:"amount"`
}

func (h *Handler) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.payments.CreatePayment(c.Request.Context(), service.CreatePaymentInput{
		WorkOrder:  req.WorkOrder,
		Contractor: req.Contractor,
		Amount:     req.Amount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("workorder", payment.WorkOrder).
		Str("contractor", payment.Contractor).
		Msg("payment created")

	c.JSON(http.StatusCreated, gin.H{
		"message":    fmt.Sprintf("Payment created successfully for %s", payment.Contractor),
		"payment_id": payment.ID,
		"payment":    payment,
	})
}

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.payments.ListPayments(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

type allocateRequest struct {
	Workers []allocateWorker `json:"workers" binding:"required"`
}

type allocateWorker struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Aadhaar        string  `json:"aadhaar"`
	PromisedAmount float64 `json:"promised_amount"`
}

func (h *Handler) allocate(c *gin.Context) {
	paymentID, ok := h.paymentID(c)
	if !ok {
		return
	}

	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.AllocationInput, 0, len(req.Workers))
	for _, worker := range req.Workers {
		inputs = append(inputs, service.AllocationInput{
			Name:           worker.Name,
			Phone:          worker.Phone,
			Aadhaar:        worker.Aadhaar,
			PromisedAmount: worker.PromisedAmount,
		})
	}

	payment, err := h.payments.Allocate(c.Request.Context(), paymentID, inputs)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("payment_id", payment.ID.String()).
		Int("workers", len(payment.Workers)).
		Msg("payment allocated")

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Payment allocated to %d workers successfully", len(payment.Workers)),
		"payment": payment,
	})
}

func (h *Handler) markComplete(c *gin.Context) {
	paymentID, ok := h.paymentID(c)
	if !ok {
		return
	}

	payment, err := h.payments.MarkComplete(c.Request.Context(), paymentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("payment_id", payment.ID.String()).Msg("work marked complete")

	c.JSON(http.StatusOK, gin.H{
		"message": "Work marked as completed. You can now make payments to workers.",
		"payment": payment,
	})
}

type recordPaymentsRequest struct {
	WorkerPayments []recordPaymentEntry `json:"worker_payments" binding:"required"`
}

type recordPaymentEntry struct {
	WorkerPhone    string  `json:"worker_phone"`
	PromisedAmount float64 `json:"promised_amount"`
	ActualPaid     float64 `json:"actual_paid"`
}

func (h *Handler) recordActualPayments(c *gin.Context) {
	paymentID, ok := h.paymentID(c)
	if !ok {
		return
	}

	var req recordPaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := make([]service.ActualPaymentInput, 0, len(req.WorkerPayments))
	for _, entry := range req.WorkerPayments {
		records = append(records, service.ActualPaymentInput{
			WorkerPhone:    entry.WorkerPhone,
			PromisedAmount: entry.PromisedAmount,
			ActualPaid:     entry.ActualPaid,
		})
	}

	result, err := h.payments.RecordActualPayments(c.Request.Context(), paymentID, records)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("payment_id", paymentID.String()).
		Int("updated", result.Updated).
		Strs("unmatched", result.Unmatched).
		Msg("actual payments recorded")

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Payment records updated for %d workers", result.Updated),
		"payment":   result.Payment,
		"unmatched": result.Unmatched,
	})
}

func (h *Handler) listWorkerPayments(c *gin.Context) {
	rows, err := h.payments.WorkerPaymentRows(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) exportWorkerPayments(c *gin.Context) {
	result, err := h.payments.ExportWorkerPaymentRows(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) listForContractor(c *gin.Context) {
	payments, err := h.payments.ListForContractor(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) receipt(c *gin.Context) {
	paymentID, ok := h.paymentID(c)
	if !ok {
		return
	}

	result, err := h.payments.Receipt(c.Request.Context(), paymentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type addWorkerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Aadhaar string `json:"aadhaar"`
}

func (h *Handler) addWorker(c *gin.Context) {
	var req addWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	worker, err := h.workers.AddWorker(c.Request.Context(), req.Name, req.Phone, req.Aadhaar)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Worker added successfully",
		"worker":  worker,
	})
}

func (h *Handler) listWorkers(c *gin.Context) {
	workers, err := h.workers.ListWorkers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

type workerLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

func (h *Handler) workerLogin(c *gin.Context) {
	var req workerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.workers.Login(c.Request.Context(), req.Phone, req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("phone", result.Phone).Msg("worker login")

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"worker":     gin.H{"name": result.Name, "phone": result.Phone},
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) workerPayments(c *gin.Context) {
	phone, ok := middleware.WorkerPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing worker token"})
		return
	}

	rows, err := h.payments.PaymentsForWorker(c.Request.Context(), phone)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type verifyPaymentRequest struct {
	WorkOrder      string  `json:"workorder" binding:"required"`
	ActualReceived float64 `json:"actual_received"`
}

func (h *Handler) verifyPayment(c *gin.Context) {
	phone, ok := middleware.WorkerPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing worker token"})
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocation, err := h.payments.VerifyPayment(c.Request.Context(), phone, req.WorkOrder, req.ActualReceived)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("phone", phone).
		Str("workorder", req.WorkOrder).
		Float64("actual_received", req.ActualReceived).
		Msg("payment verified by worker")

	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Payment verified! Amount received: ₹%.2f", req.ActualReceived),
		"payment_record": allocation,
	})
}

type reportDiscrepancyRequest struct {
	WorkOrder      string  `json:"workorder" binding:"required"`
	ActualReceived float64 `json:"actual_received"`
	Notes          string  `json:"notes"`
}

func (h *Handler) reportDiscrepancy(c *gin.Context) {
	phone, ok := middleware.WorkerPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing worker token"})
		return
	}

	var req reportDiscrepancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocation, err := h.payments.ReportDiscrepancy(c.Request.Context(), phone, req.WorkOrder, req.ActualReceived, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("phone", phone).
		Str("workorder", req.WorkOrder).
		Msg("payment discrepancy reported")

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment discrepancy reported successfully. Admin will review this issue.",
		"payment_record": allocation,
	})
}

func (h *Handler) health(c *gin.Context) {
	payments, err := h.payments.ListPayments(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	rows, err := h.payments.WorkerPaymentRows(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                "healthy",
		"service":               "wpts-backend",
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
		"payments_count":        len(payments),
		"worker_payments_count": len(rows),
	})
}

func (h *Handler) paymentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyAllocated), errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
