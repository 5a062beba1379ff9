package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/service"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// actorFrom reads the authenticated principal from the headers set by the
// upstream auth gateway. Identity verification happens there, not here.
func actorFrom(c *gin.Context) entity.Actor {
	userID, _ := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	hospitalID, _ := strconv.ParseInt(c.GetHeader("X-Hospital-ID"), 10, 64)
	return entity.Actor{
		ID:         userID,
		Role:       c.GetHeader("X-User-Role"),
		HospitalID: hospitalID,
	}
}

// respondError maps domain error kinds to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidState),
		errors.Is(err, entity.ErrCapacityExceeded),
		errors.Is(err, entity.ErrDuplicateApplication):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ---------------------------------------------------------------------------
// Offers

type createOfferRequest struct {
	ServiceID           *int64  `json:"service_id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Positions           int     `json:"positions"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	ApplicationDeadline *string `json:"application_deadline"`
}

// CreateOffer handles POST /api/offers
func (h *Handlers) CreateOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	offer, err := h.services.Offers.Create(c.Request.Context(), actorFrom(c), service.CreateOfferInput{
		ServiceID:           req.ServiceID,
		Title:               req.Title,
		Description:         req.Description,
		Positions:           req.Positions,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		ApplicationDeadline: req.ApplicationDeadline,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: offer})
}

// ListOffers handles GET /api/offers
func (h *Handlers) ListOffers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	offers, err := h.services.Offers.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: offers})
}

// GetOffer handles GET /api/offers/:id
func (h *Handlers) GetOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	offer, err := h.services.Offers.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: offer})
}

type setStatusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
	Note            string `json:"note"`
}

// SetOfferStatus handles PATCH /api/offers/:id/status
func (h *Handlers) SetOfferStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	if err := h.services.Offers.SetStatus(c.Request.Context(), actorFrom(c), id, req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// DeleteOffer handles DELETE /api/offers/:id
func (h *Handlers) DeleteOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Offers.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ---------------------------------------------------------------------------
// Applications

type createApplicationRequest struct {
	OfferID          int64   `json:"offer_id"`
	CoverLetter      string  `json:"cover_letter"`
	Motivation       string  `json:"motivation"`
	Experience       string  `json:"experience"`
	AvailabilityDate *string `json:"availability_date"`
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	app, err := h.services.Applications.Create(c.Request.Context(), actorFrom(c), service.CreateApplicationInput{
		OfferID:          req.OfferID,
		CoverLetter:      req.CoverLetter,
		Motivation:       req.Motivation,
		Experience:       req.Experience,
		AvailabilityDate: req.AvailabilityDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: app})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	app, err := h.services.Applications.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// GetApplicationHistory handles GET /api/applications/:id/history
func (h *Handlers) GetApplicationHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	history, err := h.services.Applications.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// SetApplicationStatus handles PATCH /api/applications/:id/status
func (h *Handlers) SetApplicationStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	err := h.services.Applications.SetStatus(c.Request.Context(), actorFrom(c), id, service.SetApplicationStatusInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		Note:            req.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// WithdrawApplication handles POST /api/applications/:id/withdraw
func (h *Handlers) WithdrawApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Applications.Withdraw(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ---------------------------------------------------------------------------
// Internships

// GetInternship handles GET /api/internships/:id
func (h *Handlers) GetInternship(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	internship, err := h.services.Internships.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: internship})
}

// CancelInternship handles POST /api/internships/:id/cancel
func (h *Handlers) CancelInternship(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Internships.Cancel(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListAttendance handles GET /api/internships/:id/attendance
func (h *Handlers) ListAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	records, err := h.services.Attendance.ListByInternship(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// ListLogbook handles GET /api/internships/:id/logbook
func (h *Handlers) ListLogbook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.services.Logbook.ListByInternship(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ListEvaluations handles GET /api/internships/:id/evaluations
func (h *Handlers) ListEvaluations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	evaluations, err := h.services.Evaluations.ListByInternship(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: evaluations})
}

// ---------------------------------------------------------------------------
// Attendance

type recordAttendanceRequest struct {
	InternshipID int64   `json:"internship_id"`
	Date         string  `json:"date"`
	CheckIn      *string `json:"check_in"`
	CheckOut     *string `json:"check_out"`
	Notes        string  `json:"notes"`
}

// RecordAttendance handles POST /api/attendance
func (h *Handlers) RecordAttendance(c *gin.Context) {
	var req recordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	record, err := h.services.Attendance.Record(c.Request.Context(), actorFrom(c), service.RecordAttendanceInput{
		InternshipID: req.InternshipID,
		Date:         req.Date,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Notes:        req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

type validateAttendanceRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ValidateAttendance handles POST /api/attendance/:id/validate
func (h *Handlers) ValidateAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req validateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	err := h.services.Attendance.Validate(c.Request.Context(), actorFrom(c), id, service.ValidateAttendanceInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ---------------------------------------------------------------------------
// Logbook

type createLogbookRequest struct {
	InternshipID       int64  `json:"internship_id"`
	Date               string `json:"date"`
	Activities         string `json:"activities"`
	LearningObjectives string `json:"learning_objectives"`
}

// CreateLogbookEntry handles POST /api/logbook
func (h *Handlers) CreateLogbookEntry(c *gin.Context) {
	var req createLogbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	entry, err := h.services.Logbook.Create(c.Request.Context(), actorFrom(c), service.CreateLogbookInput{
		InternshipID:       req.InternshipID,
		Date:               req.Date,
		Activities:         req.Activities,
		LearningObjectives: req.LearningObjectives,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: entry})
}

type updateLogbookRequest struct {
	Activities         string `json:"activities"`
	LearningObjectives string `json:"learning_objectives"`
}

// UpdateLogbookEntry handles PUT /api/logbook/:id
func (h *Handlers) UpdateLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateLogbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	entry, err := h.services.Logbook.Update(c.Request.Context(), actorFrom(c), id, service.UpdateLogbookInput{
		Activities:         req.Activities,
		LearningObjectives: req.LearningObjectives,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entry})
}

// DeleteLogbookEntry handles DELETE /api/logbook/:id
func (h *Handlers) DeleteLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Logbook.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

type reviewLogbookRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

// ReviewLogbookEntry handles POST /api/logbook/:id/review
func (h *Handlers) ReviewLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewLogbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	err := h.services.Logbook.Review(c.Request.Context(), actorFrom(c), id, service.ReviewLogbookInput{
		Status:   req.Status,
		Comments: req.Comments,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ---------------------------------------------------------------------------
// Evaluations

type evaluationScoresRequest struct {
	TechnicalSkills  *float64 `json:"technical_skills"`
	PatientRelations *float64 `json:"patient_relations"`
	Teamwork         *float64 `json:"teamwork"`
	Professionalism  *float64 `json:"professionalism"`
}

type createEvaluationRequest struct {
	InternshipID int64                   `json:"internship_id"`
	Type         string                  `json:"type"`
	Scores       evaluationScoresRequest `json:"scores"`
	Comments     string                  `json:"comments"`
}

// CreateEvaluation handles POST /api/evaluations
func (h *Handlers) CreateEvaluation(c *gin.Context) {
	var req createEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	evaluation, err := h.services.Evaluations.Create(c.Request.Context(), actorFrom(c), service.CreateEvaluationInput{
		InternshipID: req.InternshipID,
		Type:         req.Type,
		Scores: service.EvaluationScoresInput{
			TechnicalSkills:  req.Scores.TechnicalSkills,
			PatientRelations: req.Scores.PatientRelations,
			Teamwork:         req.Scores.Teamwork,
			Professionalism:  req.Scores.Professionalism,
		},
		Comments: req.Comments,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: evaluation})
}

type amendEvaluationRequest struct {
	Scores   evaluationScoresRequest `json:"scores"`
	Comments string                  `json:"comments"`
}

// AmendEvaluation handles PUT /api/evaluations/:id
func (h *Handlers) AmendEvaluation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req amendEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	evaluation, err := h.services.Evaluations.Amend(c.Request.Context(), actorFrom(c), id, service.AmendEvaluationInput{
		Scores: service.EvaluationScoresInput{
			TechnicalSkills:  req.Scores.TechnicalSkills,
			PatientRelations: req.Scores.PatientRelations,
			Teamwork:         req.Scores.Teamwork,
			Professionalism:  req.Scores.Professionalism,
		},
		Comments: req.Comments,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: evaluation})
}

// ---------------------------------------------------------------------------
// Notifications

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	actor := actorFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.services.Notifications.List(c.Request.Context(), actor.ID, unreadOnly, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// CountUnreadNotifications handles GET /api/notifications/unread-count
func (h *Handlers) CountUnreadNotifications(c *gin.Context) {
	actor := actorFrom(c)
	count, err := h.services.Notifications.CountUnread(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"count": count}})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Notifications.MarkRead(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GetNotificationPreferences handles GET /api/notifications/preferences
func (h *Handlers) GetNotificationPreferences(c *gin.Context) {
	actor := actorFrom(c)
	pref, err := h.services.Notifications.GetPreferences(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: pref})
}

type updatePreferencesRequest struct {
	EmailEnabled      bool `json:"email_enabled"`
	ApplicationEmails bool `json:"application_emails"`
	LogbookEmails     bool `json:"logbook_emails"`
	EvaluationEmails  bool `json:"evaluation_emails"`
	SecurityEmails    bool `json:"security_emails"`
}

// UpdateNotificationPreferences handles PUT /api/notifications/preferences
func (h *Handlers) UpdateNotificationPreferences(c *gin.Context) {
	actor := actorFrom(c)
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	err := h.services.Notifications.UpdatePreferences(c.Request.Context(), actor, &entity.NotificationPreference{
		UserID:            actor.ID,
		EmailEnabled:      req.EmailEnabled,
		ApplicationEmails: req.ApplicationEmails,
		LogbookEmails:     req.LogbookEmails,
		EvaluationEmails:  req.EvaluationEmails,
		SecurityEmails:    req.SecurityEmails,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
