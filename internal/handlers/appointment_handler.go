package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/models"
	appointmentuc "github.com/lebarbier/lebarbier-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type appointmentCreator interface {
	Execute(ctx context.Context, in appointmentuc.CreateInput) (*models.Appointment, error)
}

type appointmentLister interface {
	ForClient(ctx context.Context, who *authz.Principal, in appointmentuc.ListInput) (*appointmentuc.ListOutput, error)
	ForStaff(ctx context.Context, who *authz.Principal, in appointmentuc.ListInput) (*appointmentuc.ListOutput, error)
}

type appointmentGetter interface {
	Execute(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Appointment, error)
}

type appointmentCanceller interface {
	Execute(ctx context.Context, who *authz.Principal, id uuid.UUID, reason string) (*models.Appointment, error)
}

type appointmentTransitioner interface {
	Execute(ctx context.Context, who *authz.Principal, in appointmentuc.UpdateStatusInput) (*models.Appointment, error)
}

type availabilityReader interface {
	Execute(ctx context.Context, in appointmentuc.AvailabilityInput) ([]domain.AvailabilitySlot, error)
}

type AppointmentHandler struct {
	create       appointmentCreator
	list         appointmentLister
	get          appointmentGetter
	cancel       appointmentCanceller
	updateStatus appointmentTransitioner
	availability availabilityReader
}

func NewAppointmentHandler(
	create *appointmentuc.CreateAppointment,
	list *appointmentuc.ListAppointments,
	get *appointmentuc.GetAppointment,
	cancel *appointmentuc.CancelAppointment,
	updateStatus *appointmentuc.UpdateStatus,
	availability *appointmentuc.GetAvailability,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		list:         list,
		get:          get,
		cancel:       cancel,
		updateStatus: updateStatus,
		availability: availability,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	EmployeeID uuid.UUID  `json:"employee_id" binding:"required"`
	ServiceID  uuid.UUID  `json:"service_id" binding:"required"`
	Date       time.Time  `json:"date" binding:"required"`
	EndTime    *time.Time `json:"end_time"`

	Location      string   `json:"location" binding:"omitempty,oneof=SALON HOME"`
	CustomAddress string   `json:"custom_address" binding:"max=255"`
	Lat           *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng           *float64 `json:"lng" binding:"omitempty,longitude"`
	Notes         string   `json:"notes" binding:"max=500"`
}

type ListAppointmentsQuery struct {
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Date      string `form:"date"`
}

type AvailabilityQuery struct {
	EmployeeID string `form:"employeeId" binding:"required,uuid"`
	Date       string `form:"date" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=255"`
}

// ======================================================
// CLIENT
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	var q ListAppointmentsQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.list.ForClient(c.Request.Context(), principal(c), appointmentuc.ListInput{
		Status:    q.Status,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), appointmentuc.CreateInput{
		UserID:        principal(c).UserID,
		EmployeeID:    req.EmployeeID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		EndTime:       req.EndTime,
		Location:      domain.Location(req.Location),
		CustomAddress: req.CustomAddress,
		Lat:           req.Lat,
		Lng:           req.Lng,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Rendez-vous réservé avec succès.", ap)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelAppointmentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), principal(c), id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Rendez-vous annulé.", ap)
}

func (h *AppointmentHandler) Availability(c *gin.Context) {
	var q AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), appointmentuc.AvailabilityInput{
		EmployeeID: uuid.MustParse(q.EmployeeID),
		Date:       q.Date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"date": q.Date, "slots": slots})
}

// ======================================================
// STAFF
// ======================================================

func (h *AppointmentHandler) StaffList(c *gin.Context) {
	var q ListAppointmentsQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.list.ForStaff(c.Request.Context(), principal(c), appointmentuc.ListInput{
		Status: q.Status,
		Date:   q.Date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.updateStatus.Execute(c.Request.Context(), principal(c), appointmentuc.UpdateStatusInput{
		AppointmentID: id,
		Status:        domain.Status(req.Status),
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Statut mis à jour.", ap)
}
