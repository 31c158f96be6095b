package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/salon/api/transport"
	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/httpcontext"
	"github.com/fastygo/salon/repository"
	appointmentUC "github.com/fastygo/salon/usecase/appointment"
	bookingUC "github.com/fastygo/salon/usecase/booking"
)

type AppointmentHandler struct {
	baseHandler
	booking      *bookingUC.UseCase
	appointments *appointmentUC.UseCase
}

func NewAppointmentHandler(booking *bookingUC.UseCase, appointments *appointmentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		booking:      booking,
		appointments: appointments,
	}
}

// @Summary Submit a booking
// @Tags appointments
// @Accept json
// @Produce json
// @Router /api/v1/appointments [post]
func (h *AppointmentHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BookingRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appt, err := h.booking.SubmitBooking(stdCtx, bookingUC.Request{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ServiceID:   req.ServiceID,
		EmployeeID:  req.EmployeeID,
		StartTime:   req.StartTime,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, appt)
}

// @Summary List appointments
// @Tags appointments
// @Router /api/v1/appointments [get]
func (h *AppointmentHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.AppointmentFilter{
		Status: domain.Status(strings.ToUpper(strings.TrimSpace(string(args.Peek("status"))))),
		Limit:  parseInt(string(args.Peek("limit")), 50),
		Offset: parseInt(string(args.Peek("offset")), 0),
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appts, err := h.appointments.List(stdCtx, caller(ctx), filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(appts, transport.ListMeta{
		Count:  len(appts),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}))
}

// @Summary Get an appointment
// @Tags appointments
// @Router /api/v1/appointments/{id} [get]
func (h *AppointmentHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid appointment id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appt, err := h.appointments.Get(stdCtx, caller(ctx), id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, appt)
}

// @Summary List notification records for an appointment
// @Tags appointments
// @Router /api/v1/appointments/{id}/notifications [get]
func (h *AppointmentHandler) Notifications(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid appointment id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	records, err := h.appointments.Notifications(stdCtx, caller(ctx), id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(records, transport.ListMeta{Count: len(records)}))
}

// @Summary Change appointment status
// @Tags appointments
// @Accept json
// @Router /api/v1/appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid appointment id")
		return
	}

	var req transport.StatusUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	appt, err := h.appointments.UpdateStatus(stdCtx, caller(ctx), id, req.Status)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, appt)
}

// @Summary Delete an appointment
// @Tags appointments
// @Router /api/v1/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid appointment id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.appointments.Delete(stdCtx, caller(ctx), id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}
