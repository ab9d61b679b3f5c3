package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/services"
)

// GetAppointments lists a patient's own appointments, or all of them for staff.
func (h *Handler) GetAppointments(c *gin.Context) {
	v := viewerFrom(c)
	if !v.Authenticated {
		v.Role = c.Query("role")
		if raw := c.Query("userId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				badRequest(c, "Invalid userId")
				return
			}
			v.UserID = id
		}
	}

	appointments, err := h.Appointments.List(c.Request.Context(), v.Role, v.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

type createAppointmentRequest struct {
	PatientID   flexInt `json:"patientId"`
	PatientName string  `json:"patientName"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Type        string  `json:"type"`
}

// CreateAppointment books a Pending appointment and notifies staff.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	v := viewerFrom(c)
	if v.Authenticated && v.Role == models.RolePatient {
		if req.PatientID != 0 && int64(req.PatientID) != v.UserID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Patients can only book for themselves."})
			return
		}
		req.PatientID = flexInt(v.UserID)
		if req.PatientName == "" {
			req.PatientName = v.Name
		}
	}

	apt, err := h.Appointments.Create(c.Request.Context(), services.NewAppointment{
		PatientID:   int64(req.PatientID),
		PatientName: req.PatientName,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Request sent!", "appointment": apt})
}

// UpdateAppointment applies a partial update (status, date, time).
func (h *Handler) UpdateAppointment(c *gin.Context) {
	if v := viewerFrom(c); v.Authenticated && !models.IsStaff(v.Role) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Permission denied."})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid appointment ID")
		return
	}

	var req struct {
		Status *string `json:"status,omitempty"`
		Date   *string `json:"date,omitempty"`
		Time   *string `json:"time,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	upd := services.AppointmentUpdate{Date: optional(req.Date), Time: optional(req.Time)}
	if s := optional(req.Status); s != nil {
		st := models.AppointmentStatus(*s)
		upd.Status = &st
	}

	apt, err := h.Appointments.Update(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": apt})
}
