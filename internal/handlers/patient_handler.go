package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Patients.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": patients, "count": len(patients)})
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.Patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": p})
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.Patients.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": patients, "count": len(patients)})
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req services.PatientInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Patients.Register(c.Request.Context(), req, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, gin.H{"message": "Patient registered successfully", "data": p})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req services.PatientPatch
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Patients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Patient updated successfully", "data": p})
}

func (h *Handler) RegeneratePatientToken(c *gin.Context) {
	p, err := h.Patients.RegenerateToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "New token generated successfully", "data": p})
}
