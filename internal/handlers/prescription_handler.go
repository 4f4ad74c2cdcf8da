package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) ListPrescriptions(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	q := services.PrescriptionQuery{PatientID: c.Query("patientId"), DoctorID: c.Query("doctorId")}
	list, err := h.Prescriptions.List(c.Request.Context(), q, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": list, "count": len(list)})
}

func (h *Handler) GetPrescription(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	p, err := h.Prescriptions.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": p})
}

func (h *Handler) ListPatientPrescriptions(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	patient, list, err := h.Prescriptions.ListForPatient(c.Request.Context(), c.Param("patientId"), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": list, "count": len(list), "patient": patient})
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req services.PrescriptionInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Prescriptions.Create(c.Request.Context(), req, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, gin.H{"message": "Prescription created successfully", "data": p})
}

func (h *Handler) UpdatePrescription(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req services.PrescriptionPatch
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Prescriptions.Update(c.Request.Context(), c.Param("id"), req, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Prescription updated successfully", "data": p})
}

func (h *Handler) DeletePrescription(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	if err := h.Prescriptions.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Prescription deleted successfully"})
}
