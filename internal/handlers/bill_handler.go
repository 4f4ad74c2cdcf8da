package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func billQuery(c *gin.Context) services.BillQuery {
	return services.BillQuery{PatientID: c.Query("patientId"), Status: c.Query("status")}
}

func (h *Handler) ListBills(c *gin.Context) {
	bills, err := h.Bills.List(c.Request.Context(), billQuery(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": bills, "count": len(bills)})
}

func (h *Handler) GetBill(c *gin.Context) {
	b, err := h.Bills.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": b})
}

func (h *Handler) ListPatientBills(c *gin.Context) {
	patient, bills, summary, err := h.Bills.ListForPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": bills, "count": len(bills), "summary": summary, "patient": patient})
}

func (h *Handler) CreateBill(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req services.BillInput
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bills.Create(c.Request.Context(), req, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, gin.H{"message": "Bill created successfully", "data": b})
}

func (h *Handler) UpdateBillStatus(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bills.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": fmt.Sprintf("Bill marked as %s successfully", req.Status), "data": b})
}

func (h *Handler) UpdateBill(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	var req services.BillPatch
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bills.Update(c.Request.Context(), c.Param("id"), req, user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Bill updated successfully", "data": b})
}

func (h *Handler) DeleteBill(c *gin.Context) {
	user, found := principal(c)
	if !found {
		return
	}
	if err := h.Bills.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Bill deleted successfully"})
}

func (h *Handler) BillStats(c *gin.Context) {
	stats, err := h.Bills.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"data": stats})
}

// ExportBills streams the filtered bills as an xlsx download.
func (h *Handler) ExportBills(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Bills.Export(c.Request.Context(), billQuery(c), &buf); err != nil {
		_ = c.Error(err)
		return
	}
	filename := fmt.Sprintf("bills-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
