package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/repository/memory"
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

type testServer struct {
	engine       *gin.Engine
	doctor       string
	receptionist string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()
	stores := memory.New()
	provider := identity.NewLocalProvider(stores.Credentials, utils.NewTokenIssuer("test-secret", time.Hour))

	auth := services.NewAuthService(provider, stores.Users, log)
	h := handlers.NewHandler(
		auth,
		services.NewPatientService(stores.Patients, log),
		services.NewPrescriptionService(stores.Prescriptions, stores.Patients, log),
		services.NewBillingService(stores.Bills, stores.Patients, nil, log),
		log,
	)
	ts := &testServer{engine: New(h, Options{Dev: true, FrontendURL: "http://localhost:3000", PasswordLogin: true, Logger: log})}

	w, body := ts.call(t, http.MethodPost, "/api/auth/init-demo", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, body["results"], 2)

	ts.doctor = ts.login(t, "doctor@clinic.com", "doctor123")
	ts.receptionist = ts.login(t, "receptionist@clinic.com", "receptionist123")
	return ts
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, body := ts.call(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func (ts *testServer) call(t *testing.T, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func TestPatientBillLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.call(t, http.MethodPost, "/api/patients", ts.receptionist, gin.H{
		"name":        "Jane Doe",
		"email":       "JANE@X.COM",
		"phone":       "555-0100",
		"address":     "1 Main St",
		"dateOfBirth": "1990-05-17",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	patient := data(t, body)
	assert.Equal(t, "jane@x.com", patient["email"])
	assert.Regexp(t, `^PAT-\d+-[0-9A-Z]{9}$`, patient["token"])
	patientID := patient["id"].(string)

	w, body = ts.call(t, http.MethodPost, "/api/bills", ts.receptionist, gin.H{
		"patientId": patientID,
		"items": []gin.H{
			{"description": "Consult", "amount": 50},
			{"description": "Lab", "amount": 30},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bill := data(t, body)
	assert.Equal(t, 80.0, bill["totalAmount"])
	assert.Equal(t, "pending", bill["status"])
	assert.NotContains(t, bill, "paidAt")
	billPath := "/api/bills/" + bill["id"].(string)

	w, body = ts.call(t, http.MethodPut, billPath+"/status", ts.receptionist, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bill marked as paid successfully", body["message"])
	paidAt := data(t, body)["paidAt"]
	require.NotNil(t, paidAt)

	w, body = ts.call(t, http.MethodPut, billPath+"/status", ts.receptionist, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paidAt, data(t, body)["paidAt"])

	w, body = ts.call(t, http.MethodDelete, billPath, ts.receptionist, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Cannot delete paid bills", body["message"])

	w, _ = ts.call(t, http.MethodPut, billPath, ts.receptionist, gin.H{"patientName": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = ts.call(t, http.MethodGet, "/api/bills/patient/"+patientID, ts.doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"totalAmount": 80.0, "paidAmount": 80.0, "pendingAmount": 0.0}, body["summary"])
	assert.Equal(t, "Jane Doe", body["patient"].(map[string]interface{})["name"])

	w, body = ts.call(t, http.MethodGet, "/api/bills/stats/summary", ts.receptionist, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 80.0, data(t, body)["totalRevenue"])
	assert.Equal(t, 1.0, data(t, body)["paidBills"])
}

func TestOversizedBillAmountLeavesBillsReadable(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.call(t, http.MethodPost, "/api/patients", ts.receptionist, gin.H{
		"name":        "Jane Doe",
		"email":       "jane@x.com",
		"phone":       "555-0100",
		"address":     "1 Main St",
		"dateOfBirth": "1990-05-17",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	patientID := data(t, body)["id"].(string)

	w, body = ts.call(t, http.MethodPost, "/api/bills", ts.receptionist, gin.H{
		"patientId": patientID,
		"items":     []gin.H{{"description": "X", "amount": 1e307}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "Each item must have a description and positive amount", body["message"])

	for _, path := range []string{"/api/bills", "/api/bills/stats/summary", "/api/bills/patient/" + patientID} {
		w, body = ts.call(t, http.MethodGet, path, ts.receptionist, nil)
		assert.Equal(t, http.StatusOK, w.Code, path+": "+w.Body.String())
		assert.Equal(t, true, body["success"], path)
	}
	w, body = ts.call(t, http.MethodGet, "/api/bills", ts.receptionist, nil)
	assert.Equal(t, 0.0, body["count"])
}

func TestRoleGates(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.call(t, http.MethodPost, "/api/bills", ts.doctor, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Required role: receptionist", body["message"])

	w, _ = ts.call(t, http.MethodPost, "/api/prescriptions", ts.receptionist, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = ts.call(t, http.MethodGet, "/api/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = ts.call(t, http.MethodGet, "/api/patients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid Token", body["error"])
}

func TestPrescriptionValidationAndOwnership(t *testing.T) {
	ts := newTestServer(t)

	_, body := ts.call(t, http.MethodPost, "/api/patients", ts.receptionist, gin.H{
		"name": "John Roe", "email": "john@x.com", "phone": "1", "address": "x", "dateOfBirth": "1970-01-01",
	})
	patientID := data(t, body)["id"].(string)

	w, body := ts.call(t, http.MethodPost, "/api/prescriptions", ts.doctor, gin.H{
		"patientId":   patientID,
		"medications": []gin.H{{"name": "Ibuprofen", "frequency": "daily", "duration": "3 days"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Each medication must have name, dosage, frequency, and duration", body["message"])

	w, body = ts.call(t, http.MethodGet, "/api/prescriptions", ts.doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["count"])

	w, body = ts.call(t, http.MethodPost, "/api/prescriptions", ts.doctor, gin.H{
		"patientId":   patientID,
		"medications": []gin.H{{"name": "Ibuprofen", "dosage": "200mg", "frequency": "daily", "duration": "3 days"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rx := data(t, body)
	assert.Equal(t, "Dr. John Smith", rx["doctorName"])

	w, body = ts.call(t, http.MethodGet, "/api/prescriptions/patient/"+patientID, ts.doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["count"])
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.call(t, http.MethodGet, "/api/auth/verify", ts.doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "doctor", user["role"])
	assert.Equal(t, "doctor@clinic.com", user["email"])

	w, _ = ts.call(t, http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = ts.call(t, http.MethodPost, "/api/auth/init-demo", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, r := range body["results"].([]interface{}) {
		assert.Equal(t, "already exists", r.(map[string]interface{})["status"])
	}

	w, _ = ts.call(t, http.MethodPost, "/api/auth/profile", "", gin.H{"name": "x", "role": "doctor"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = ts.call(t, http.MethodPost, "/api/auth/profile", ts.doctor, gin.H{"name": "x", "role": "nurse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role. Must be doctor or receptionist", body["message"])
}

func TestHealthNotFoundAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.call(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Clinic Management System API is running", body["message"])

	w, body = ts.call(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", body["error"])
	assert.Equal(t, "Cannot GET /api/nope", body["message"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clinic_http_requests_total")
}

func TestExportBills(t *testing.T) {
	ts := newTestServer(t)
	_, body := ts.call(t, http.MethodPost, "/api/patients", ts.receptionist, gin.H{
		"name": "Jane Doe", "email": "jane@x.com", "phone": "1", "address": "x", "dateOfBirth": "1990-01-01",
	})
	patientID := data(t, body)["id"].(string)
	_, _ = ts.call(t, http.MethodPost, "/api/bills", ts.receptionist, gin.H{
		"patientId": patientID, "items": []gin.H{{"description": "Consult", "amount": 50}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/bills/export", nil)
	req.Header.Set("Authorization", "Bearer "+ts.receptionist)
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", book.GetCellValue("Bills", "B2"))
}

