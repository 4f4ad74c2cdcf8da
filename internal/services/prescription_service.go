package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

const msgMedicationFields = "Each medication must have name, dosage, frequency, and duration"

// PrescriptionQuery carries the optional list filters as received.
type PrescriptionQuery struct {
	PatientID string
	DoctorID  string
}

type PrescriptionInput struct {
	PatientID   string              `json:"patientId"`
	PatientName *string             `json:"patientName"`
	Medications []models.Medication `json:"medications"`
	Notes       string              `json:"notes"`
}

type PrescriptionPatch struct {
	PatientName *string              `json:"patientName"`
	Medications *[]models.Medication `json:"medications"`
	Notes       *string              `json:"notes"`
}

type PrescriptionService struct {
	prescriptions repository.PrescriptionRepository
	patients      repository.PatientRepository
	logger        zerolog.Logger
	now           func() time.Time
}

func NewPrescriptionService(prescriptions repository.PrescriptionRepository, patients repository.PatientRepository, logger zerolog.Logger) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		patients:      patients,
		logger:        logger.With().Str("service", "prescriptions").Logger(),
		now:           time.Now,
	}
}

// List returns prescriptions newest first. A doctor without an explicit
// doctor filter only sees their own.
func (s *PrescriptionService) List(ctx context.Context, q PrescriptionQuery, caller *models.User) ([]models.Prescription, error) {
	f := repository.PrescriptionFilter{DoctorID: q.DoctorID}
	if f.DoctorID == "" && caller.Role == models.RoleDoctor {
		f.DoctorID = caller.ID
	}
	if q.PatientID != "" {
		oid, ok := parseID(q.PatientID)
		if !ok {
			return []models.Prescription{}, nil
		}
		f.PatientID = &oid
	}
	list, err := s.prescriptions.List(ctx, f)
	if err != nil {
		return nil, Internal("Failed to fetch prescriptions", err)
	}
	return list, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id string, caller *models.User) (*models.Prescription, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == models.RoleDoctor && p.DoctorID != caller.ID {
		return nil, Forbidden("Access denied")
	}
	return p, nil
}

func (s *PrescriptionService) ListForPatient(ctx context.Context, patientID string, caller *models.User) (*models.PatientRef, []models.Prescription, error) {
	patient, err := s.patient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	f := repository.PrescriptionFilter{PatientID: &patient.ID}
	if caller.Role == models.RoleDoctor {
		f.DoctorID = caller.ID
	}
	list, err := s.prescriptions.List(ctx, f)
	if err != nil {
		return nil, nil, Internal("Failed to fetch prescriptions", err)
	}
	ref := patient.Ref()
	return &ref, list, nil
}

func (s *PrescriptionService) Create(ctx context.Context, in PrescriptionInput, doctor *models.User) (*models.Prescription, error) {
	if strings.TrimSpace(in.PatientID) == "" || len(in.Medications) == 0 {
		return nil, BadRequest("Patient ID and medications are required")
	}
	patient, err := s.patient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	meds, err := cleanMedications(in.Medications)
	if err != nil {
		return nil, err
	}

	name := patient.Name
	if in.PatientName != nil && strings.TrimSpace(*in.PatientName) != "" {
		name = strings.TrimSpace(*in.PatientName)
	}
	now := s.now()
	p := &models.Prescription{
		PatientID:   patient.ID,
		PatientName: name,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Medications: meds,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.prescriptions.Insert(ctx, p); err != nil {
		return nil, Internal("Failed to create prescription", err)
	}
	s.logger.Info().Str("prescriptionId", p.ID.Hex()).Str("doctorId", doctor.ID).Msg("prescription created")
	return p, nil
}

func (s *PrescriptionService) Update(ctx context.Context, id string, patch PrescriptionPatch, doctor *models.User) (*models.Prescription, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.DoctorID != doctor.ID {
		return nil, Forbidden("Access denied. You can only update your own prescriptions")
	}

	ch := repository.PrescriptionChanges{
		PatientName: trimmed(patch.PatientName),
		Notes:       patch.Notes,
		UpdatedAt:   s.now(),
	}
	if patch.Medications != nil {
		if len(*patch.Medications) == 0 {
			return nil, BadRequest("Medications must be a non-empty array")
		}
		meds, err := cleanMedications(*patch.Medications)
		if err != nil {
			return nil, err
		}
		ch.Medications = meds
	}

	p, err := s.prescriptions.Update(ctx, current.ID, ch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Prescription not found")
	}
	if err != nil {
		return nil, Internal("Failed to update prescription", err)
	}
	return p, nil
}

func (s *PrescriptionService) Delete(ctx context.Context, id string, doctor *models.User) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if current.DoctorID != doctor.ID {
		return Forbidden("Access denied. You can only delete your own prescriptions")
	}
	err = s.prescriptions.Delete(ctx, current.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("Prescription not found")
	}
	if err != nil {
		return Internal("Failed to delete prescription", err)
	}
	s.logger.Info().Str("prescriptionId", id).Str("doctorId", doctor.ID).Msg("prescription deleted")
	return nil
}

func (s *PrescriptionService) load(ctx context.Context, id string) (*models.Prescription, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Prescription not found")
	}
	p, err := s.prescriptions.Get(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Prescription not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch prescription", err)
	}
	return p, nil
}

func (s *PrescriptionService) patient(ctx context.Context, id string) (*models.Patient, error) {
	return lookupPatient(ctx, s.patients, id)
}

// cleanMedications trims every field and rejects entries with a blank one.
func cleanMedications(in []models.Medication) ([]models.Medication, error) {
	out := make([]models.Medication, len(in))
	for i, m := range in {
		m = models.Medication{
			Name:      strings.TrimSpace(m.Name),
			Dosage:    strings.TrimSpace(m.Dosage),
			Frequency: strings.TrimSpace(m.Frequency),
			Duration:  strings.TrimSpace(m.Duration),
		}
		if m.Name == "" || m.Dosage == "" || m.Frequency == "" || m.Duration == "" {
			return nil, BadRequest(msgMedicationFields)
		}
		out[i] = m
	}
	return out, nil
}

func lookupPatient(ctx context.Context, patients repository.PatientRepository, id string) (*models.Patient, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Patient not found")
	}
	p, err := patients.Get(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Patient not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch patient", err)
	}
	return p, nil
}
