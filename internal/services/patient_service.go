package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

const msgPatientEmailTaken = "Patient with this email already exists"

// PatientInput is the registration payload.
type PatientInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DateOfBirth      string `json:"dateOfBirth"`
	EmergencyContact string `json:"emergencyContact"`
	MedicalHistory   string `json:"medicalHistory"`
}

// PatientPatch holds the fields an update may change. Anything else in the
// request body is dropped when it is decoded.
type PatientPatch struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	DateOfBirth      *string `json:"dateOfBirth"`
	EmergencyContact *string `json:"emergencyContact"`
	MedicalHistory   *string `json:"medicalHistory"`
}

type PatientService struct {
	patients repository.PatientRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPatientService(patients repository.PatientRepository, logger zerolog.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		logger:   logger.With().Str("service", "patients").Logger(),
		now:      time.Now,
	}
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, Internal("Failed to fetch patients", err)
	}
	return patients, nil
}

func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	return lookupPatient(ctx, s.patients, id)
}

// Search matches term case-insensitively against name, email and token, and
// as a plain substring against phone. It scans the whole collection.
func (s *PatientService) Search(ctx context.Context, term string) ([]models.Patient, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, Internal("Failed to search patients", err)
	}
	needle := strings.ToLower(term)
	matches := make([]models.Patient, 0)
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Email), needle) ||
			strings.Contains(strings.ToLower(p.Token), needle) ||
			strings.Contains(p.Phone, term) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *PatientService) Register(ctx context.Context, in PatientInput, actorID string) (*models.Patient, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)
	if name == "" || email == "" || phone == "" || address == "" || strings.TrimSpace(in.DateOfBirth) == "" {
		return nil, BadRequest("Name, email, phone, address, and date of birth are required")
	}
	dob, ok := utils.ParseDate(in.DateOfBirth)
	if !ok {
		return nil, BadRequest("Invalid date of birth")
	}

	// The unique index is the real guard; this lookup only gives the common
	// case a friendly message without a failed write.
	if _, err := s.patients.FindByEmail(ctx, email); err == nil {
		return nil, BadRequest(msgPatientEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, Internal("Failed to register patient", err)
	}

	now := s.now()
	p := &models.Patient{
		Name:             name,
		Email:            email,
		Phone:            phone,
		Address:          address,
		DateOfBirth:      dob,
		EmergencyContact: strings.TrimSpace(in.EmergencyContact),
		MedicalHistory:   strings.TrimSpace(in.MedicalHistory),
		Token:            utils.NewPatientToken(now),
		RegisteredBy:     actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.patients.Insert(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, BadRequest(msgPatientEmailTaken)
		}
		return nil, Internal("Failed to register patient", err)
	}
	s.logger.Info().Str("patientId", p.ID.Hex()).Str("registeredBy", actorID).Msg("patient registered")
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, id string, patch PatientPatch) (*models.Patient, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Patient not found")
	}

	ch := repository.PatientChanges{
		Name:             trimmed(patch.Name),
		Phone:            trimmed(patch.Phone),
		Address:          trimmed(patch.Address),
		EmergencyContact: trimmed(patch.EmergencyContact),
		MedicalHistory:   trimmed(patch.MedicalHistory),
		UpdatedAt:        s.now(),
	}
	if patch.DateOfBirth != nil {
		dob, ok := utils.ParseDate(*patch.DateOfBirth)
		if !ok {
			return nil, BadRequest("Invalid date of birth")
		}
		ch.DateOfBirth = &dob
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, BadRequest("Email cannot be empty")
		}
		existing, err := s.patients.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != oid:
			return nil, BadRequest(msgPatientEmailTaken)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, Internal("Failed to update patient", err)
		}
		ch.Email = &email
	}

	p, err := s.patients.Update(ctx, oid, ch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NotFound("Patient not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, BadRequest(msgPatientEmailTaken)
	case err != nil:
		return nil, Internal("Failed to update patient", err)
	}
	return p, nil
}

// RegenerateToken replaces the patient's front-desk token; the id is kept.
func (s *PatientService) RegenerateToken(ctx context.Context, id string) (*models.Patient, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Patient not found")
	}
	now := s.now()
	token := utils.NewPatientToken(now)
	p, err := s.patients.Update(ctx, oid, repository.PatientChanges{Token: &token, UpdatedAt: now})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Patient not found")
	}
	if err != nil {
		return nil, Internal("Failed to regenerate token", err)
	}
	return p, nil
}

func parseID(hex string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(hex)
	return oid, err == nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
