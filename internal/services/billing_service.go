package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

const (
	msgBillItems      = "Each item must have a description and positive amount"
	msgBillPaidUpdate = "Cannot update paid bills"
	msgBillPaidDelete = "Cannot delete paid bills"
	// totalTolerance is how far a client supplied total may drift from the
	// sum of the items.
	totalTolerance = 0.01
	// maxItemAmount caps a single line item so totals stay finite.
	maxItemAmount = 1e9
)

type BillQuery struct {
	PatientID string
	Status    string
}

type BillInput struct {
	PatientID   string            `json:"patientId"`
	PatientName *string           `json:"patientName"`
	Items       []models.BillItem `json:"items"`
	TotalAmount *float64          `json:"totalAmount"`
}

// BillPatch has no total: it is always derived from the items.
type BillPatch struct {
	PatientName *string            `json:"patientName"`
	Items       *[]models.BillItem `json:"items"`
}

type BillSummary struct {
	TotalAmount   float64 `json:"totalAmount"`
	PaidAmount    float64 `json:"paidAmount"`
	PendingAmount float64 `json:"pendingAmount"`
}

type BillStats struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	PendingAmount     float64 `json:"pendingAmount"`
	TotalBills        int     `json:"totalBills"`
	PaidBills         int     `json:"paidBills"`
	PendingBills      int     `json:"pendingBills"`
	AverageBillAmount float64 `json:"averageBillAmount"`
}

// PaymentNotifier is told about bills that have just been paid.
type PaymentNotifier interface {
	PaymentReceived(patient *models.Patient, bill *models.Bill)
}

type BillingService struct {
	bills    repository.BillRepository
	patients repository.PatientRepository
	notifier PaymentNotifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBillingService builds the service. notifier may be nil.
func NewBillingService(bills repository.BillRepository, patients repository.PatientRepository, notifier PaymentNotifier, logger zerolog.Logger) *BillingService {
	return &BillingService{
		bills:    bills,
		patients: patients,
		notifier: notifier,
		logger:   logger.With().Str("service", "bills").Logger(),
		now:      time.Now,
	}
}

// List returns bills newest first. Unknown status values are ignored.
func (s *BillingService) List(ctx context.Context, q BillQuery) ([]models.Bill, error) {
	var f repository.BillFilter
	if q.PatientID != "" {
		oid, ok := parseID(q.PatientID)
		if !ok {
			return []models.Bill{}, nil
		}
		f.PatientID = &oid
	}
	if models.ValidBillStatus(q.Status) {
		f.Status = q.Status
	}
	bills, err := s.bills.List(ctx, f)
	if err != nil {
		return nil, Internal("Failed to fetch bills", err)
	}
	return bills, nil
}

func (s *BillingService) Get(ctx context.Context, id string) (*models.Bill, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Bill not found")
	}
	b, err := s.bills.Get(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Bill not found")
	}
	if err != nil {
		return nil, Internal("Failed to fetch bill", err)
	}
	return b, nil
}

func (s *BillingService) ListForPatient(ctx context.Context, patientID string) (*models.PatientRef, []models.Bill, BillSummary, error) {
	patient, err := lookupPatient(ctx, s.patients, patientID)
	if err != nil {
		return nil, nil, BillSummary{}, err
	}
	bills, err := s.bills.List(ctx, repository.BillFilter{PatientID: &patient.ID})
	if err != nil {
		return nil, nil, BillSummary{}, Internal("Failed to fetch bills", err)
	}
	var sum BillSummary
	for _, b := range bills {
		sum.TotalAmount += b.TotalAmount
		if b.IsPaid() {
			sum.PaidAmount += b.TotalAmount
		} else {
			sum.PendingAmount += b.TotalAmount
		}
	}
	sum.TotalAmount = utils.RoundMoney(sum.TotalAmount)
	sum.PaidAmount = utils.RoundMoney(sum.PaidAmount)
	sum.PendingAmount = utils.RoundMoney(sum.PendingAmount)
	ref := patient.Ref()
	return &ref, bills, sum, nil
}

func (s *BillingService) Create(ctx context.Context, in BillInput, actor *models.User) (*models.Bill, error) {
	if strings.TrimSpace(in.PatientID) == "" || len(in.Items) == 0 {
		return nil, BadRequest("Patient ID and items are required")
	}
	patient, err := lookupPatient(ctx, s.patients, in.PatientID)
	if err != nil {
		return nil, err
	}
	items, submitted, total, err := priceItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.TotalAmount != nil && math.Abs(*in.TotalAmount-submitted) > totalTolerance {
		return nil, BadRequest("Total amount does not match sum of items")
	}

	name := patient.Name
	if in.PatientName != nil && strings.TrimSpace(*in.PatientName) != "" {
		name = strings.TrimSpace(*in.PatientName)
	}
	now := s.now()
	b := &models.Bill{
		PatientID:     patient.ID,
		PatientName:   name,
		Items:         items,
		TotalAmount:   total,
		Status:        models.BillPending,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bills.Insert(ctx, b); err != nil {
		return nil, Internal("Failed to create bill", err)
	}
	s.logger.Info().Str("billId", b.ID.Hex()).Float64("total", b.TotalAmount).Msg("bill created")
	return b, nil
}

// UpdateStatus moves a bill along pending -> paid. Confirming an already paid
// bill is accepted and keeps the original paidAt; a paid bill never returns to
// pending.
func (s *BillingService) UpdateStatus(ctx context.Context, id, status string, actor *models.User) (*models.Bill, error) {
	if !models.ValidBillStatus(status) {
		return nil, BadRequest(`Status must be either "pending" or "paid"`)
	}
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Bill not found")
	}
	now := s.now()

	if status == models.BillPending {
		b, err := s.bills.UpdatePending(ctx, oid, repository.BillChanges{
			UpdatedAt: now, UpdatedBy: actor.ID, UpdatedByName: actor.Name,
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, NotFound("Bill not found")
		case errors.Is(err, repository.ErrConflict):
			return nil, BadRequest("Paid bills cannot be moved back to pending")
		case err != nil:
			return nil, Internal("Failed to update bill status", err)
		}
		return b, nil
	}

	b, transitioned, err := s.bills.MarkPaid(ctx, oid, repository.PaymentStamp{At: now, By: actor.ID, ByName: actor.Name})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Bill not found")
	}
	if err != nil {
		return nil, Internal("Failed to update bill status", err)
	}
	if transitioned {
		s.logger.Info().Str("billId", b.ID.Hex()).Float64("total", b.TotalAmount).Str("by", actor.ID).Msg("bill paid")
		s.notifyPaid(ctx, b)
	}
	return b, nil
}

func (s *BillingService) notifyPaid(ctx context.Context, b *models.Bill) {
	if s.notifier == nil {
		return
	}
	patient, err := s.patients.Get(ctx, b.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("billId", b.ID.Hex()).Msg("payment receipt skipped: patient lookup failed")
		return
	}
	s.notifier.PaymentReceived(patient, b)
}

func (s *BillingService) Update(ctx context.Context, id string, patch BillPatch, actor *models.User) (*models.Bill, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, NotFound("Bill not found")
	}
	ch := repository.BillChanges{
		PatientName:   trimmed(patch.PatientName),
		UpdatedAt:     s.now(),
		UpdatedBy:     actor.ID,
		UpdatedByName: actor.Name,
	}
	if patch.Items != nil {
		if len(*patch.Items) == 0 {
			return nil, BadRequest("Items must be a non-empty array")
		}
		items, _, total, err := priceItems(*patch.Items)
		if err != nil {
			return nil, err
		}
		ch.Items = items
		ch.TotalAmount = &total
	}

	b, err := s.bills.UpdatePending(ctx, oid, ch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NotFound("Bill not found")
	case errors.Is(err, repository.ErrConflict):
		return nil, BadRequest(msgBillPaidUpdate)
	case err != nil:
		return nil, Internal("Failed to update bill", err)
	}
	return b, nil
}

func (s *BillingService) Delete(ctx context.Context, id string, actor *models.User) error {
	oid, ok := parseID(id)
	if !ok {
		return NotFound("Bill not found")
	}
	err := s.bills.DeletePending(ctx, oid)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NotFound("Bill not found")
	case errors.Is(err, repository.ErrConflict):
		return BadRequest(msgBillPaidDelete)
	case err != nil:
		return Internal("Failed to delete bill", err)
	}
	s.logger.Info().Str("billId", id).Str("by", actor.ID).Msg("bill deleted")
	return nil
}

// Stats aggregates over every bill. Anything not paid counts as pending.
func (s *BillingService) Stats(ctx context.Context) (BillStats, error) {
	bills, err := s.bills.List(ctx, repository.BillFilter{})
	if err != nil {
		return BillStats{}, Internal("Failed to compute bill statistics", err)
	}
	var st BillStats
	for _, b := range bills {
		if b.IsPaid() {
			st.TotalRevenue += b.TotalAmount
			st.PaidBills++
		} else {
			st.PendingAmount += b.TotalAmount
			st.PendingBills++
		}
	}
	st.TotalBills = len(bills)
	if st.TotalBills > 0 {
		st.AverageBillAmount = utils.RoundMoney((st.TotalRevenue + st.PendingAmount) / float64(st.TotalBills))
	}
	st.TotalRevenue = utils.RoundMoney(st.TotalRevenue)
	st.PendingAmount = utils.RoundMoney(st.PendingAmount)
	return st, nil
}

// priceItems validates line items and returns them with rounded amounts, the
// sum of the amounts as submitted and the stored total, which is the sum of
// the rounded amounts.
func priceItems(in []models.BillItem) ([]models.BillItem, float64, float64, error) {
	out := make([]models.BillItem, len(in))
	var submitted, total float64
	for i, it := range in {
		desc := strings.TrimSpace(it.Description)
		if desc == "" || !(it.Amount > 0) || it.Amount > maxItemAmount {
			return nil, 0, 0, BadRequest(msgBillItems)
		}
		amount := utils.RoundMoney(it.Amount)
		if amount <= 0 {
			return nil, 0, 0, BadRequest(msgBillItems)
		}
		submitted += it.Amount
		total += amount
		out[i] = models.BillItem{Description: desc, Amount: amount}
	}
	return out, submitted, utils.RoundMoney(total), nil
}
