package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/models"
)

const textbeltEndpoint = "https://textbelt.com/text"

// NotificationService sends payment receipts over SMS through Textbelt.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewNotificationService(apiKey string, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.With().Str("service", "notifications").Logger(),
	}
}

// PaymentReceived sends the receipt in the background so the API response is
// not held up by the SMS gateway.
func (s *NotificationService) PaymentReceived(patient *models.Patient, bill *models.Bill) {
	if patient.Phone == "" {
		s.logger.Debug().Str("patientId", patient.ID.Hex()).Msg("SMS not sent: patient has no phone number")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, patient.Phone, receiptMessage(patient, bill)); err != nil {
			s.logger.Warn().Err(err).Str("billId", bill.ID.Hex()).Msg("payment receipt not delivered")
			return
		}
		s.logger.Info().Str("billId", bill.ID.Hex()).Msg("payment receipt sent")
	}()
}

func receiptMessage(patient *models.Patient, bill *models.Bill) string {
	paid := bill.UpdatedAt
	if bill.PaidAt != nil {
		paid = *bill.PaidAt
	}
	return fmt.Sprintf(
		"Payment received: %.2f for %s on %s. Patient token %s. Thank you.",
		bill.TotalAmount,
		patient.Name,
		paid.Format("Jan 2 at 3:04 PM"),
		patient.Token,
	)
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
