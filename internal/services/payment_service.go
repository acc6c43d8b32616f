// internal/services/payment_service.go
package services

import (
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/models"
)

// PaymentService creates Stripe payment intents for card orders. COD
// and bank transfer settle outside the platform and are skipped.
type PaymentService struct {
	cfg *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
	}
	return &PaymentService{cfg: cfg}
}

// InitiatePayment returns the payment reference for the order, or ""
// when the method does not go through the card processor.
func (s *PaymentService) InitiatePayment(order *models.Order) (string, error) {
	if !order.PaymentMethod.IsCard() || s.cfg.Payment.StripeSecretKey == "" {
		return "", nil
	}

	// Stripe amounts are in the currency's smallest unit.
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(order.TotalAmount.Shift(2).IntPart()),
		Currency: stripe.String(s.cfg.Payment.Currency),
	}
	params.Metadata = map[string]string{
		"order_id": order.ID.String(),
		"buyer_id": order.BuyerID.String(),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"intent_id": intent.ID,
	}).Info("Payment intent created")

	return intent.ID, nil
}
