// internal/services/billing_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/config"
	"github.com/ranksight/ranksight-backend/internal/models"
)

// BillingService is thin glue around Stripe: it creates checkout sessions
// for plan upgrades and applies webhook-confirmed upgrades. All quota logic
// lives elsewhere and keys off shop.Plan alone.
type BillingService struct {
	db     *gorm.DB
	config *config.Config
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

func NewBillingService(db *gorm.DB, cfg *config.Config) *BillingService {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &BillingService{db: db, config: cfg}
}

// CreateCheckoutSession starts a subscription checkout for the target plan.
func (s *BillingService) CreateCheckoutSession(shop *models.Shop, plan models.PlanID) (*CheckoutResponse, error) {
	priceID, ok := s.config.Payment.PriceIDs[plan]
	if !ok || priceID == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "plan %q is not purchasable", plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.config.Frontend.BaseURL + "/billing/success"),
		CancelURL:         stripe.String(s.config.Frontend.BaseURL + "/billing/cancel"),
		ClientReferenceID: stripe.String(shop.ID.String()),
	}
	params.Params.Metadata = map[string]string{
		"shop_id": shop.ID.String(),
		"plan":    string(plan),
	}
	if shop.Email != "" {
		params.CustomerEmail = stripe.String(shop.Email)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// HandleWebhook verifies the Stripe signature and applies completed
// checkouts to the shop's plan.
func (s *BillingService) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.Payment.StripeWebhookSecret)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, "invalid webhook signature: %v", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	shopIDStr, _ := event.Data.Object["client_reference_id"].(string)
	metadata, _ := event.Data.Object["metadata"].(map[string]interface{})
	planStr, _ := metadata["plan"].(string)
	if shopIDStr == "" || planStr == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "checkout session missing shop reference")
	}

	result := s.db.Model(&models.Shop{}).
		Where("id = ?", shopIDStr).
		Update("plan", models.PlanID(planStr))
	if result.Error != nil {
		return fmt.Errorf("failed to apply plan upgrade: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "shop %s", shopIDStr)
	}

	logrus.WithFields(logrus.Fields{
		"shop_id": shopIDStr,
		"plan":    planStr,
	}).Info("Plan upgrade applied")
	return nil
}
