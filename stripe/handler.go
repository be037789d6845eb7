package stripe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/webform"
	"go.vocdoni.io/dvote/log"
)

// tokenPrefix is the prefix of valid single-use payment tokens. Anything
// else in the stripe element (empty, payment method IDs, garbage) means no
// charge attempt is made.
const tokenPrefix = "tok"

// resolvedHandlerConfig is the handler configuration after token replacement
// against one submission. It is built fresh per invocation and never stored.
type resolvedHandlerConfig struct {
	Amount             string
	StripeElement      string
	PlanID             string
	Quantity           string
	Currency           string
	Description        string
	Email              string
	Metadata           string
	CustomerCreate     string
	ChargeCreate       string
	SubscriptionCreate string
}

func resolveHandlerConfig(cfg *db.StripeHandlerConfig, wf *db.Webform, sub *db.Submission) *resolvedHandlerConfig {
	resolve := func(template string) string {
		return webform.ReplaceTokens(template, wf, sub)
	}
	resolved := &resolvedHandlerConfig{
		Amount:             resolve(cfg.Amount),
		StripeElement:      resolve(cfg.StripeElement),
		PlanID:             resolve(cfg.PlanID),
		Quantity:           resolve(cfg.Quantity),
		Currency:           resolve(cfg.Currency),
		Description:        resolve(cfg.Description),
		Email:              resolve(cfg.Email),
		Metadata:           resolve(cfg.Metadata),
		CustomerCreate:     resolve(cfg.CustomerCreate),
		ChargeCreate:       resolve(cfg.ChargeCreate),
		SubscriptionCreate: resolve(cfg.SubscriptionCreate),
	}
	if resolved.Currency == "" {
		resolved.Currency = "usd"
	}
	return resolved
}

// submissionMetadata builds the reserved metadata attached to every Stripe
// object created for a submission. The webhook correlator depends on the
// webform_submission_id key to find its way back.
func (s *Service) submissionMetadata(wf *db.Webform, sub *db.Submission) map[string]string {
	return map[string]string{
		"uuid":                  s.config.InstallID,
		"webform":               wf.Title,
		"webform_id":            wf.ID,
		"webform_submission_id": sub.ID,
		"webform_serial_id":     strconv.FormatInt(sub.Serial, 10),
	}
}

// ProcessSubmission runs the Stripe handler for one newly created
// submission: it resolves the handler configuration, creates a customer and
// then either charges it once or subscribes it to a plan. Callers must only
// invoke it on creation, never on submission updates.
//
// A missing or invalid payment token is a no-op, not an error. Failures of
// the Stripe API calls are returned as *Error with code "api_call_failed"
// so the caller can surface them as a warning; everything else (malformed
// YAML, unparseable amount) is fatal to the invocation and propagates.
func (s *Service) ProcessSubmission(ctx context.Context, wf *db.Webform, sub *db.Submission) error {
	if wf == nil || wf.StripeHandler == nil {
		return nil
	}
	data := resolveHandlerConfig(wf.StripeHandler, wf, sub)

	metadata, err := mergeMetadata(s.submissionMetadata(wf, sub), data.Metadata)
	if err != nil {
		return fmt.Errorf("stripe handler metadata: %w", err)
	}

	token := sub.Value(data.StripeElement)
	if token == "" || !strings.HasPrefix(token, tokenPrefix) {
		log.Infow("no charge attempt made for webform submission",
			"webform", wf.ID, "submission", sub.ID)
		return nil
	}

	customerParams := &stripeapi.CustomerParams{
		Email:       stripeapi.String(data.Email),
		Description: stripeapi.String(data.Description),
		Source:      stripeapi.String(token),
	}
	customerParams.Context = ctx
	customerParams.Metadata = metadata
	reserved := reservedKeys("email", "description", "source", "metadata")
	if err := applyOverrides(&customerParams.Params, data.CustomerCreate, reserved); err != nil {
		return fmt.Errorf("stripe handler customer overrides: %w", err)
	}
	customer, err := s.client.CreateCustomer(customerParams)
	if err != nil {
		return err
	}

	if data.PlanID == "" {
		return s.chargeCustomer(ctx, customer.ID, data, metadata)
	}
	return s.subscribeCustomer(ctx, customer.ID, data, metadata)
}

func (s *Service) chargeCustomer(ctx context.Context, customerID string, data *resolvedHandlerConfig, metadata map[string]string) error {
	amount, err := amountToMinorUnits(data.Amount)
	if err != nil {
		return fmt.Errorf("stripe handler charge: %w", err)
	}
	chargeParams := &stripeapi.ChargeParams{
		Amount:      stripeapi.Int64(amount),
		Currency:    stripeapi.String(data.Currency),
		Customer:    stripeapi.String(customerID),
		Description: stripeapi.String(data.Description),
	}
	chargeParams.Context = ctx
	chargeParams.Metadata = metadata
	reserved := reservedKeys("amount", "currency", "customer", "description", "metadata")
	if err := applyOverrides(&chargeParams.Params, data.ChargeCreate, reserved); err != nil {
		return fmt.Errorf("stripe handler charge overrides: %w", err)
	}
	charge, err := s.client.CreateCharge(chargeParams)
	if err != nil {
		return err
	}
	log.Infow("stripe charge created",
		"charge", charge.ID, "customer", customerID,
		"amount", amount, "currency", data.Currency)
	return nil
}

func (s *Service) subscribeCustomer(ctx context.Context, customerID string, data *resolvedHandlerConfig, metadata map[string]string) error {
	subscriptionParams := &stripeapi.SubscriptionParams{
		Customer: stripeapi.String(customerID),
		Items: []*stripeapi.SubscriptionItemsParams{
			{
				Price:    stripeapi.String(data.PlanID),
				Quantity: stripeapi.Int64(parseQuantity(data.Quantity)),
			},
		},
	}
	subscriptionParams.Context = ctx
	subscriptionParams.Metadata = metadata
	reserved := reservedKeys("customer", "items", "plan", "price", "quantity", "metadata")
	if err := applyOverrides(&subscriptionParams.Params, data.SubscriptionCreate, reserved); err != nil {
		return fmt.Errorf("stripe handler subscription overrides: %w", err)
	}
	subscription, err := s.client.CreateSubscription(subscriptionParams)
	if err != nil {
		return err
	}
	log.Infow("stripe subscription created",
		"subscription", subscription.ID, "customer", customerID, "plan", data.PlanID)
	return nil
}
