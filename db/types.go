package db

import "time"

// Element is a named input slot within a webform definition.
type Element struct {
	Key        string `json:"key" bson:"key"`
	Type       string `json:"type" bson:"type"`
	Title      string `json:"title,omitempty" bson:"title,omitempty"`
	AdminTitle string `json:"adminTitle,omitempty" bson:"admin_title,omitempty"`
}

// StripeHandlerConfig holds the operator-authored settings of the Stripe
// handler attached to a webform. Every field is a template string resolved
// against the submission before use. Metadata and the three *Create fields
// are YAML blocks; the *Create blocks may add raw Stripe API fields but can
// never replace the keys computed by the handler itself.
type StripeHandlerConfig struct {
	Amount             string `json:"amount" bson:"amount"`
	StripeElement      string `json:"stripeElement" bson:"stripe_element"`
	PlanID             string `json:"planId,omitempty" bson:"plan_id,omitempty"`
	Quantity           string `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Currency           string `json:"currency,omitempty" bson:"currency,omitempty"`
	Description        string `json:"description,omitempty" bson:"description,omitempty"`
	Email              string `json:"email,omitempty" bson:"email,omitempty"`
	Metadata           string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CustomerCreate     string `json:"stripeCustomerCreate,omitempty" bson:"stripe_customer_create,omitempty"`
	ChargeCreate       string `json:"stripeChargeCreate,omitempty" bson:"stripe_charge_create,omitempty"`
	SubscriptionCreate string `json:"stripeSubscriptionCreate,omitempty" bson:"stripe_subscription_create,omitempty"`
}

// Webform is a form definition with its elements and, optionally, the Stripe
// handler configuration that runs after each new submission.
type Webform struct {
	ID            string               `json:"id" bson:"_id"`
	Title         string               `json:"title" bson:"title"`
	Elements      []Element            `json:"elements" bson:"elements"`
	StripeHandler *StripeHandlerConfig `json:"stripeHandler,omitempty" bson:"stripe_handler,omitempty"`
	CreatedAt     time.Time            `json:"createdAt" bson:"created_at"`
}

// Submission is one completed instance of a webform. Serial is a per-webform
// incremental number, while ID is globally unique.
type Submission struct {
	ID        string         `json:"id" bson:"_id"`
	WebformID string         `json:"webformId" bson:"webform_id"`
	Serial    int64          `json:"serial" bson:"serial"`
	Values    map[string]any `json:"values" bson:"values"`
	CreatedAt time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Value returns the submission value stored under the given element key,
// rendered as a string. Missing keys yield the empty string.
func (s *Submission) Value(key string) string {
	if s == nil || s.Values == nil {
		return ""
	}
	return stringifyValue(s.Values[key])
}
