package stripe

import (
	"encoding/json"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// Client wraps a dedicated Stripe API client. The secret key is bound to
// this instance instead of the SDK-global key, so several clients with
// different keys can coexist in the same process.
type Client struct {
	api           *stripeclient.API
	webhookSecret string
}

// NewClient creates a Stripe client authenticated with the given secret key.
func NewClient(secretKey, webhookSecret string) *Client {
	return NewClientWithBackends(secretKey, webhookSecret, nil)
}

// NewClientWithBackends creates a Stripe client with explicit backends,
// which tests use to point the SDK at a local HTTP server.
func NewClientWithBackends(secretKey, webhookSecret string, backends *stripeapi.Backends) *Client {
	api := &stripeclient.API{}
	api.Init(secretKey, backends)
	return &Client{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateCustomer creates a Stripe customer.
func (c *Client) CreateCustomer(params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	customer, err := c.api.Customers.New(params)
	if err != nil {
		return nil, NewError("api_call_failed", "failed to create customer", err)
	}
	return customer, nil
}

// CreateCharge creates a one-time charge against a customer. The amount is
// expressed in the currency's minor unit.
func (c *Client) CreateCharge(params *stripeapi.ChargeParams) (*stripeapi.Charge, error) {
	charge, err := c.api.Charges.New(params)
	if err != nil {
		return nil, NewError("api_call_failed", "failed to create charge", err)
	}
	return charge, nil
}

// CreateSubscription subscribes a customer to a recurring plan.
func (c *Client) CreateSubscription(params *stripeapi.SubscriptionParams) (*stripeapi.Subscription, error) {
	subscription, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, NewError("api_call_failed", "failed to create subscription", err)
	}
	return subscription, nil
}

// GetCustomer retrieves a customer by ID.
func (c *Client) GetCustomer(customerID string) (*stripeapi.Customer, error) {
	customer, err := c.api.Customers.Get(customerID, &stripeapi.CustomerParams{})
	if err != nil {
		return nil, NewError("api_call_failed", "failed to get customer", err)
	}
	return customer, nil
}

// ParseWebhookEvent decodes an inbound webhook payload. When a webhook
// secret is configured the Stripe signature header is verified first;
// otherwise the payload is decoded as-is.
func (c *Client) ParseWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	if c.webhookSecret != "" {
		event, err := stripewebhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
		if err != nil {
			return nil, NewError("webhook_validation", "webhook signature validation failed", err)
		}
		return &event, nil
	}
	event := &stripeapi.Event{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, NewError("invalid_event", "failed to decode webhook event", err)
	}
	return event, nil
}
