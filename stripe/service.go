// Package stripe integrates webform submissions with the Stripe payment
// service. It turns each newly created submission into a customer plus a
// one-time charge or a subscription, and correlates inbound webhook events
// back to the submission that originated them.
package stripe

import (
	"fmt"

	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/events"
)

// SubmissionStore is the view of the submission storage the service needs:
// resolving a submission by its unique ID. It returns db.ErrNotFound for
// stale references.
type SubmissionStore interface {
	Submission(id string) (*db.Submission, error)
}

// Service provides the payment handler and the webhook correlator. It is
// stateless across invocations except for the processed-event cache used to
// skip replayed webhook deliveries.
type Service struct {
	client     *Client
	store      SubmissionStore
	dispatcher *events.Dispatcher
	processed  *memoryEventStore
	config     *Config
}

// NewService creates a new Stripe service with its dependencies.
func NewService(config *Config, store SubmissionStore, dispatcher *events.Dispatcher) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("event dispatcher is required")
	}
	return &Service{
		client:     NewClient(config.SecretKey(), config.WebhookSecret),
		store:      store,
		dispatcher: dispatcher,
		processed:  newMemoryEventStore(0),
		config:     config,
	}, nil
}

// NewServiceWithClient builds a service around a caller-provided client. It
// lets tests point the SDK at a local backend instead of api.stripe.com.
func NewServiceWithClient(config *Config, client *Client, store SubmissionStore, dispatcher *events.Dispatcher) *Service {
	return &Service{
		client:     client,
		store:      store,
		dispatcher: dispatcher,
		processed:  newMemoryEventStore(0),
		config:     config,
	}
}
