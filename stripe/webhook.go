package stripe

import (
	"errors"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripewebform/backend/db"
	"go.vocdoni.io/dvote/log"
)

// WebhookEventName is the name under which correlated webhook events are
// published on the process-wide dispatcher.
const WebhookEventName = "stripe_webform.webhook"

// submissionIDKey is the metadata key carrying the back-reference from
// Stripe objects to the originating submission.
const submissionIDKey = "webform_submission_id"

// WebhookEvent is the domain event republished for every inbound Stripe
// event that could be correlated to a submission. Submission is nil when the
// referenced submission no longer exists.
type WebhookEvent struct {
	EventType  string
	Submission *db.Submission
	RawEvent   *stripeapi.Event
}

// HandleWebhookEvent decodes one inbound webhook delivery and correlates it
// to the submission that caused it. Replayed deliveries of an already
// processed event are skipped.
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	event, err := s.client.ParseWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}
	if event.ID != "" && s.processed.exists(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}
	s.Correlate(event)
	if event.ID != "" {
		s.processed.markProcessed(event.ID)
	}
	return nil
}

// Correlate maps a Stripe event to the submission it belongs to and
// publishes a WebhookEvent for other subsystems. Events that carry no
// submission reference are dropped silently; a submission id that no longer
// resolves still publishes the event, with a nil submission, so listeners
// are not starved by stale references.
func (s *Service) Correlate(event *stripeapi.Event) {
	submissionID := s.submissionIDFromEvent(event)
	if submissionID == "" {
		log.Debugf("stripe webhook: no submission reference in event %s (%s)", event.ID, event.Type)
		return
	}
	submission, err := s.store.Submission(submissionID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Warnw("stripe webhook: failed to load submission",
				"submission", submissionID, "event", event.ID, "error", err)
		}
		submission = nil
	}
	s.dispatcher.Dispatch(WebhookEventName, &WebhookEvent{
		EventType:  string(event.Type),
		Submission: submission,
		RawEvent:   event,
	})
}

// submissionIDFromEvent extracts the submission id from the event subject's
// own metadata, or from the metadata of its owning customer. First match
// wins; any failure fetching the customer counts as no correlation.
func (s *Service) submissionIDFromEvent(event *stripeapi.Event) string {
	if event.Data == nil {
		return ""
	}
	object := event.Data.Object
	if metadata, ok := object["metadata"].(map[string]any); ok {
		if id, ok := metadata[submissionIDKey].(string); ok && id != "" {
			return id
		}
	}
	customerID, ok := object["customer"].(string)
	if !ok || customerID == "" {
		return ""
	}
	customer, err := s.client.GetCustomer(customerID)
	if err != nil {
		log.Warnw("stripe webhook: failed to fetch customer for correlation",
			"customer", customerID, "event", event.ID, "error", err)
		return ""
	}
	return customer.Metadata[submissionIDKey]
}
