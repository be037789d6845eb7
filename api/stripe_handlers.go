package api

import (
	"io"
	"net/http"

	"github.com/stripewebform/backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// maxWebhookBodyBytes bounds the size of inbound webhook payloads.
const maxWebhookBodyBytes = int64(65536)

// stripeWebhookHandler receives the inbound Stripe webhook deliveries and
// hands them to the correlator. Correlation misses still return 200 so
// Stripe does not retry them; only undecodable payloads are a client error.
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if a.stripe == nil {
		log.Errorf("stripe webhook: stripe service not available")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("stripe webhook: error reading request body: %s", err.Error())
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	signatureHeader := r.Header.Get("Stripe-Signature")
	if err := a.stripe.HandleWebhookEvent(payload, signatureHeader); err != nil {
		log.Errorf("stripe webhook: failed to process event: %v", err)
		if stripe.IsEventError(err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
