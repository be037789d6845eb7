package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/events"
)

// recordedCall is one request received by the fake Stripe API.
type recordedCall struct {
	method string
	path   string
	form   url.Values
}

// fakeStripe is a minimal in-process Stripe API: it records every request
// and answers the four endpoints the service uses.
type fakeStripe struct {
	mu            sync.Mutex
	calls         []recordedCall
	failCustomers bool
	customers     map[string]map[string]string // customer id -> metadata
}

func (f *fakeStripe) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, form: form})
	f.mu.Unlock()

	writeJSON := func(status int, payload any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/customers":
		if f.failCustomers {
			writeJSON(http.StatusPaymentRequired, map[string]any{
				"error": map[string]any{
					"type":    "card_error",
					"code":    "card_declined",
					"message": "Your card was declined.",
				},
			})
			return
		}
		writeJSON(http.StatusOK, map[string]any{"id": "cus_123", "object": "customer"})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/charges":
		writeJSON(http.StatusOK, map[string]any{"id": "ch_123", "object": "charge"})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/subscriptions":
		writeJSON(http.StatusOK, map[string]any{"id": "sub_123", "object": "subscription"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/customers/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/customers/")
		metadata, ok := f.customers[id]
		if !ok {
			writeJSON(http.StatusNotFound, map[string]any{
				"error": map[string]any{
					"type":    "invalid_request_error",
					"message": fmt.Sprintf("No such customer: %s", id),
				},
			})
			return
		}
		writeJSON(http.StatusOK, map[string]any{"id": id, "object": "customer", "metadata": metadata})
	default:
		writeJSON(http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "unexpected call " + r.URL.Path},
		})
	}
}

func (f *fakeStripe) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]recordedCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// fakeStore is an in-memory SubmissionStore.
type fakeStore struct {
	submissions map[string]*db.Submission
}

func (f *fakeStore) Submission(id string) (*db.Submission, error) {
	if submission, ok := f.submissions[id]; ok {
		return submission, nil
	}
	return nil, db.ErrNotFound
}

// newTestService wires a Service against the fake Stripe API and the given
// store and dispatcher, without signature verification on webhooks.
func newTestService(t *testing.T, fake *fakeStripe, store SubmissionStore, dispatcher *events.Dispatcher) *Service {
	t.Helper()
	return newTestServiceWithSecret(t, fake, store, dispatcher, "")
}

// newTestServiceWithSecret is newTestService with webhook signature
// verification enabled.
func newTestServiceWithSecret(t *testing.T, fake *fakeStripe, store SubmissionStore,
	dispatcher *events.Dispatcher, webhookSecret string,
) *Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(server.Close)

	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
		URL:               stripeapi.String(server.URL),
		HTTPClient:        server.Client(),
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelError},
	})
	backends := &stripeapi.Backends{API: backend, Connect: backend, Uploads: backend}
	config := &Config{
		Environment:   EnvironmentTest,
		TestSecretKey: "sk_test_123",
		WebhookSecret: webhookSecret,
		InstallID:     "install-1",
	}
	return NewServiceWithClient(config,
		NewClientWithBackends(config.SecretKey(), config.WebhookSecret, backends),
		store, dispatcher)
}

func testWebform(handler *db.StripeHandlerConfig) *db.Webform {
	return &db.Webform{
		ID:    "contact",
		Title: "Contact us",
		Elements: []db.Element{
			{Key: "name", Type: "textfield", Title: "Name"},
			{Key: "card", Type: "stripe", Title: "Card"},
		},
		StripeHandler: handler,
	}
}

func testSubmission(values map[string]any) *db.Submission {
	return &db.Submission{
		ID:        "subm-42",
		WebformID: "contact",
		Serial:    42,
		Values:    values,
	}
}
