package stripe

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/events"
)

func TestProcessSubmissionSkipsWithoutToken(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "10.00",
		StripeElement: "card",
	}
	wf := testWebform(handler)

	// missing element value
	err := service.ProcessSubmission(context.Background(), wf, testSubmission(map[string]any{"name": "Anna"}))
	c.Assert(err, qt.IsNil)
	// empty token
	err = service.ProcessSubmission(context.Background(), wf, testSubmission(map[string]any{"card": ""}))
	c.Assert(err, qt.IsNil)
	// payment method id instead of a single-use token
	err = service.ProcessSubmission(context.Background(), wf, testSubmission(map[string]any{"card": "pm_abc123"}))
	c.Assert(err, qt.IsNil)

	c.Assert(fake.recorded(), qt.HasLen, 0)
}

func TestProcessSubmissionSkipsWithoutHandler(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())

	err := service.ProcessSubmission(context.Background(), testWebform(nil),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNil)
	c.Assert(fake.recorded(), qt.HasLen, 0)
}

func TestProcessSubmissionCharge(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "10.00",
		StripeElement: "card",
		Email:         "[webform_submission:values:email]",
		Description:   "Donation from [webform_submission:values:name]",
	}
	sub := testSubmission(map[string]any{
		"card":  "tok_visa",
		"email": "anna@example.com",
		"name":  "Anna",
	})

	err := service.ProcessSubmission(context.Background(), testWebform(handler), sub)
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)

	customer := calls[0]
	c.Assert(customer.path, qt.Equals, "/v1/customers")
	c.Assert(customer.form.Get("source"), qt.Equals, "tok_visa")
	c.Assert(customer.form.Get("email"), qt.Equals, "anna@example.com")
	c.Assert(customer.form.Get("description"), qt.Equals, "Donation from Anna")
	c.Assert(customer.form.Get("metadata[webform_submission_id]"), qt.Equals, sub.ID)
	c.Assert(customer.form.Get("metadata[webform_id]"), qt.Equals, "contact")
	c.Assert(customer.form.Get("metadata[webform_serial_id]"), qt.Equals, "42")
	c.Assert(customer.form.Get("metadata[uuid]"), qt.Equals, "install-1")

	charge := calls[1]
	c.Assert(charge.path, qt.Equals, "/v1/charges")
	c.Assert(charge.form.Get("amount"), qt.Equals, "1000")
	c.Assert(charge.form.Get("currency"), qt.Equals, "usd")
	c.Assert(charge.form.Get("customer"), qt.Equals, "cus_123")
	c.Assert(charge.form.Get("metadata[webform_submission_id]"), qt.Equals, sub.ID)
}

func TestProcessSubmissionSubscription(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		StripeElement: "card",
		PlanID:        "plan_gold",
		Quantity:      "3",
		Currency:      "eur",
	}
	sub := testSubmission(map[string]any{"card": "tok_visa"})

	err := service.ProcessSubmission(context.Background(), testWebform(handler), sub)
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)
	c.Assert(calls[0].path, qt.Equals, "/v1/customers")

	subscription := calls[1]
	c.Assert(subscription.path, qt.Equals, "/v1/subscriptions")
	c.Assert(subscription.form.Get("customer"), qt.Equals, "cus_123")
	c.Assert(subscription.form.Get("items[0][price]"), qt.Equals, "plan_gold")
	c.Assert(subscription.form.Get("items[0][quantity]"), qt.Equals, "3")
	c.Assert(subscription.form.Get("metadata[webform_submission_id]"), qt.Equals, sub.ID)
	// a plan means no one-time charge
	for _, call := range calls {
		c.Assert(call.path, qt.Not(qt.Equals), "/v1/charges")
	}
}

func TestProcessSubmissionSubscriptionDefaultQuantity(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		StripeElement: "card",
		PlanID:        "plan_gold",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)
	c.Assert(calls[1].form.Get("items[0][quantity]"), qt.Equals, "1")
}

func TestProcessSubmissionOverridesCannotReplaceComputedFields(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:         "10.00",
		StripeElement:  "card",
		Email:          "anna@example.com",
		CustomerCreate: "source: tok_evil\nreceipt_email: ops@example.com",
		ChargeCreate:   "amount: 1\nstatement_descriptor: DONATION",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)

	customer := calls[0]
	c.Assert(customer.form.Get("source"), qt.Equals, "tok_visa")
	c.Assert(customer.form.Get("receipt_email"), qt.Equals, "ops@example.com")

	charge := calls[1]
	c.Assert(charge.form.Get("amount"), qt.Equals, "1000")
	c.Assert(charge.form.Get("statement_descriptor"), qt.Equals, "DONATION")
}

func TestProcessSubmissionNestedOverrides(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "5.50",
		StripeElement: "card",
		ChargeCreate:  "shipping:\n  name: Anna\n  address:\n    line1: Main St 1",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)
	charge := calls[1]
	c.Assert(charge.form.Get("amount"), qt.Equals, "550")
	c.Assert(charge.form.Get("shipping[name]"), qt.Equals, "Anna")
	c.Assert(charge.form.Get("shipping[address][line1]"), qt.Equals, "Main St 1")
}

func TestProcessSubmissionProviderError(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{failCustomers: true}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "10.00",
		StripeElement: "card",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(IsProviderError(err), qt.IsTrue)
	c.Assert(UserMessage(err), qt.Contains, "declined")

	// no charge is attempted after the customer call fails
	c.Assert(fake.recorded(), qt.HasLen, 1)
}

func TestProcessSubmissionMalformedMetadataIsFatal(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "10.00",
		StripeElement: "card",
		Metadata:      "campaign: [unclosed",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(IsProviderError(err), qt.IsFalse)
	c.Assert(fake.recorded(), qt.HasLen, 0)
}

func TestProcessSubmissionMalformedAmountIsFatal(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "ten dollars",
		StripeElement: "card",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa"}))
	c.Assert(err, qt.IsNotNil)
	c.Assert(IsProviderError(err), qt.IsFalse)

	// the customer is created before the amount is parsed
	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 1)
	c.Assert(calls[0].path, qt.Equals, "/v1/customers")
}

func TestProcessSubmissionTokenizedAmount(t *testing.T) {
	c := qt.New(t)
	fake := &fakeStripe{}
	service := newTestService(t, fake, &fakeStore{}, events.NewDispatcher())
	handler := &db.StripeHandlerConfig{
		Amount:        "[webform_submission:values:amount]",
		StripeElement: "card",
	}

	err := service.ProcessSubmission(context.Background(), testWebform(handler),
		testSubmission(map[string]any{"card": "tok_visa", "amount": "19.999"}))
	c.Assert(err, qt.IsNil)

	calls := fake.recorded()
	c.Assert(calls, qt.HasLen, 2)
	c.Assert(calls[1].form.Get("amount"), qt.Equals, "2000")
}
