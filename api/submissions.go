package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/errors"
	"github.com/stripewebform/backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// createSubmissionHandler stores a new submission and then runs the Stripe
// handler attached to the webform, if any. Provider failures do not fail the
// request: the submission is already persisted, so they are reported back as
// a warning. Handler configuration failures (malformed YAML, bad amount) are
// fatal and surface as a server error.
func (a *API) createSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	wf, apiErr := a.webformFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	req := &SubmissionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Values == nil {
		errors.ErrInvalidSubmissionData.With("values are required").Write(w)
		return
	}
	submission := &db.Submission{
		ID:        uuid.NewString(),
		WebformID: wf.ID,
		Values:    req.Values,
	}
	if err := a.db.NewSubmission(submission); err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}

	res := &SubmissionResponse{ID: submission.ID, Serial: submission.Serial}
	if err := a.stripe.ProcessSubmission(r.Context(), wf, submission); err != nil {
		if !stripe.IsProviderError(err) {
			errors.ErrStripeError.WithErr(err).Write(w)
			return
		}
		log.Warnw("stripe handler failed for submission",
			"webform", wf.ID, "submission", submission.ID, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("Stripe error: %s", stripe.UserMessage(err)))
	}
	httpWriteJSON(w, res)
}

// updateSubmissionHandler replaces the values of an existing submission.
// Updates never run the payment handler: the idempotency boundary is
// created-vs-updated, editing a submission must not charge again.
func (a *API) updateSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	submission, apiErr := a.submissionFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	req := &SubmissionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Values == nil {
		errors.ErrInvalidSubmissionData.With("values are required").Write(w)
		return
	}
	if err := a.db.UpdateSubmissionValues(submission.ID, req.Values); err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &SubmissionResponse{ID: submission.ID, Serial: submission.Serial})
}

// submissionHandler returns one submission.
func (a *API) submissionHandler(w http.ResponseWriter, r *http.Request) {
	submission, apiErr := a.submissionFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	httpWriteJSON(w, submission)
}

// submissionFromRequest loads the submission referenced by the URL params,
// checking it belongs to the webform of the route.
func (a *API) submissionFromRequest(r *http.Request) (*db.Submission, *errors.Error) {
	submissionID := chi.URLParam(r, "submissionID")
	if submissionID == "" {
		err := errors.ErrMalformedURLParam.With("submissionID is required")
		return nil, &err
	}
	submission, err := a.db.Submission(submissionID)
	if err != nil {
		if err == db.ErrNotFound {
			notFound := errors.ErrSubmissionNotFound
			return nil, &notFound
		}
		storage := errors.ErrInternalStorageError.WithErr(err)
		return nil, &storage
	}
	if webformID := chi.URLParam(r, "webformID"); webformID != "" && submission.WebformID != webformID {
		notFound := errors.ErrSubmissionNotFound
		return nil, &notFound
	}
	return submission, nil
}
