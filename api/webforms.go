package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/errors"
	"github.com/stripewebform/backend/webform"
)

// createWebformHandler stores a new webform definition.
func (a *API) createWebformHandler(w http.ResponseWriter, r *http.Request) {
	wf := &db.Webform{}
	if err := json.NewDecoder(r.Body).Decode(wf); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if wf.ID == "" {
		errors.ErrInvalidWebformData.With("webform id is required").Write(w)
		return
	}
	if err := validateHandlerConfig(wf); err != nil {
		err.Write(w)
		return
	}
	if err := a.db.SetWebform(wf); err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, wf)
}

// webformsHandler lists the stored webforms.
func (a *API) webformsHandler(w http.ResponseWriter, _ *http.Request) {
	webforms, err := a.db.Webforms()
	if err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &WebformList{Webforms: webforms})
}

// webformHandler returns one webform definition.
func (a *API) webformHandler(w http.ResponseWriter, r *http.Request) {
	wf, err := a.webformFromRequest(r)
	if err != nil {
		err.Write(w)
		return
	}
	httpWriteJSON(w, wf)
}

// updateWebformHandler replaces the definition of an existing webform.
func (a *API) updateWebformHandler(w http.ResponseWriter, r *http.Request) {
	current, apiErr := a.webformFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	wf := &db.Webform{}
	if err := json.NewDecoder(r.Body).Decode(wf); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	wf.ID = current.ID
	wf.CreatedAt = current.CreatedAt
	if err := validateHandlerConfig(wf); err != nil {
		err.Write(w)
		return
	}
	if err := a.db.SetWebform(wf); err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, wf)
}

// deleteWebformHandler removes a webform definition.
func (a *API) deleteWebformHandler(w http.ResponseWriter, r *http.Request) {
	wf, apiErr := a.webformFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.db.DelWebform(wf.ID); err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// webformElementsHandler lists the webform elements of a given type, which
// the admin UI uses to offer the available stripe elements. The type
// defaults to "stripe".
func (a *API) webformElementsHandler(w http.ResponseWriter, r *http.Request) {
	wf, apiErr := a.webformFromRequest(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	elementType := r.URL.Query().Get("type")
	if elementType == "" {
		elementType = "stripe"
	}
	httpWriteJSON(w, &ElementList{Elements: webform.ElementsByType(wf, elementType)})
}

// webformFromRequest loads the webform referenced by the webformID URL param.
func (a *API) webformFromRequest(r *http.Request) (*db.Webform, *errors.Error) {
	webformID := chi.URLParam(r, "webformID")
	if webformID == "" {
		err := errors.ErrMalformedURLParam.With("webformID is required")
		return nil, &err
	}
	wf, err := a.db.Webform(webformID)
	if err != nil {
		if err == db.ErrNotFound {
			notFound := errors.ErrWebformNotFound
			return nil, &notFound
		}
		storage := errors.ErrInternalStorageError.WithErr(err)
		return nil, &storage
	}
	return wf, nil
}

// validateHandlerConfig rejects webforms whose Stripe handler misses the
// settings the payment flow cannot run without.
func validateHandlerConfig(wf *db.Webform) *errors.Error {
	handler := wf.StripeHandler
	if handler == nil {
		return nil
	}
	if handler.StripeElement == "" {
		err := errors.ErrInvalidHandlerSettings.With("stripeElement is required")
		return &err
	}
	if handler.Amount == "" && handler.PlanID == "" {
		err := errors.ErrInvalidHandlerSettings.With("amount is required unless a plan is set")
		return &err
	}
	return nil
}
