package api

import (
	"time"

	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/webform"
)

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is the response of the login endpoint.
type LoginResponse struct {
	Token    string    `json:"token"`
	Expirity time.Time `json:"expirity"`
}

// WebformList is the response of the webform listing endpoint.
type WebformList struct {
	Webforms []*db.Webform `json:"webforms"`
}

// ElementList is the response of the element listing endpoint.
type ElementList struct {
	Elements []webform.ElementOption `json:"elements"`
}

// SubmissionRequest is the body for creating or updating a submission.
type SubmissionRequest struct {
	Values map[string]any `json:"values"`
}

// SubmissionResponse is returned after a submission is stored. Warnings
// carries non-fatal payment errors surfaced to the submitter.
type SubmissionResponse struct {
	ID       string   `json:"id"`
	Serial   int64    `json:"serial"`
	Warnings []string `json:"warnings,omitempty"`
}
