package api

const (
	// auth routes

	// POST /auth/login to login and get a JWT token
	authLoginEndpoint = "/auth/login"

	// webform routes

	// POST /webforms to create a new webform
	// GET /webforms to list the stored webforms
	webformsEndpoint = "/webforms"
	// GET/PUT/DELETE /webforms/{webformID} to manage a webform
	webformEndpoint = "/webforms/{webformID}"
	// GET /webforms/{webformID}/elements to list elements by type
	webformElementsEndpoint = "/webforms/{webformID}/elements"

	// submission routes

	// POST /webforms/{webformID}/submissions to create a submission
	submissionsEndpoint = "/webforms/{webformID}/submissions"
	// GET/PUT /webforms/{webformID}/submissions/{submissionID}
	submissionEndpoint = "/webforms/{webformID}/submissions/{submissionID}"

	// stripe routes

	// POST /stripe/webhook to receive Stripe webhook events
	stripeWebhookEndpoint = "/stripe/webhook"
)
