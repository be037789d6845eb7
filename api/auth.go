package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/stripewebform/backend/errors"
)

// authLoginHandler authenticates the administrator with the configured
// password and returns a JWT token for the protected routes.
func (a *API) authLoginHandler(w http.ResponseWriter, r *http.Request) {
	loginInfo := &LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(loginInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if a.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(loginInfo.Password), []byte(a.adminPassword)) != 1 {
		errors.ErrUnauthorized.Write(w)
		return
	}
	res, err := a.buildLoginResponse("admin")
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	httpWriteJSON(w, res)
}
