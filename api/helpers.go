package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.vocdoni.io/dvote/log"
)

// buildLoginResponse creates a JWT token for the given subject. The token is
// signed with the API secret and is valid for the period specified on the
// jwtExpiration constant.
func (a *API) buildLoginResponse(subject string) (*LoginResponse, error) {
	j := jwt.New()
	if err := j.Set("subject", subject); err != nil {
		return nil, err
	}
	expirity := time.Now().Add(jwtExpiration)
	if err := j.Set(jwt.ExpirationKey, expirity.UnixNano()); err != nil {
		return nil, err
	}
	jmap, err := j.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	lr := &LoginResponse{Expirity: expirity}
	if _, lr.Token, err = a.auth.Encode(jmap); err != nil {
		return nil, err
	}
	return lr, nil
}

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// httpWriteOK helper function allows to write an empty OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
