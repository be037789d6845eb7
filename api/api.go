// Package api provides the HTTP API of the webform Stripe backend: webform
// administration, submission intake with the Stripe post-save handler, and
// the inbound Stripe webhook endpoint.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/stripe"
	"go.vocdoni.io/dvote/log"
)

const jwtExpiration = 360 * time.Hour // 15 days

// Config groups the dependencies and settings of the API server.
type Config struct {
	Host          string
	Port          int
	Secret        string // JWT signing secret
	AdminPassword string // password accepted by the login endpoint
	DB            *db.MongoStorage
	Stripe        *stripe.Service
}

// API type represents the API HTTP server with JWT authentication
// capabilities for the administration endpoints.
type API struct {
	db            *db.MongoStorage
	stripe        *stripe.Service
	auth          *jwtauth.JWTAuth
	host          string
	port          int
	adminPassword string
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		db:            conf.DB,
		stripe:        conf.Stripe,
		auth:          jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:          conf.Host,
		port:          conf.Port,
		adminPassword: conf.AdminPassword,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(jwtauth.Authenticator(a.auth))
		// create a webform
		log.Infow("new route", "method", "POST", "path", webformsEndpoint)
		r.Post(webformsEndpoint, a.createWebformHandler)
		// list webforms
		log.Infow("new route", "method", "GET", "path", webformsEndpoint)
		r.Get(webformsEndpoint, a.webformsHandler)
		// get a webform
		log.Infow("new route", "method", "GET", "path", webformEndpoint)
		r.Get(webformEndpoint, a.webformHandler)
		// update a webform
		log.Infow("new route", "method", "PUT", "path", webformEndpoint)
		r.Put(webformEndpoint, a.updateWebformHandler)
		// delete a webform
		log.Infow("new route", "method", "DELETE", "path", webformEndpoint)
		r.Delete(webformEndpoint, a.deleteWebformHandler)
		// list webform elements by type
		log.Infow("new route", "method", "GET", "path", webformElementsEndpoint)
		r.Get(webformElementsEndpoint, a.webformElementsHandler)
		// get a submission
		log.Infow("new route", "method", "GET", "path", submissionEndpoint)
		r.Get(submissionEndpoint, a.submissionHandler)
		// update a submission (never re-triggers the payment handler)
		log.Infow("new route", "method", "PUT", "path", submissionEndpoint)
		r.Put(submissionEndpoint, a.updateSubmissionHandler)
	})

	// public routes
	r.Group(func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		// login
		log.Infow("new route", "method", "POST", "path", authLoginEndpoint)
		r.Post(authLoginEndpoint, a.authLoginHandler)
		// create a submission, running the Stripe handler afterwards
		log.Infow("new route", "method", "POST", "path", submissionsEndpoint)
		r.Post(submissionsEndpoint, a.createSubmissionHandler)
		// inbound Stripe webhook events
		log.Infow("new route", "method", "POST", "path", stripeWebhookEndpoint)
		r.Post(stripeWebhookEndpoint, a.stripeWebhookHandler)
	})

	return r
}
