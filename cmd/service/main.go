package main

import (
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stripewebform/backend/api"
	"github.com/stripewebform/backend/db"
	"github.com/stripewebform/backend/events"
	"github.com/stripewebform/backend/stripe"
	"go.vocdoni.io/dvote/log"
)

func main() {
	log.Init("debug", "stdout", nil)
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "JWT signing secret")
	flag.String("adminPassword", "", "password of the admin login endpoint")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "webform-backend", "The name of the MongoDB database")
	flag.String("stripeEnvironment", stripe.EnvironmentTest, "stripe environment (live or test)")
	flag.String("stripeLiveSecret", "", "stripe live secret key")
	flag.String("stripeTestSecret", "", "stripe test secret key")
	flag.String("stripeWebhookSecret", "", "stripe webhook signing secret (optional)")
	flag.String("installId", "", "installation identifier attached to stripe metadata")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("WEBFORM")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	adminPassword := viper.GetString("adminPassword")
	if adminPassword == "" {
		log.Fatal("adminPassword is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// create the process-wide event dispatcher with a logging listener, so
	// correlated webhook events are visible even with nothing else wired
	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(stripe.WebhookEventName, func(payload any) {
		event, ok := payload.(*stripe.WebhookEvent)
		if !ok {
			return
		}
		submissionID := ""
		if event.Submission != nil {
			submissionID = event.Submission.ID
		}
		log.Infow("stripe webform webhook event",
			"type", event.EventType, "submission", submissionID)
	})
	// create the Stripe service
	stripeService, err := stripe.NewService(&stripe.Config{
		Environment:   viper.GetString("stripeEnvironment"),
		LiveSecretKey: viper.GetString("stripeLiveSecret"),
		TestSecretKey: viper.GetString("stripeTestSecret"),
		WebhookSecret: viper.GetString("stripeWebhookSecret"),
		InstallID:     viper.GetString("installId"),
	}, database, dispatcher)
	if err != nil {
		log.Fatalf("failed to create stripe service: %v", err)
	}
	// create the local API server
	api.New(&api.Config{
		Host:          host,
		Port:          port,
		Secret:        secret,
		AdminPassword: adminPassword,
		DB:            database,
		Stripe:        stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
