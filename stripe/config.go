package stripe

// Environment names selecting which secret key authenticates the Stripe API
// calls.
const (
	EnvironmentLive = "live"
	EnvironmentTest = "test"
)

// Config holds the Stripe configuration of the service. WebhookSecret is
// optional: when empty, inbound webhook payloads are accepted without
// signature verification. InstallID identifies this installation in the
// metadata attached to every Stripe object.
type Config struct {
	Environment   string `yaml:"environment" json:"environment"`
	LiveSecretKey string `yaml:"live_secret_key" json:"live_secret_key"`
	TestSecretKey string `yaml:"test_secret_key" json:"test_secret_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	InstallID     string `yaml:"install_id" json:"install_id"`
}

// SecretKey returns the secret key of the configured environment. Any
// environment other than "live" selects the test key.
func (c *Config) SecretKey() string {
	if c.Environment == EnvironmentLive {
		return c.LiveSecretKey
	}
	return c.TestSecretKey
}

// Validate checks that the configured environment has a usable secret key.
func (c *Config) Validate() error {
	if c.SecretKey() == "" {
		return NewError("invalid_configuration", "no secret key for environment "+c.Environment, nil)
	}
	return nil
}
