package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_OverlaysSecretsFromEnvironment(t *testing.T) {
	dir := writeConfig(t, `
payments:
  commission_rate: 20
  gateway_timeout: 3s
`)
	t.Setenv("SALON_JWT_SECRET", "jwt-secret")
	t.Setenv("SALON_STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("SALON_DATABASE_PASSWORD", "pw")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Payments.CommissionRate)
	assert.Equal(t, 3*time.Second, cfg.Payments.GatewayTimeout)
	assert.Equal(t, "jwt-secret", cfg.JWT.Secret)
	assert.Equal(t, "whsec_test", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfig_RejectsCommissionRateAboveHundred(t *testing.T) {
	dir := writeConfig(t, `
payments:
  commission_rate: 120
`)
	t.Setenv("SALON_JWT_SECRET", "jwt-secret")
	t.Setenv("SALON_STRIPE_WEBHOOK_SECRET", "whsec_test")

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "commission_rate")
}

func TestLoadConfig_CommissionRatePrecision(t *testing.T) {
	t.Setenv("SALON_JWT_SECRET", "jwt-secret")
	t.Setenv("SALON_STRIPE_WEBHOOK_SECRET", "whsec_test")

	cfg, err := LoadConfig(writeConfig(t, `
payments:
  commission_rate: 12.345
`))
	require.NoError(t, err)
	assert.Equal(t, 12.345, cfg.Payments.CommissionRate)

	_, err = LoadConfig(writeConfig(t, `
payments:
  commission_rate: 12.34567
`))
	assert.ErrorContains(t, err, "commission_rate")
}

func TestLoadConfig_RequiresWebhookSecret(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SALON_JWT_SECRET", "jwt-secret")
	t.Setenv("SALON_STRIPE_WEBHOOK_SECRET", "")

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "webhook secret")
}
