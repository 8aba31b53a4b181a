package config

import "os"

const (
	EnvServicesCRMURL  = "DOCROUTE_SERVICES_CRM_URL"
	EnvServicesRiskURL = "DOCROUTE_SERVICES_RISK_URL"
)

// ServicesConfig holds the endpoints of the downstream systems the action
// router dispatches to. Calls are simulated; the URLs appear in logs only.
type ServicesConfig struct {
	CRMURL  string `toml:"crm_url"`
	RiskURL string `toml:"risk_url"`
}

// Finalize applies defaults and environment variable overrides.
func (c *ServicesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ServicesConfig) Merge(overlay *ServicesConfig) {
	if overlay.CRMURL != "" {
		c.CRMURL = overlay.CRMURL
	}
	if overlay.RiskURL != "" {
		c.RiskURL = overlay.RiskURL
	}
}

func (c *ServicesConfig) loadDefaults() {
	if c.CRMURL == "" {
		c.CRMURL = "https://api.crm.example.com"
	}
	if c.RiskURL == "" {
		c.RiskURL = "https://api.risk.example.com"
	}
}

func (c *ServicesConfig) loadEnv() {
	if v := os.Getenv(EnvServicesCRMURL); v != "" {
		c.CRMURL = v
	}
	if v := os.Getenv(EnvServicesRiskURL); v != "" {
		c.RiskURL = v
	}
}
