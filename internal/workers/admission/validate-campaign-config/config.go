// internal/workers/admission/validate-campaign-config/config.go
package validatecampaignconfig

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
