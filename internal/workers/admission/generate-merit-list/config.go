// internal/workers/admission/generate-merit-list/config.go
package generatemeritlist

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Recomputation is a batch over a whole campaign; give it room.
		Timeout: 2 * time.Minute,
	}
}
