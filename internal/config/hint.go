package config

import (
	"os"
	"time"
)

type Hint struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxInflight int64
}

// Enabled is false when no API key is configured; hints then answer with a
// "not configured" message.
func (h Hint) Enabled() bool {
	return h.APIKey != ""
}

func NewHint() (*Hint, error) {
	// an empty GEMINI_API_KEY counts as unset
	apiKey, _, err := readSecret("GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		if apiKey, _, err = readSecret("API_KEY"); err != nil {
			return nil, err
		}
	}

	timeout, err := lookupDuration("HINT_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	maxInflight, err := lookupInt("HINT_MAX_INFLIGHT", 4)
	if err != nil {
		return nil, err
	}

	hint := &Hint{
		APIKey:      apiKey,
		Model:       os.Getenv("HINT_MODEL"),
		Timeout:     timeout,
		MaxInflight: int64(maxInflight),
	}

	return hint, nil
}
