// Package secrets loads the device secrets file. The file is the same one the
// display hardware is provisioned with: Wi-Fi credentials, the OpenWeather
// token, and the coordinates the forecast is fetched for.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
)

type Secrets struct {
	SSID     string  `json:"ssid"`
	Password string  `json:"password"`
	Token    string  `json:"openweather_token"`
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
}

// Load reads and validates the secrets file at path.
func Load(path string) (Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Secrets{}, fmt.Errorf("read secrets file: %w", err)
	}

	var s Secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return Secrets{}, fmt.Errorf("parse secrets file %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Secrets{}, fmt.Errorf("secrets file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks the fields the service itself depends on. The Wi-Fi
// credentials are passed through to device provisioning and may be empty here.
func (s Secrets) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("openweather_token is required")
	}
	if s.Lat < -90 || s.Lat > 90 {
		return fmt.Errorf("lat out of range: %f (must be -90..90)", s.Lat)
	}
	if s.Long < -180 || s.Long > 180 {
		return fmt.Errorf("long out of range: %f (must be -180..180)", s.Long)
	}
	return nil
}
