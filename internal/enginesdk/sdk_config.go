package enginesdk

const (
	DefaultBaseURL = "http://localhost:7938"
)

// Config is the configuration for the engine SDK
type Config struct {
	BaseURL      string // BaseURL is required
	AccessToken  string // AccessToken is optional
	RefreshToken string // RefreshToken is optional, needed for token rotation

	// OnTokenRefresh is invoked after a successful token rotation so the
	// caller can persist the new pair. Optional.
	OnTokenRefresh func(accessToken string, refreshToken string)
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoEngineURL
	}
	return nil
}
