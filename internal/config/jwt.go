package config

import "fmt"

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// JWT returns the token settings of the development server.
// The secret is required; expiration defaults to 24 hours.
func (c *Config) JWT() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          c.JWTSecret,
		ExpirationHours: c.JWTHours,
	}
	if cfg.ExpirationHours == 0 {
		cfg.ExpirationHours = 24
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("config error: 'jwt_secret' (CVB_JWT_SECRET) is required")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
