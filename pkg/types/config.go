package types

import (
	"errors"
	"time"
)

// DefaultEnvironment is used when Config.Environment is empty.
const DefaultEnvironment = "default"

// Config holds the connection parameters for a Client.
type Config struct {
	Address     string `json:"address" yaml:"address"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	Environment string `json:"environment" yaml:"environment"`

	// DialTimeout, when non-zero, makes the initial dial block until the
	// connection is ready or the timeout expires. Zero connects lazily.
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
}

// Config validation errors.
var (
	ErrAddressEmpty  = errors.New("address must not be empty")
	ErrUsernameEmpty = errors.New("username must not be empty")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Address == "" {
		return ErrAddressEmpty
	}
	if c.Username == "" {
		return ErrUsernameEmpty
	}
	return nil
}

// Env returns the configured environment name, or DefaultEnvironment.
func (c Config) Env() string {
	if c.Environment == "" {
		return DefaultEnvironment
	}
	return c.Environment
}
