package ad524x

import (
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Model is the chip variant.
type Model string

// Supported models.
const (
	ModelAD5241 Model = "ad5241"
	ModelAD5242 Model = "ad5242"
)

// ModelFromString parses a model name, ignoring case.
func ModelFromString(s string) (Model, error) {
	switch m := Model(strings.ToLower(s)); m {
	case ModelAD5241, ModelAD5242:
		return m, nil
	}
	return "", errors.Errorf("unknown AD524x model %q", s)
}

// Config describes one chip: the bus it is on, its model and how its address pins are wired.
type Config struct {
	Bus   string `json:"bus"`
	Model string `json:"model"`
	AD0   bool   `json:"ad0,omitempty"`
	AD1   bool   `json:"ad1,omitempty"`
}

// Validate ensures all parts of the config are valid, and then returns the list of things we
// depend on.
func (cfg *Config) Validate(path string) ([]string, error) {
	if cfg.Bus == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	if cfg.Model == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	if _, err := ModelFromString(cfg.Model); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	return []string{cfg.Bus}, nil
}

// Address returns the 7-bit address selected by the AD0 and AD1 pins.
func (cfg *Config) Address() byte {
	addr := byte(BaseAddress)
	if cfg.AD0 {
		addr |= 1
	}
	if cfg.AD1 {
		addr |= 1 << 1
	}
	return addr
}
