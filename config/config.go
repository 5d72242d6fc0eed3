// Package config defines the structures to configure the buses and devices of a machine.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/i2cdev/components/board/i2cdev"
	rutils "go.viam.com/i2cdev/utils"
)

// Bus models.
const (
	ModelFake = "fake"
	ModelMMIO = "mmio"
)

// Component models.
const (
	ModelAD5241 = "ad5241"
	ModelAD5242 = "ad5242"
)

// An AttributeMap is a convenience wrapper for pulling out typed information from a map.
type AttributeMap map[string]interface{}

// Has returns whether or not the given name is in the attributes.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Config describes the set of buses and the devices on them.
type Config struct {
	ConfigFilePath string `json:"-"`

	Buses      []BusConfig       `json:"buses,omitempty"`
	Components []ComponentConfig `json:"components,omitempty"`
}

// BusConfig describes one I2C bus master.
type BusConfig struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	// Timeout bounds every wait on the port's flags. Zero uses the default.
	Timeout       time.Duration `json:"timeout,omitempty"`
	UnboundedWait bool          `json:"unbounded_wait,omitempty"`
	ErrorMode     string        `json:"error_mode,omitempty"`
	Attributes    AttributeMap  `json:"attributes,omitempty"`

	// ConvertedAttributes is the model specific form of Attributes, set while reading.
	ConvertedAttributes interface{} `json:"-"`
}

// Validate ensures all parts of the config are valid.
func (conf *BusConfig) Validate(path string) error {
	if conf.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	switch conf.Model {
	case ModelFake, ModelMMIO:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	default:
		return utils.NewConfigValidationError(path, rutils.NewModelNotFoundError("bus", conf.Model))
	}
	if conf.Timeout < 0 {
		return utils.NewConfigValidationError(path, errors.New("timeout cannot be negative"))
	}
	if _, err := i2cdev.ErrorModeFromString(conf.ErrorMode); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// ComponentConfig describes one device on a bus.
type ComponentConfig struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	Bus        string       `json:"bus"`
	Attributes AttributeMap `json:"attributes,omitempty"`

	ConvertedAttributes interface{} `json:"-"`
}

// Validate ensures all parts of the config are valid.
func (conf *ComponentConfig) Validate(path string) error {
	if conf.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if conf.Bus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	switch conf.Model {
	case ModelAD5241, ModelAD5242:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	default:
		return utils.NewConfigValidationError(path, rutils.NewModelNotFoundError("component", conf.Model))
	}
	return nil
}

// Ensure ensures all parts of the config are valid and that every component names a configured
// bus.
func (c *Config) Ensure() error {
	busNames := map[string]struct{}{}
	for idx := range c.Buses {
		path := fmt.Sprintf("buses.%d", idx)
		if err := c.Buses[idx].Validate(path); err != nil {
			return err
		}
		if _, ok := busNames[c.Buses[idx].Name]; ok {
			return utils.NewConfigValidationError(path, errors.Errorf("duplicate bus name %q", c.Buses[idx].Name))
		}
		busNames[c.Buses[idx].Name] = struct{}{}
	}

	componentNames := map[string]struct{}{}
	for idx := range c.Components {
		path := fmt.Sprintf("components.%d", idx)
		conf := &c.Components[idx]
		if err := conf.Validate(path); err != nil {
			return err
		}
		if _, ok := componentNames[conf.Name]; ok {
			return utils.NewConfigValidationError(path, errors.Errorf("duplicate component name %q", conf.Name))
		}
		componentNames[conf.Name] = struct{}{}
		if _, ok := busNames[conf.Bus]; !ok {
			return utils.NewConfigValidationError(path, errors.Errorf("unknown bus %q", conf.Bus))
		}
	}
	return nil
}

// FindBus returns the bus config with the given name.
func (c *Config) FindBus(name string) (*BusConfig, bool) {
	for idx := range c.Buses {
		if c.Buses[idx].Name == name {
			return &c.Buses[idx], true
		}
	}
	return nil, false
}

// FindComponent returns the component config with the given name.
func (c *Config) FindComponent(name string) (*ComponentConfig, bool) {
	for idx := range c.Components {
		if c.Components[idx].Name == name {
			return &c.Components[idx], true
		}
	}
	return nil, false
}
