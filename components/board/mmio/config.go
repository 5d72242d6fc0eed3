package mmio

import (
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/i2cdev/components/board/buses"
)

// A Config describes a memory-mapped port.
type Config struct {
	BaseAddress uint64  `json:"base_address"`
	FoscHz      uint32  `json:"fosc_hz"`
	ClockHz     uint32  `json:"clock_hz,omitempty"`
	Layout      *Layout `json:"layout,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.BaseAddress == 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "base_address")
	}
	if conf.FoscHz == 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "fosc_hz")
	}
	if conf.Layout != nil {
		if err := conf.Layout.Validate(); err != nil {
			return nil, utils.NewConfigValidationError(path+".layout", err)
		}
	}
	return nil, nil
}

func (conf *Config) layout() Layout {
	if conf.Layout == nil {
		return DefaultLayout
	}
	return *conf.Layout
}

// OpenFromConfig maps the configured register block and enables the port as bus master.
func OpenFromConfig(conf *Config) (*Peripheral, error) {
	p, err := Open(conf.BaseAddress, conf.layout(), conf.FoscHz)
	if err != nil {
		return nil, err
	}
	p.Enable(buses.ModeMaster)
	if conf.ClockHz != 0 {
		if err := p.SetClock(conf.ClockHz); err != nil {
			return nil, multierr.Combine(err, p.Close())
		}
	}
	return p, nil
}
