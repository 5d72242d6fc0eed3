package fake

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// A Config describes a simulated bus and the register devices on it.
type Config struct {
	// Devices are the 7-bit addresses of Memory slaves to attach.
	Devices []int `json:"devices,omitempty"`
	// Latency is the number of polls each condition stays pending. Defaults to 1.
	Latency *int `json:"latency,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	seen := map[int]struct{}{}
	for idx, addr := range conf.Devices {
		if addr < 0 || addr > 0x7F {
			return nil, utils.NewConfigValidationError(fmt.Sprintf("%s.devices.%d", path, idx),
				errors.Errorf("address %#x does not fit in 7 bits", addr))
		}
		if _, ok := seen[addr]; ok {
			return nil, utils.NewConfigValidationError(fmt.Sprintf("%s.devices.%d", path, idx),
				errors.Errorf("address %#x listed twice", addr))
		}
		seen[addr] = struct{}{}
	}
	if conf.Latency != nil && *conf.Latency < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("latency cannot be negative"))
	}
	return nil, nil
}

// NewFromConfig returns a peripheral with a Memory attached at every configured address.
func NewFromConfig(conf *Config) *Peripheral {
	p := NewPeripheral()
	if conf.Latency != nil {
		p.SetLatency(*conf.Latency)
	}
	for _, addr := range conf.Devices {
		p.Attach(NewMemory(uint8(addr)))
	}
	return p
}
