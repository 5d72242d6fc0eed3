package config

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/components/board/fake"
	"go.viam.com/i2cdev/components/board/i2cdev"
	"go.viam.com/i2cdev/components/board/mmio"
	"go.viam.com/i2cdev/components/potentiometer/ad524x"
	"go.viam.com/i2cdev/logging"
	rutils "go.viam.com/i2cdev/utils"
)

// Machine holds the buses and devices built from a Config.
type Machine struct {
	buses       map[string]*i2cdev.Bus
	peripherals map[string]buses.Peripheral
	pots        map[string]*ad524x.Pot
	closers     []io.Closer
}

// Build opens every configured bus and constructs the devices on them. A processed Config, as
// returned by Read, is required.
func Build(cfg *Config, logger logging.Logger) (*Machine, error) {
	m := &Machine{
		buses:       map[string]*i2cdev.Bus{},
		peripherals: map[string]buses.Peripheral{},
		pots:        map[string]*ad524x.Pot{},
	}
	for idx := range cfg.Buses {
		if err := m.addBus(&cfg.Buses[idx], logger); err != nil {
			return nil, multierr.Combine(err, m.Close())
		}
	}
	for idx := range cfg.Components {
		if err := m.addComponent(&cfg.Components[idx], logger); err != nil {
			return nil, multierr.Combine(err, m.Close())
		}
	}
	return m, nil
}

func (m *Machine) addBus(conf *BusConfig, logger logging.Logger) error {
	var p buses.Peripheral
	switch attrs := conf.ConvertedAttributes.(type) {
	case *fake.Config:
		p = fake.NewFromConfig(attrs)
	case *mmio.Config:
		mp, err := mmio.OpenFromConfig(attrs)
		if err != nil {
			return errors.Wrapf(err, "cannot open bus %q", conf.Name)
		}
		m.closers = append(m.closers, mp)
		p = mp
	default:
		return rutils.NewUnexpectedTypeError(&fake.Config{}, conf.ConvertedAttributes)
	}

	mode, err := i2cdev.ErrorModeFromString(conf.ErrorMode)
	if err != nil {
		return err
	}
	busLogger := logger.Sublogger(conf.Name)
	master := buses.NewMaster(p, buses.PollConfig{Timeout: conf.Timeout, Unbounded: conf.UnboundedWait}, busLogger)
	m.peripherals[conf.Name] = p
	m.buses[conf.Name] = i2cdev.NewBus(master, i2cdev.Options{Name: conf.Name, ErrorMode: mode}, busLogger)
	return nil
}

func (m *Machine) addComponent(conf *ComponentConfig, logger logging.Logger) error {
	attrs, ok := conf.ConvertedAttributes.(*ad524x.Config)
	if !ok {
		return rutils.NewUnexpectedTypeError(attrs, conf.ConvertedAttributes)
	}
	bus, err := m.Bus(conf.Bus)
	if err != nil {
		return err
	}
	pot, err := ad524x.New(bus, attrs, logger.Sublogger(conf.Name))
	if err != nil {
		return errors.Wrapf(err, "cannot construct component %q", conf.Name)
	}
	m.pots[conf.Name] = pot
	return nil
}

// Bus returns the named bus.
func (m *Machine) Bus(name string) (*i2cdev.Bus, error) {
	b, ok := m.buses[name]
	if !ok {
		return nil, errors.Errorf("no bus named %q", name)
	}
	return b, nil
}

// BusNames returns the names of all buses, sorted.
func (m *Machine) BusNames() []string {
	names := make([]string, 0, len(m.buses))
	for name := range m.buses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Peripheral returns the port behind the named bus.
func (m *Machine) Peripheral(name string) (buses.Peripheral, bool) {
	p, ok := m.peripherals[name]
	return p, ok
}

// Pot returns the named potentiometer.
func (m *Machine) Pot(name string) (*ad524x.Pot, error) {
	p, ok := m.pots[name]
	if !ok {
		return nil, errors.Errorf("no potentiometer named %q", name)
	}
	return p, nil
}

// Close releases every mapped register block.
func (m *Machine) Close() error {
	var err error
	for _, c := range m.closers {
		err = multierr.Combine(err, c.Close())
	}
	m.closers = nil
	return err
}
