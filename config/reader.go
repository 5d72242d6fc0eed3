package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"

	"go.viam.com/i2cdev/components/board/fake"
	"go.viam.com/i2cdev/components/board/mmio"
	"go.viam.com/i2cdev/components/potentiometer/ad524x"
	"go.viam.com/i2cdev/logging"
)

// Read reads a config from the given file. ${VAR} references are replaced from the environment
// first. Files ending in .yaml or .yml are YAML, everything else is JSON.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	raw, err := decodeRaw(originalPath, r)
	if err != nil {
		return nil, err
	}

	cfg := Config{ConfigFilePath: originalPath}
	if err := decode(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := processConfig(&cfg, logger); err != nil {
		return nil, errors.Wrap(err, "failed to process config")
	}
	return &cfg, nil
}

func decodeRaw(originalPath string, r io.Reader) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(originalPath)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "failed to decode config from yaml")
		}
	default:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "failed to decode config from json")
		}
	}
	return raw, nil
}

// decode maps generic decoded data onto a typed struct using its json tags. Durations may be given
// as strings such as "100ms". Unknown keys are an error.
func decode(input, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      result,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func processConfig(cfg *Config, logger logging.Logger) error {
	if err := cfg.Ensure(); err != nil {
		return err
	}
	for idx := range cfg.Buses {
		conf := &cfg.Buses[idx]
		converted, err := convertBusAttributes(conf)
		if err != nil {
			return errors.Wrapf(err, "error converting attributes for bus %q (%s)", conf.Name, conf.Model)
		}
		conf.ConvertedAttributes = converted
	}
	for idx := range cfg.Components {
		conf := &cfg.Components[idx]
		converted, err := convertComponentAttributes(conf)
		if err != nil {
			return errors.Wrapf(err, "error converting attributes for component %q (%s)", conf.Name, conf.Model)
		}
		conf.ConvertedAttributes = converted
	}
	logger.Debugw("config processed", "path", cfg.ConfigFilePath, "buses", len(cfg.Buses), "components", len(cfg.Components))
	return nil
}

type validator interface {
	Validate(path string) ([]string, error)
}

func convertBusAttributes(conf *BusConfig) (interface{}, error) {
	var attrs validator
	switch conf.Model {
	case ModelFake:
		attrs = &fake.Config{}
	case ModelMMIO:
		attrs = &mmio.Config{}
	default:
		return nil, utils.NewConfigValidationError(conf.Name, errors.Errorf("unknown bus model %q", conf.Model))
	}
	if err := decode(map[string]interface{}(conf.Attributes), attrs); err != nil {
		return nil, err
	}
	if _, err := attrs.Validate(conf.Name + ".attributes"); err != nil {
		return nil, err
	}
	return attrs, nil
}

func convertComponentAttributes(conf *ComponentConfig) (interface{}, error) {
	attrs := &ad524x.Config{}
	if err := decode(map[string]interface{}(conf.Attributes), attrs); err != nil {
		return nil, err
	}
	attrs.Bus = conf.Bus
	attrs.Model = conf.Model
	if _, err := attrs.Validate(conf.Name); err != nil {
		return nil, err
	}
	return attrs, nil
}
