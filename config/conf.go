package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/rs/zerolog/log"
)

var ErrMissingServer = errors.New("firefly server url and token are required")

type server struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type importConfig struct {
	DefaultCurrency       string   `yaml:"default_currency"`
	SkipNames             []string `yaml:"skip_names"`
	CreditCardPaymentDate string   `yaml:"credit_card_payment_date"`
}

type MasterConfig struct {
	Server server       `yaml:"server"`
	Import importConfig `yaml:"import"`
}

// InitConfig reads the config file at path. A missing file yields an empty
// config, since the server may be given through flags or the environment.
func InitConfig(path string) (*MasterConfig, error) {
	init := MasterConfig{}
	if err := init.getConf(path); err != nil {
		return nil, err
	}
	return &init, nil
}

func (c *MasterConfig) getConf(file string) error {
	yamlFile, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("Path", file).Msg("No config file found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", file, err)
	}
	return nil
}

// Override replaces the server settings with any non-empty values.
func (c *MasterConfig) Override(url, token string) {
	if url != "" {
		c.Server.URL = url
	}
	if token != "" {
		c.Server.Token = token
	}
}

func (c *MasterConfig) Validate() error {
	if c.Server.URL == "" || c.Server.Token == "" {
		return ErrMissingServer
	}
	if c.Import.CreditCardPaymentDate != "" {
		if _, err := c.PaymentDate(); err != nil {
			return err
		}
	}
	return nil
}

// PaymentDate parses import.credit_card_payment_date; zero when unset.
func (c *MasterConfig) PaymentDate() (time.Time, error) {
	if c.Import.CreditCardPaymentDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, c.Import.CreditCardPaymentDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid credit_card_payment_date %q: %w", c.Import.CreditCardPaymentDate, err)
	}
	return t, nil
}
