package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	if value.Value == "" {
		d.Duration = 0
		return nil
	}
	if value.Tag == "!!int" {
		var v int64
		if err := value.Decode(&v); err != nil {
			return err
		}
		d.Duration = time.Duration(v) * time.Second
		return nil
	}
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = dur
	return nil
}

type Network struct {
	ChainID  uint64   `yaml:"chain_id"`
	RPCs     []string `yaml:"rpcs"`
	Explorer string   `yaml:"explorer"`
	EIP1559  bool     `yaml:"eip1559"`
}

type Account struct {
	Name          string `yaml:"name"`
	PrivateKeyEnv string `yaml:"private_key_env"`
}

// Transfer moves native value when token is empty, otherwise the given token
// amount in human units (scaled by the token's live decimals).
type Transfer struct {
	Account  string `yaml:"account"`
	Network  string `yaml:"network"`
	To       string `yaml:"to"`
	ValueWei string `yaml:"value_wei"`
	Token    string `yaml:"token"`
	Amount   string `yaml:"amount"`
}

type Config struct {
	Networks map[string]Network `yaml:"networks"`
	Accounts []Account          `yaml:"accounts"`

	Tx struct {
		PollInterval       Duration `yaml:"poll_interval"`
		NotVisibleTimeout  Duration `yaml:"not_visible_timeout"`
		FeeMultiplier      float64  `yaml:"fee_multiplier"`
		GasLimitMultiplier float64  `yaml:"gas_limit_multiplier"`
	} `yaml:"tx"`

	HTTP struct {
		RequestTimeout     Duration `yaml:"request_timeout"`
		ProxyURL           string   `yaml:"proxy_url"`
		InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
		UserAgent          string   `yaml:"user_agent"`
	} `yaml:"http"`

	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`

	Transfers []Transfer `yaml:"transfers"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tx.PollInterval.Duration == 0 {
		c.Tx.PollInterval = Duration{Duration: 10 * time.Second}
	}
	if c.Tx.NotVisibleTimeout.Duration == 0 {
		c.Tx.NotVisibleTimeout = Duration{Duration: 1200 * time.Second}
	}
	if c.Tx.FeeMultiplier == 0 {
		c.Tx.FeeMultiplier = 1.5
	}
	if c.Tx.GasLimitMultiplier == 0 {
		c.Tx.GasLimitMultiplier = 1.5
	}
	if c.HTTP.RequestTimeout.Duration == 0 {
		c.HTTP.RequestTimeout = Duration{Duration: 15 * time.Second}
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "txcourier"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "data/journal.jsonl"
	}
}

func (c *Config) validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("at least one network is required")
	}
	for name, n := range c.Networks {
		if n.ChainID == 0 {
			return fmt.Errorf("network %q: chain_id is required", name)
		}
		if len(n.RPCs) == 0 {
			return fmt.Errorf("network %q: at least one rpc endpoint is required", name)
		}
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	seen := map[string]bool{}
	for i, a := range c.Accounts {
		if a.Name == "" {
			return fmt.Errorf("accounts[%d]: name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("accounts[%d]: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = true
		if a.PrivateKeyEnv == "" {
			return fmt.Errorf("account %q: private_key_env is required", a.Name)
		}
	}
	for i, tr := range c.Transfers {
		if !seen[tr.Account] {
			return fmt.Errorf("transfers[%d]: unknown account %q", i, tr.Account)
		}
		if _, ok := c.Networks[tr.Network]; !ok {
			return fmt.Errorf("transfers[%d]: unknown network %q", i, tr.Network)
		}
		if tr.To == "" {
			return fmt.Errorf("transfers[%d]: to is required", i)
		}
		if tr.Token != "" {
			if tr.Amount == "" {
				return fmt.Errorf("transfers[%d]: amount is required for token transfers", i)
			}
		} else if tr.ValueWei == "" {
			return fmt.Errorf("transfers[%d]: value_wei is required", i)
		}
	}
	return nil
}
