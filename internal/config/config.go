package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/user/atmos-energy/internal/usage"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ATMOS"

type Config struct {
	Username string   `yaml:"username" mapstructure:"username"`
	Password string   `yaml:"password,omitempty" mapstructure:"password"`
	Months   int      `yaml:"months" mapstructure:"months"`
	Output   string   `yaml:"output,omitempty" mapstructure:"output"`
	Settings Settings `yaml:"settings" mapstructure:"settings"`
}

type Settings struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIPort  int           `yaml:"api_port" mapstructure:"api_port"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Load reads configFile, or config.yaml from the user config directory or
// the working directory when configFile is empty. A missing default file is
// not an error. ATMOS_* environment variables override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	def := DefaultConfig()
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("months", def.Months)
	v.SetDefault("output", "")
	v.SetDefault("settings.timeout", def.Settings.Timeout)
	v.SetDefault("settings.base_url", def.Settings.BaseURL)
	v.SetDefault("settings.api_port", def.Settings.APIPort)
	v.SetDefault("settings.cache_ttl", def.Settings.CacheTTL)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Username = ExpandEnvVars(cfg.Username)
	cfg.Password = ExpandEnvVars(cfg.Password)

	return cfg, nil
}

// Save writes cfg as YAML. The password is never written.
func Save(cfg *Config, configFile string) error {
	path := configFile
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	out := *cfg
	out.Password = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "atmos-energy"), nil
}

func DefaultConfig() *Config {
	return &Config{
		Months: 1,
		Settings: Settings{
			Timeout:  30 * time.Second,
			BaseURL:  "https://www.atmosenergy.com",
			APIPort:  3456,
			CacheTTL: 15 * time.Minute,
		},
	}
}

func (c *Config) Credentials() usage.Credentials {
	return usage.Credentials{Username: c.Username, Password: c.Password}
}

func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password must be provided via --username/--password or --config")
	}
	if c.Months < 0 {
		return fmt.Errorf("months must not be negative, got %d", c.Months)
	}
	return nil
}

func ExpandEnvVars(s string) string {
	return os.ExpandEnv(s)
}
