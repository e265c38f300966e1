package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ATLAS"

type Config struct {
	Server        ServerConfig `mapstructure:"server"`
	API           APIConfig    `mapstructure:"api"`
	Entry         EntryConfig  `mapstructure:"entry"`
	AMQP          AMQPConfig   `mapstructure:"amqp"`
	ProvidersFile string       `mapstructure:"providers_file"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig points at the restaurant dashboard API
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
}

type EntryConfig struct {
	DebounceDelay    time.Duration `mapstructure:"debounce_delay"`
	LaborPromptDelay time.Duration `mapstructure:"labor_prompt_delay"`
}

// AMQPConfig enables the broker notifier when URL is set
type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.retry_max", 3)
	v.SetDefault("entry.debounce_delay", 250*time.Millisecond)
	v.SetDefault("entry.labor_prompt_delay", 1500*time.Millisecond)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "sales_atlas")
	v.SetDefault("amqp.routing_key", "weekly_data.saved")
	v.SetDefault("providers_file", "")
}

// LoadConfig reads path (any format viper supports) over the defaults.
// An empty path loads defaults only. ATLAS_* variables override both,
// e.g. ATLAS_API_BASE_URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
