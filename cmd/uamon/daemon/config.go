package daemon

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Config is the daemon configuration, read from a YAML file by
// LoadConfig. Zero values fall back to the built-in defaults.
type Config struct {
	Name        string `mapstructure:"name"`
	Fixture     string `mapstructure:"fixture"`
	ProtocolLog string `mapstructure:"protocol_log"`

	// PublishingInterval is the requested subscription notification
	// cycle; SamplingInterval the per-item sampling cycle.
	PublishingInterval time.Duration `mapstructure:"publishing_interval"`
	SamplingInterval   time.Duration `mapstructure:"sampling_interval"`

	Nodes   []NodeConfig  `mapstructure:"nodes"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// NodeConfig names one node to monitor. The name becomes the MQTT
// topic suffix and the Prometheus node label, so it must be unique.
type NodeConfig struct {
	Name string `mapstructure:"name"`
	ID   string `mapstructure:"id"`
}

// MQTTConfig configures the republishing side. An empty ClientID is
// replaced with a generated one on connect.
type MQTTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	TopicPrefix    string        `mapstructure:"topic_prefix"`
	QoS            byte          `mapstructure:"qos"`
	Retain         bool          `mapstructure:"retain"`
	ClientID       string        `mapstructure:"client_id"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	KeepAlive      uint16        `mapstructure:"keep_alive"`
	ConnectRetry   time.Duration `mapstructure:"connect_retry"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level            string `mapstructure:"level"`
	Format           string `mapstructure:"format"`
	DisableTimestamp bool   `mapstructure:"disable_timestamp"`
}

// LoadConfig reads the YAML configuration from path. An empty path
// searches for uamon.yaml in the working directory and ./configs and
// falls back to the defaults when no file exists anywhere.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("uamon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound || path != "" {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "uamon")
	v.SetDefault("publishing_interval", "500ms")
	v.SetDefault("sampling_interval", "250ms")
	v.SetDefault("mqtt.enabled", true)
	v.SetDefault("mqtt.url", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "uamon")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.keep_alive", 30)
	v.SetDefault("mqtt.connect_retry", "5s")
	v.SetDefault("mqtt.connect_timeout", "30s")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen", ":9464")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
}

// Validate checks the parts of the configuration that would otherwise
// fail deep inside the daemon.
func (c Config) Validate() error {
	if len(c.Nodes) == 0 {
		return errors.New("no nodes to monitor")
	}
	seen := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.Name == "" {
			return errors.Errorf("node %d has no name", i)
		}
		if seen[n.Name] {
			return errors.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
		if _, err := ua.ParseNodeID(n.ID); err != nil {
			return errors.Wrapf(err, "node %q", n.Name)
		}
	}
	if c.MQTT.QoS > 2 {
		return errors.Errorf("mqtt qos must be 0-2, got %d", c.MQTT.QoS)
	}
	if c.PublishingInterval <= 0 {
		return errors.New("publishing_interval must be positive")
	}
	if c.SamplingInterval <= 0 {
		return errors.New("sampling_interval must be positive")
	}
	return nil
}
