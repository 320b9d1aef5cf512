package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/isorouter/internal/errors"
	"github.com/vango-dev/isorouter/pkg/pathmatch"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "isorouter.json"

	// DefaultAddress is the default listen address of the server.
	DefaultAddress = ":8080"

	// DefaultResolveTimeout bounds a server-side resolve.
	DefaultResolveTimeout = 5 * time.Second

	// DefaultMetricsNamespace prefixes exported metrics.
	DefaultMetricsNamespace = "isorouter"
)

// ConfigFileNames are the names Load looks for, in order.
var ConfigFileNames = []string{ConfigFileName, "isorouter.yaml", "isorouter.yml"}

// Format is a configuration encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Config is the complete route table configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Context is handed to every handler as the router context.
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`

	// Routes are registered in order; the first match wins.
	Routes []RouteSpec `json:"routes" yaml:"routes"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// ResolveTimeout bounds a server-side resolve (e.g., "5s").
	ResolveTimeout string `json:"resolveTimeout,omitempty" yaml:"resolveTimeout,omitempty"`

	// DisableMetrics turns off the /metrics endpoint.
	DisableMetrics bool `json:"disableMetrics,omitempty" yaml:"disableMetrics,omitempty"`

	// MetricsNamespace prefixes exported metrics.
	MetricsNamespace string `json:"metricsNamespace,omitempty" yaml:"metricsNamespace,omitempty"`
}

// RouteSpec describes one registration and the outcome it reports.
type RouteSpec struct {
	// Pattern is the pathmatch pattern.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Data is reported on success, merged with the path params.
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`

	// Redirect, when set, is reported instead of data.
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`

	// Error, when set, is reported instead of redirect or data.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Delay postpones the outcome (e.g., "20ms"), making the handler async.
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// DelayDuration returns the parsed delay, zero when unset or invalid.
func (r RouteSpec) DelayDuration() time.Duration {
	if r.Delay == "" {
		return 0
	}
	d, err := time.ParseDuration(r.Delay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// New creates a Config with default values and no routes.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          DefaultAddress,
			ResolveTimeout:   DefaultResolveTimeout.String(),
			MetricsNamespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from dir, trying each of ConfigFileNames.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("R002").
		WithDetail("No " + strings.Join(ConfigFileNames, ", ") + " found in " + dir).
		WithSuggestion("Create isorouter.json or pass --config")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R002").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("R003").Wrap(err)
	}

	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := New()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("R003").
			WithDetail("Failed to parse " + string(format) + " config: " + err.Error()).
			WithSuggestion("Check that the file is valid " + strings.ToUpper(string(format)))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// implies.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if FormatFromPath(path) == FormatYAML {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("R003").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R003").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// ResolveTimeout returns the parsed resolve timeout.
func (c *Config) ResolveTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ResolveTimeout)
	if err != nil || d <= 0 {
		return DefaultResolveTimeout
	}
	return d
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ResolveTimeout == "" {
		c.Server.ResolveTimeout = DefaultResolveTimeout.String()
	}
	if c.Server.MetricsNamespace == "" {
		c.Server.MetricsNamespace = DefaultMetricsNamespace
	}
}

// Validate checks that every route compiles and every duration parses.
func (c *Config) Validate() error {
	if d, err := time.ParseDuration(c.Server.ResolveTimeout); err != nil || d <= 0 {
		return errors.New("R007").
			WithDetail("resolveTimeout " + strconv.Quote(c.Server.ResolveTimeout) + " is not a positive duration").
			WithSuggestion(`Use a Go duration such as "5s"`)
	}

	for i, route := range c.Routes {
		if route.Pattern == "" {
			return errors.New("R004").
				WithDetail(routeRef(i, route) + " has no pattern")
		}
		if _, err := pathmatch.Compile(route.Pattern); err != nil {
			return errors.New("R001").
				WithDetail(routeRef(i, route) + " does not compile").
				WithSuggestion("Name every parameter (/users/:id) and keep catch-alls last (/files/*path)").
				Wrap(err)
		}
		if route.Delay != "" {
			if d, err := time.ParseDuration(route.Delay); err != nil || d < 0 {
				return errors.New("R004").
					WithDetail(routeRef(i, route) + " has invalid delay " + strconv.Quote(route.Delay)).
					WithSuggestion(`Use a Go duration such as "250ms"`)
			}
		}
	}
	return nil
}

func routeRef(i int, route RouteSpec) string {
	return "route #" + strconv.Itoa(i+1) + " " + strconv.Quote(route.Pattern)
}
