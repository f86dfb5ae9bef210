// Package config loads tripgraph settings from a YAML file and
// TRIPGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: TRIPGRAPH_MODEL__API_KEY sets model.api_key.
const EnvPrefix = "TRIPGRAPH_"

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Model     ModelConfig     `yaml:"model"`
	Agent     AgentConfig     `yaml:"agent"`
	HTTP      HTTPConfig      `yaml:"http"`
	Naver     NaverConfig     `yaml:"naver"`
	TMap      TMapConfig      `yaml:"tmap"`
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	Engine    EngineConfig    `yaml:"engine"`
	Audit     AuditConfig     `yaml:"audit"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// DefaultRecursionLimit applies when a request omits recursion_limit.
	DefaultRecursionLimit int `yaml:"default_recursion_limit"`
}

// LogConfig selects the process log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// ModelConfig points at an OpenAI-compatible chat completion endpoint.
type ModelConfig struct {
	ModelID     string        `yaml:"model_id"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AgentConfig bounds one tool-using agent task.
type AgentConfig struct {
	MaxStep int           `yaml:"max_step"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the outbound client shared by the lookup tools.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// NaverConfig holds two credential pairs: the developer search API and
// the NCP maps gateway.
type NaverConfig struct {
	SearchBaseURL      string `yaml:"search_base_url"`
	SearchClientID     string `yaml:"search_client_id"`
	SearchClientSecret string `yaml:"search_client_secret"`
	MapBaseURL         string `yaml:"map_base_url"`
	MapClientID        string `yaml:"map_client_id"`
	MapClientSecret    string `yaml:"map_client_secret"`
}

// TMapConfig holds the SK Open API endpoint and app key.
type TMapConfig struct {
	BaseURL string `yaml:"base_url"`
	AppKey  string `yaml:"app_key"`
}

// WikipediaConfig configures the dual-language Wikipedia lookup.
type WikipediaConfig struct {
	// BaseURL is a pattern with one %s for the language code.
	BaseURL   string   `yaml:"base_url"`
	UserAgent string   `yaml:"user_agent"`
	Languages []string `yaml:"languages"`
}

// EngineConfig sets graph engine defaults applied to every run.
type EngineConfig struct {
	MaxSteps int  `yaml:"max_steps"`
	Metrics  bool `yaml:"metrics"`
	Tracing  bool `yaml:"tracing"`
}

// AuditConfig enables the SQLite audit trail of run snapshots.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WorkflowConfig holds settings shared by the workflows.
type WorkflowConfig struct {
	// Language is the language final answers are written in.
	Language string `yaml:"language"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:                  ":8080",
			DefaultRecursionLimit: 20,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Model: ModelConfig{
			ModelID: "gpt-4o",
			BaseURL: "https://api.openai.com/v1",
			Timeout: 60 * time.Second,
		},
		Agent: AgentConfig{MaxStep: 12, Timeout: 2 * time.Minute},
		HTTP:  HTTPConfig{Timeout: 10 * time.Second},
		Naver: NaverConfig{
			SearchBaseURL: "https://openapi.naver.com",
			MapBaseURL:    "https://maps.apigw.ntruss.com",
		},
		TMap: TMapConfig{BaseURL: "https://apis.openapi.sk.com"},
		Wikipedia: WikipediaConfig{
			BaseURL:   "https://%s.wikipedia.org",
			UserAgent: "MenuAdvisorBot/1.0",
			Languages: []string{"ko", "en"},
		},
		Engine:   EngineConfig{MaxSteps: 25},
		Audit:    AuditConfig{Path: "tripgraph-audit.db"},
		Workflow: WorkflowConfig{Language: "Korean"},
	}
}

// Load reads path (optional; empty or missing skips the file) and then
// applies environment overrides on top of Default().
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps TRIPGRAPH_MODEL__API_KEY to model.api_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks values that would otherwise fail late at request time.
func (c Config) Validate() error {
	var errs []error

	if c.Server.DefaultRecursionLimit <= 0 {
		errs = append(errs, errors.New("server.default_recursion_limit must be > 0"))
	}
	if c.Engine.MaxSteps <= 0 {
		errs = append(errs, errors.New("engine.max_steps must be > 0"))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("model.timeout must be > 0"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be > 0"))
	}
	if c.Agent.MaxStep <= 0 {
		errs = append(errs, errors.New("agent.max_step must be > 0"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	// The pattern is formatted with the language code alone.
	if u := c.Wikipedia.BaseURL; strings.Count(u, "%") != 1 || !strings.Contains(u, "%s") {
		errs = append(errs, fmt.Errorf("wikipedia.base_url must contain exactly one %%s, got %q", u))
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, errors.New("audit.path is required when audit is enabled"))
	}

	return errors.Join(errs...)
}

// RequireCredentials reports missing secrets needed to talk to real
// services. Offline commands skip it.
func (c Config) RequireCredentials() error {
	var missing []string
	check := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	check("model.api_key", c.Model.APIKey)
	check("naver.search_client_id", c.Naver.SearchClientID)
	check("naver.search_client_secret", c.Naver.SearchClientSecret)
	check("naver.map_client_id", c.Naver.MapClientID)
	check("naver.map_client_secret", c.Naver.MapClientSecret)
	check("tmap.app_key", c.TMap.AppKey)

	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
