package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL   string `yaml:"url" mapstructure:"url"`
	Model string `yaml:"model" mapstructure:"model"`
}
type LLMService struct {
	URL       string `yaml:"url" mapstructure:"url"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
}
type Services struct {
	ML  Service    `yaml:"ml" mapstructure:"ml"`
	LLM LLMService `yaml:"llm" mapstructure:"llm"`
}
type Privacy struct {
	Window int `yaml:"window" mapstructure:"window"`
}
type Paths struct {
	Data            string `yaml:"data" mapstructure:"data"`
	Wordlist        string `yaml:"wordlist" mapstructure:"wordlist"`
	Outputs         string `yaml:"outputs" mapstructure:"outputs"`
	Results         string `yaml:"results" mapstructure:"results"`
	CallMetrics     string `yaml:"call_metrics" mapstructure:"call_metrics"`
	Utterances      string `yaml:"utterances" mapstructure:"utterances"`
	Seed            string `yaml:"seed" mapstructure:"seed"`
	Database        string `yaml:"database" mapstructure:"database"`
	MetricsTextfile string `yaml:"metrics_textfile" mapstructure:"metrics_textfile"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name" mapstructure:"name"`
		Version string `yaml:"version" mapstructure:"version"`
		LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
		Workers int    `yaml:"workers" mapstructure:"workers"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Services Services `yaml:"services" mapstructure:"services"`
	Privacy  Privacy  `yaml:"privacy" mapstructure:"privacy"`
	Paths    Paths    `yaml:"paths" mapstructure:"paths"`
}

// EnvPrefix scopes environment overrides, e.g. AUDITOR_PIPELINE_LOG_LEVEL.
const EnvPrefix = "AUDITOR"

func defaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "call-auditor")
	v.SetDefault("pipeline.version", "0.1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("services.ml.url", "")
	v.SetDefault("services.ml.model", "profanity_baseline")
	v.SetDefault("services.llm.url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("services.llm.model", "gemini-2.5-flash")
	v.SetDefault("services.llm.api_key_env", "GOOGLE_API_KEY")
	v.SetDefault("privacy.window", 6)
	v.SetDefault("paths.data", "All_Conversations")
	v.SetDefault("paths.wordlist", filepath.Join("data", "profanity_list.txt"))
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.results", "results.csv")
	v.SetDefault("paths.call_metrics", "call_metrics.csv")
	v.SetDefault("paths.utterances", "utterances_all.csv")
	v.SetDefault("paths.seed", "dataset_seed.csv")
	v.SetDefault("paths.database", "")
	v.SetDefault("paths.metrics_textfile", "")
}

// guess lists config locations tried when no explicit path is given.
func guess() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
}

// Load reads path, or the first guessed location that exists. A missing
// config file is not an error when path is empty: defaults and environment
// overrides still apply.
func Load(path string) (*Root, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	candidates := guess()
	if path != "" {
		candidates = []string{path}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			if path != "" {
				return nil, err
			}
			continue
		}
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		break
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKey resolves the LLM key from the configured environment variable.
func (r *Root) APIKey() string {
	if r.Services.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(r.Services.LLM.APIKeyEnv)
}

// Dump renders the effective configuration as YAML.
func (r *Root) Dump() ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil config")
	}
	return yaml.Marshal(r)
}
