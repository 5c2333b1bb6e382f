package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/spf13/viper"
)

// Page size bounds accepted by the ledger API.
const (
	MinPageSize = 1
	MaxPageSize = 5000
)

// Settings is the resolved runtime configuration.
type Settings struct {
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`

	Ledger struct {
		BaseURL string        `mapstructure:"base_url"`
		Token   string        `mapstructure:"token"`
		CAFile  string        `mapstructure:"ca_file"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ledger"`

	Classify struct {
		Ledger   string `mapstructure:"ledger"`
		Month    string `mapstructure:"month"`
		Theme    string `mapstructure:"theme"`
		PageSize int    `mapstructure:"page_size"`
		NoCurl   bool   `mapstructure:"no_curl"`
		Plain    bool   `mapstructure:"plain"`
		DryRun   bool   `mapstructure:"dry_run"`
	} `mapstructure:"classify"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("ledger.base_url", "http://localhost:7712")
	v.SetDefault("ledger.timeout", 20*time.Second)

	v.SetDefault("classify.page_size", 200)
	v.SetDefault("classify.theme", "default")
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.Ledger.BaseURL = strings.TrimRight(strings.TrimSpace(s.Ledger.BaseURL), "/")
	s.Ledger.CAFile = ExpandPath(s.Ledger.CAFile)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for values the classifier cannot run with.
func (s *Settings) Validate() error {
	var problems []string

	u, err := url.Parse(s.Ledger.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("ledger.base_url must be an http(s) URL, got %q", s.Ledger.BaseURL))
	}
	if s.Ledger.Timeout <= 0 {
		problems = append(problems, "ledger.timeout must be positive")
	}
	if s.Classify.PageSize < MinPageSize || s.Classify.PageSize > MaxPageSize {
		problems = append(problems, fmt.Sprintf("classify.page_size must be between %d and %d, got %d",
			MinPageSize, MaxPageSize, s.Classify.PageSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
