package config

import (
	"testing"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:7712", s.Ledger.BaseURL)
	assert.Equal(t, 20*time.Second, s.Ledger.Timeout)
	assert.Equal(t, 200, s.Classify.PageSize)
	assert.Equal(t, "info", s.Logging.Level)
	assert.False(t, s.Classify.NoCurl)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("ledger.base_url", "https://ledger.example.com/ ")
	v.Set("ledger.timeout", "5s")
	v.Set("classify.page_size", 2)
	v.Set("classify.no_curl", true)
	v.Set("ledger.ca_file", "$TIDY_TEST_CA_DIR/ca.pem")
	t.Setenv("TIDY_TEST_CA_DIR", "/etc/tidy")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/etc/tidy/ca.pem", s.Ledger.CAFile)

	assert.Equal(t, "https://ledger.example.com", s.Ledger.BaseURL)
	assert.Equal(t, 5*time.Second, s.Ledger.Timeout)
	assert.Equal(t, 2, s.Classify.PageSize)
	assert.True(t, s.Classify.NoCurl)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		set  map[string]any
		name string
		want string
	}{
		{name: "page size zero", set: map[string]any{"classify.page_size": 0}, want: "classify.page_size"},
		{name: "page size too large", set: map[string]any{"classify.page_size": 5001}, want: "classify.page_size"},
		{name: "bad scheme", set: map[string]any{"ledger.base_url": "ftp://ledger"}, want: "ledger.base_url"},
		{name: "no host", set: map[string]any{"ledger.base_url": "http://"}, want: "ledger.base_url"},
		{name: "zero timeout", set: map[string]any{"ledger.timeout": "0s"}, want: "ledger.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
