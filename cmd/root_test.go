package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-chat/internal/config"
)

// parse resolves the config for args without starting a chat
func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var cfg *config.Config
	root := newRootCmd("test", "none", func(_ *cobra.Command, resolved *config.Config) error {
		cfg = resolved
		return nil
	})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	require.NotNil(t, cfg)
	return cfg, nil
}

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := config.GetEnv
	config.GetEnv = func(key string) string { return env[key] }
	t.Cleanup(func() { config.GetEnv = orig })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveConfigRequiresHost(t *testing.T) {
	withEnv(t, map[string]string{"HOME": t.TempDir()})

	_, err := parse(t)
	assert.ErrorIs(t, err, config.ErrMissingHost)

	_, err = parse(t, "--api-host", "policy.local")
	assert.ErrorIs(t, err, config.ErrInvalidHost)
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := writeConfig(t, "api_host: http://from-file\nagent_timeout: 30s\nplain: true\n")

	withEnv(t, map[string]string{"HOME": t.TempDir()})
	cfg, err := parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.APIHost)
	assert.Equal(t, 30*time.Second, cfg.AgentTimeout)
	assert.True(t, cfg.Plain)

	withEnv(t, map[string]string{
		"HOME":                  t.TempDir(),
		config.EnvLegacyAPIHost: "http://from-legacy-env",
	})
	cfg, err = parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-legacy-env", cfg.APIHost)

	withEnv(t, map[string]string{
		"HOME":                  t.TempDir(),
		config.EnvAPIHost:       "http://from-env/",
		config.EnvLegacyAPIHost: "http://from-legacy-env",
	})
	cfg, err = parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.APIHost, "trailing slash is trimmed")

	cfg, err = parse(t, "--config", path, "--api-host", "https://from-flag", "--timeout", "5s", "--plain=false")
	require.NoError(t, err)
	assert.Equal(t, "https://from-flag", cfg.APIHost)
	assert.Equal(t, 5*time.Second, cfg.AgentTimeout)
	assert.False(t, cfg.Plain)
}

func TestResolveConfigFlags(t *testing.T) {
	withEnv(t, map[string]string{"HOME": t.TempDir()})

	cfg, err := parse(t,
		"--api-host", "http://localhost:5000",
		"--feedback-timeout", "2s",
		"--verbose",
		"--log-file", "-",
		"--no-references",
	)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.FeedbackTimeout)
	assert.Equal(t, 60*time.Second, cfg.AgentTimeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "-", cfg.LogFile)
	assert.False(t, cfg.ShowReferences)
}

func TestResolveConfigMissingExplicitFile(t *testing.T) {
	withEnv(t, map[string]string{"HOME": t.TempDir()})

	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--api-host", "http://x")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd("1.2.3", "abc1234")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "policy-chat 1.2.3 (commit abc1234")
}
