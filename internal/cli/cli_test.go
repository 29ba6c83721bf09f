package cli

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestRegisterDefaults_EnvOverride(t *testing.T) {
	t.Setenv("CLAIMWATCH_BATCH_GROUP_SIZE", "7")
	t.Setenv("CLAIMWATCH_AI_PROVIDER", "ollama")

	v := viper.New()
	v.SetEnvPrefix("CLAIMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults: %v", err)
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Batch.GroupSize != 7 {
		t.Errorf("Expected group size 7 from env, got %d", cfg.Batch.GroupSize)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("Expected provider ollama from env, got %q", cfg.AI.Provider)
	}
	if cfg.Batch.GroupDelay != time.Second {
		t.Errorf("Expected default group delay to survive, got %v", cfg.Batch.GroupDelay)
	}
	if cfg.Sources.Timeout != 30*time.Second {
		t.Errorf("Expected default source timeout, got %v", cfg.Sources.Timeout)
	}
}

func TestApplySecrets(t *testing.T) {
	env := map[string]string{
		"PERPLEXITY_API_KEY":   "pplx-test",
		"OPENAI_API_KEY":       "sk-test",
		"TWITTER_BEARER_TOKEN": "bearer",
		"NCBI_API_KEY":         "ncbi",
	}
	getenv := func(k string) string { return env[k] }

	cfg := model.DefaultConfig()
	applySecrets(cfg, getenv)

	if cfg.AI.APIKey != "pplx-test" {
		t.Errorf("Expected perplexity key, got %q", cfg.AI.APIKey)
	}
	if cfg.Similarity.APIKey != "sk-test" {
		t.Errorf("Expected embedding key from OPENAI_API_KEY, got %q", cfg.Similarity.APIKey)
	}
	if cfg.Social.TwitterToken != "bearer" {
		t.Errorf("Expected twitter token, got %q", cfg.Social.TwitterToken)
	}
	if cfg.Sources.NCBIKey != "ncbi" {
		t.Errorf("Expected NCBI key, got %q", cfg.Sources.NCBIKey)
	}
	if cfg.Sources.ElsevierKey != "" {
		t.Errorf("Expected no Elsevier key, got %q", cfg.Sources.ElsevierKey)
	}
}

func TestApplySecrets_ConfiguredValueWins(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.AI.Provider = "Claude"
	cfg.AI.APIKey = "from-config"

	applySecrets(cfg, func(k string) string {
		if k == "ANTHROPIC_API_KEY" {
			return "from-env"
		}
		return ""
	})

	if cfg.AI.APIKey != "from-config" {
		t.Errorf("Expected configured key to win, got %q", cfg.AI.APIKey)
	}
}

func TestApplySecrets_OllamaBaseURL(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.AI.Provider = "ollama"

	applySecrets(cfg, func(k string) string {
		if k == "OLLAMA_BASE_URL" {
			return "http://gpu-box:11434"
		}
		return ""
	})

	if cfg.AI.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected base URL from env, got %q", cfg.AI.BaseURL)
	}
	if cfg.AI.APIKey != "" {
		t.Errorf("Expected no API key for ollama, got %q", cfg.AI.APIKey)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# claimwatch configuration") {
		t.Errorf("Expected header comment, got %q", string(data[:40]))
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Batch.GroupSize != 10 {
		t.Errorf("Expected group size 10, got %d", cfg.Batch.GroupSize)
	}
	if strings.Contains(string(data), "twitter_token") {
		t.Error("Secrets must not be written to the config file")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestNewApp_DisablesMissingCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.AI.APIKey = ""
	cfg.Social.TwitterToken = ""

	a, err := newApp(cfg, logger)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.provider != nil {
		t.Error("Expected AI scoring to be disabled without a key")
	}
	if got := aiLabel(a); got != "disabled" {
		t.Errorf("Expected AI label disabled, got %q", got)
	}

	names := a.social.Names()
	if len(names) != 2 || names[0] != "youtube" || names[1] != "feed" {
		t.Errorf("Expected [youtube feed], got %v", names)
	}

	out := buf.String()
	if !strings.Contains(out, "AI scoring disabled") {
		t.Errorf("Expected AI warning, got %q", out)
	}
	if !strings.Contains(out, "twitter disabled") {
		t.Errorf("Expected twitter warning, got %q", out)
	}
}

func TestNewApp_UnknownCacheBackend(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "memcached"

	if _, err := newApp(cfg, log.New(&bytes.Buffer{}, "", 0)); err == nil {
		t.Error("Expected error for unknown cache backend")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"claims", "claims"},
		{"my claims", "my-claims"},
		{"a/b:c", "a_b_c"},
		{"  ", "report"},
		{"..", "report"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
