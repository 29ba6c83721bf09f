package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimwatch configuration",
	Long: `Manage claimwatch configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMWATCH_*, e.g. CLAIMWATCH_AI_PROVIDER)
3. Config file (~/.claimwatch/config.yaml)
4. Defaults

API keys are read from PERPLEXITY_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
TWITTER_BEARER_TOKEN, ELSEVIER_API_KEY and NCBI_API_KEY and never written to disk.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if f := viper.ConfigFileUsed(); f != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", f)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(data))

		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Credentials:\n")
		fmt.Fprintf(os.Stderr, "  ai (%s):      %s\n", cfg.AI.Provider, keyState(cfg.AI.APIKey))
		fmt.Fprintf(os.Stderr, "  embeddings:   %s\n", keyState(cfg.Similarity.APIKey))
		fmt.Fprintf(os.Stderr, "  twitter:      %s\n", keyState(cfg.Social.TwitterToken))
		fmt.Fprintf(os.Stderr, "  elsevier:     %s\n", keyState(cfg.Sources.ElsevierKey))
		fmt.Fprintf(os.Stderr, "  ncbi:         %s\n", keyState(cfg.Sources.NCBIKey))
		return nil
	},
}

func keyState(key string) string {
	if key == "" {
		return "not set"
	}
	return "set"
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			path = filepath.Join(home, ".claimwatch", "config.yaml")
		}

		if err := writeDefaultConfig(path); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", path)
		fmt.Printf("\nTo view the effective configuration:\n")
		fmt.Printf("  claimwatch config show\n")
		return nil
	},
}

// writeDefaultConfig writes the defaults as commented YAML, refusing to overwrite
func writeDefaultConfig(path string) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# claimwatch configuration\n")
	printf("#\n")
	printf("# Any key can be overridden with CLAIMWATCH_<SECTION>_<KEY>, e.g. CLAIMWATCH_AI_PROVIDER=openai\n\n")
	printf("%s", data)
	printf("\n# API keys belong in the environment:\n")
	printf("#   export PERPLEXITY_API_KEY=pplx-...\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export TWITTER_BEARER_TOKEN=...\n")
	printf("#   export ELSEVIER_API_KEY=...\n")
	printf("#   export NCBI_API_KEY=...\n")
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
