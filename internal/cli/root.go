package cli

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time
var Version = "0.3.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimwatch",
	Short: "claimwatch - health claim extraction and evidence scoring",
	Long: `claimwatch tracks health influencers and scores their claims.

It extracts claim-like sentences from posts, feeds and free text, removes
near-duplicates, classifies each claim, checks it against published research
(PubMed, Europe PMC, Crossref, ScienceDirect) and assigns a trust score and
verification status.

Trust scores summarize available evidence. They are not medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("claimwatch v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.claimwatch")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAIMWATCH_AI_PROVIDER overrides ai.provider
	viper.SetEnvPrefix("CLAIMWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so env overrides reach Unmarshal
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok && len(sub) > 0 {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// secretEnv maps config keys that never live in the config file to their conventional env vars
var secretEnv = map[string]string{
	"sources.ncbi_key":     "NCBI_API_KEY",
	"sources.elsevier_key": "ELSEVIER_API_KEY",
	"social.twitter_token": "TWITTER_BEARER_TOKEN",
}

// aiKeyEnv is the API key variable for each AI provider
var aiKeyEnv = map[string]string{
	"perplexity": "PERPLEXITY_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"claude":     "ANTHROPIC_API_KEY",
}

// loadConfig resolves the effective configuration: defaults, config file, CLAIMWATCH_* env, secrets
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applySecrets(cfg, os.Getenv)
	return cfg, nil
}

func applySecrets(cfg *model.Config, getenv func(string) string) {
	for key, env := range secretEnv {
		val := getenv(env)
		if val == "" {
			continue
		}
		switch key {
		case "sources.ncbi_key":
			cfg.Sources.NCBIKey = firstNonEmpty(cfg.Sources.NCBIKey, val)
		case "sources.elsevier_key":
			cfg.Sources.ElsevierKey = firstNonEmpty(cfg.Sources.ElsevierKey, val)
		case "social.twitter_token":
			cfg.Social.TwitterToken = firstNonEmpty(cfg.Social.TwitterToken, val)
		}
	}

	if env, ok := aiKeyEnv[strings.ToLower(cfg.AI.Provider)]; ok {
		cfg.AI.APIKey = firstNonEmpty(cfg.AI.APIKey, getenv(env))
	}
	if strings.ToLower(cfg.AI.Provider) == "ollama" {
		cfg.AI.BaseURL = firstNonEmpty(cfg.AI.BaseURL, getenv("OLLAMA_BASE_URL"))
	}
	if strings.EqualFold(cfg.Similarity.EmbeddingProvider, "openai") || cfg.Similarity.EmbeddingProvider == "" {
		cfg.Similarity.APIKey = firstNonEmpty(cfg.Similarity.APIKey, getenv("OPENAI_API_KEY"))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newLogger returns the process logger; verbose mode adds file positions
func newLogger() *log.Logger {
	flags := log.LstdFlags
	if verbose {
		flags |= log.Lshortfile
	}
	return log.New(os.Stderr, "claimwatch: ", flags)
}
