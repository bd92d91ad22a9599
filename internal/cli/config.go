package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rbarros/sentex/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sentex configuration",
	Long: `Manage sentex configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SENTEX_*, OPENAI_API_KEY, GEMINI_API_KEY, GROQ_API_KEY)
3. Config file (~/.sentex/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		shown := *cfg
		shown.Providers.OpenAI.APIKey = redact(shown.Providers.OpenAI.APIKey)
		shown.Providers.Gemini.APIKey = redact(shown.Providers.Gemini.APIKey)
		shown.Providers.Groq.APIKey = redact(shown.Providers.Groq.APIKey)

		yamlData, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(yamlData))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.sentex/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := filepath.Join(home, ".sentex")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'sentex config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		header := `# Sentex configuration file
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (SENTEX_*)
#   3. This config file
#   4. Built-in defaults
#
# API keys are read from the environment:
#   export OPENAI_API_KEY=sk-...
#   export GEMINI_API_KEY=...
#   export GROQ_API_KEY=gsk_...

`
		if err := os.WriteFile(configPath, append([]byte(header), yamlData...), 0o644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Printf("Created default configuration: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.ttl") {
		cfg.Cache.TTL = viper.GetDuration("cache.ttl")
	}
	if viper.IsSet("output.dir") {
		cfg.Output.Dir = viper.GetString("output.dir")
	}

	loadProvider("openai", &cfg.Providers.OpenAI, "OPENAI_API_KEY")
	loadProvider("gemini", &cfg.Providers.Gemini, "GEMINI_API_KEY")
	loadProvider("groq", &cfg.Providers.Groq, "GROQ_API_KEY")

	return cfg
}

func loadProvider(name string, pc *model.ProviderConfig, keyEnv string) {
	prefix := "providers." + name + "."
	if viper.IsSet(prefix + "base_url") {
		pc.BaseURL = viper.GetString(prefix + "base_url")
	}
	if viper.IsSet(prefix + "timeout") {
		pc.Timeout = viper.GetInt(prefix + "timeout")
	}
	if viper.IsSet(prefix + "requests_per_second") {
		pc.RequestsPerSecond = viper.GetFloat64(prefix + "requests_per_second")
	}
	if viper.IsSet(prefix + "burst") {
		pc.Burst = viper.GetInt(prefix + "burst")
	}
	if viper.IsSet(prefix + "api_key") {
		pc.APIKey = viper.GetString(prefix + "api_key")
	}
	if key := os.Getenv(keyEnv); key != "" {
		pc.APIKey = key
	}
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "********"
}
