package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/termwatch/internal/config"
	"github.com/Iron-Ham/termwatch/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify termwatch configuration",
	Long: `View or modify termwatch configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  termwatch config set monitor.check_interval 10000
  termwatch config set classifier.api_provider claude
  termwatch config set notify.bell false

The new configuration is validated before it is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/termwatch/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// settableKeys lists the keys accepted by config set and their value types.
var settableKeys = map[string]string{
	"monitor.enabled":                 "bool",
	"monitor.check_interval":          "int",
	"monitor.min_content_length":      "int",
	"monitor.notification_cooldown":   "int",
	"monitor.excerpt_lines":           "int",
	"monitor.buffer_lines":            "int",
	"monitor.include":                 "list",
	"monitor.exclude":                 "list",
	"classifier.api_endpoint":         "string",
	"classifier.api_key":              "string",
	"classifier.api_provider":         "string",
	"classifier.model_name":           "string",
	"classifier.timeout_seconds":      "int",
	"classifier.max_calls_per_minute": "int",
	"tmux.socket":                     "string",
	"tmux.poll_interval_ms":           "int",
	"tmux.capture_lines":              "int",
	"notify.bell":                     "bool",
	"notify.console":                  "bool",
	"notify.telegram.token":           "string",
	"notify.telegram.chat_id":         "int64",
	"logging.level":                   "string",
	"logging.file":                    "string",
}

// SettableKeys returns the keys accepted by config set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(out, "# warning: %s\n", w)
	}

	data, err := marshalConfig(masked(cfg))
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// masked returns a copy of cfg with credentials hidden.
func masked(cfg *config.Config) *config.Config {
	c := *cfg
	c.Classifier.APIKey = maskSecret(c.Classifier.APIKey)
	c.Notify.Telegram.Token = maskSecret(c.Notify.Telegram.Token)
	return &c
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func parseValue(key, value string) (any, error) {
	keyType, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(SettableKeys(), ", "))
	}

	switch keyType {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "int64":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "list":
		if strings.TrimSpace(value) == "" {
			return []string{}, nil
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	viper.Set(key, typed)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := marshalConfig(cfg)
	if err != nil {
		return err
	}
	configFile := config.ConfigFile()
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", configFile)
	}

	out := cmd.OutOrStdout()
	if strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "token") {
		value = maskSecret(value)
	}
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

const configHeader = `# termwatch configuration
#
# monitor.check_interval and monitor.notification_cooldown are in
# milliseconds. classifier.api_provider is one of: openai, claude, custom,
# gemini. Every key can be overridden with TERMWATCH_<SECTION>_<KEY>, e.g.
# TERMWATCH_CLASSIFIER_API_KEY.

`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'termwatch config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := marshalConfig(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, append([]byte(configHeader), data...), 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", configFile)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(out, used)
		return nil
	}
	fmt.Fprintln(out, config.ConfigFile())
	return nil
}
