package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/bumpchanges/internal/config"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
)

var (
	configInitForce   bool
	configShowFormat  string
	configShowSources bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage bumpchanges configuration",
	Long: `Manage bumpchanges configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (BUMPCHANGES_*, then CHANGELOG_TIMEZONE)
  2. Project config (.bumpchanges.yml, or legacy .bumpchanges.json)
  3. Built-in defaults`,
	Example: `  # Show current configuration
  bumpchanges config show

  # List the known keys
  bumpchanges config keys

  # Write a commented project config
  bumpchanges config init`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a commented .bumpchanges.yml with every default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return runConfigInit(cmd, dir)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd)
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the configuration keys with their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigKeys(cmd)
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configKeysCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "Output format: yaml or json")
	configShowCmd.Flags().BoolVar(&configShowSources, "sources", false, "Show which layer set each key")
}

func runConfigInit(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()
	path := config.ProjectConfigPath(dir)

	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return clierrors.FileNotWritable(path, err)
	}
	if exists && !configInitForce {
		fmt.Fprintf(out, "%s Config: exists at %s (use --force to overwrite)\n", color.GreenString("✓"), path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.FileNotWritable(path, err)
	}

	verb := "created"
	if exists {
		verb = "overwritten"
	}
	fmt.Fprintf(out, "%s Config: %s at %s\n", color.GreenString("✓"), verb, path)

	if _, err := os.Stat(config.LegacyProjectConfigPath(dir)); err == nil {
		fmt.Fprintf(out, "%s %s is ignored while %s exists; delete it once migrated\n",
			color.YellowString("!"), config.LegacyProjectConfigFile, config.ProjectConfigFile)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command) error {
	var payload any = cfg.Values()
	if configShowSources {
		withSources := make(map[string]any, len(config.KnownKeys))
		for key, value := range cfg.Values() {
			withSources[key] = map[string]any{
				"value":  value,
				"source": string(cfg.Source(key)),
			}
		}
		payload = withSources
	}

	out := cmd.OutOrStdout()
	switch configShowFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return clierrors.NewArgumentError(
			fmt.Sprintf("invalid --format %q", configShowFormat),
			"Valid formats: yaml, json",
		)
	}
}

func runConfigKeys(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	for _, name := range config.KeyNames() {
		schema, err := config.GetKeySchema(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n", color.New(color.Bold).Sprint(name), schema.Type)
		fmt.Fprintf(out, "    %s\n", schema.Description)
		if len(schema.AllowedValues) > 0 {
			fmt.Fprintf(out, "    allowed: %v\n", schema.AllowedValues)
		}
		if schema.Default != nil {
			fmt.Fprintf(out, "    default: %v\n", schema.Default)
		}
	}
	return nil
}
