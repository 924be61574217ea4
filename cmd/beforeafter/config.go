package main

import (
	"fmt"
	"os"

	"beforeafter/pkg/config"
	"beforeafter/pkg/ui"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var globalConfig bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage beforeafter configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (BEFOREAFTER_*)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default settings",
	Long: `Create a configuration file populated with every option and its default.

The file is created in the current directory as 'beforeafter.yaml' unless a
different path is given with --config, or in the XDG config directory with
--global.`,
	Args: cobra.NoArgs,
	Run:  runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging defaults, the
configuration file, .env, environment variables and flags.`,
	Args: cobra.NoArgs,
	Run:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Output directory accessibility`,
	Args: cobra.NoArgs,
	Run:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().BoolVar(&globalConfig, "global", false, "write to the XDG config directory")
}

func configInitPath() (string, error) {
	switch {
	case configFile != "":
		return configFile, nil
	case globalConfig:
		return config.DefaultConfigPath()
	default:
		return config.AppName + ".yaml", nil
	}
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath, err := configInitPath()
	if err != nil {
		ui.PrintError("Failed to resolve configuration path", err.Error())
		os.Exit(1)
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the gallery page URL and output directory")
	fmt.Println("2. Run 'beforeafter config validate' to check the configuration")
	fmt.Println("3. Start with 'beforeafter scrape'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Printf("\n# configuration file: %s\n", source)
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		ui.PrintInfo("Validating configuration", path)
	} else {
		ui.PrintInfo("Validating configuration", "defaults and environment")
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Cannot open log file: %v", err))
		} else {
			f.Close()
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")

	t := ui.NewTable(ui.Output())
	t.AppendRows([]table.Row{
		{"Gallery page", cfg.Site.PageURL},
		{"Renderer", cfg.Render.Mode},
		{"Output directory", cfg.Output.BaseDirectory},
		{"Max attempts", cfg.Download.MaxAttempts},
		{"Crop height", cfg.Processing.CropHeight},
		{"Metadata sidecars", cfg.Processing.WriteMetadata},
		{"Log level", cfg.Logging.Level},
	})
	t.Render()
}
