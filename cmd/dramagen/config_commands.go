package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dramagen/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export OPENROUTER_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY) before running dramagen generate.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			path := ctx.configPath
			if _, statErr := os.Stat(path); statErr != nil {
				path += " (not found; defaults used)"
			}
			rows := [][]string{
				{"Config path", path},
				{"Provider", cfg.LLM.Provider},
				{"Model", cfg.LLM.Model},
				{"Base URL", valueOrDash(cfg.LLM.BaseURL)},
				{"API key", yesNo(cfg.LLM.APIKey != "")},
				{"Corrective reprompt", yesNo(cfg.Generation.CorrectiveReprompt)},
				{"Tools offered", yesNo(cfg.Generation.UseCapabilities)},
				{"Episodes", fmt.Sprintf("%d (expand %d)", cfg.Pipeline.Episodes, cfg.Pipeline.Expand)},
				{"Failure policy", cfg.Pipeline.FailurePolicy},
				{"Concurrency", fmt.Sprint(cfg.Pipeline.Concurrency)},
				{"Output", fmt.Sprintf("%s (%s)", cfg.Pipeline.Output, cfg.Pipeline.Format)},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))

			if cfg.LLM.APIKey == "" {
				fmt.Fprintln(out, renderStatusLine("API key", statusWarn, "export "+cfg.APIKeyEnv()+" before generating", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Configuration", statusOK, "valid", colorize))
			return nil
		},
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
