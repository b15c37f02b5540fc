/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree of the typeforge CLI. Declares every command and flag and binds
the flags to viper keys so each setting can also come from a config file or a
TYPEFORGE_ environment variable.
*/

package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the version reported by --version
const Version = "1.0.0"

// NewRootCommand builds the typeforge command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "typeforge",
		Short: "typeforge - typed declarations from JSON samples",
		Long: `typeforge reads one or more JSON or YAML samples, infers a single type model that
accepts all of them and renders it as Go structs, Rust structs, TypeScript interfaces,
Python dataclasses or a JSON Schema document.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Use JSON log format")
	rootCmd.PersistentFlags().String("log-dir", "", "Also write logs to timestamped files in this directory")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("log-compress", false, "Gzip log files of earlier runs")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print generated code and errors")

	// Bind flags to viper
	bind("config", rootCmd.PersistentFlags().Lookup("config"))
	bind("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	bind("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	bind("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	bind("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	bind("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	bind("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))
	bind("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	bind("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Add generate command
	generateCmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate declarations from samples",
		Long: `Infer a type model from the given sample files (stdin when none or "-") and render
it for every requested target. Output goes to stdout unless --out-dir is set.`,
		Aliases: []string{"gen"},
		RunE:    RunGenerate,
	}
	addGenerationFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)

	// Add watch command
	watchCmd := &cobra.Command{
		Use:   "watch files...",
		Short: "Regenerate declarations whenever a sample changes",
		Long: `Generate once, then watch the sample files and regenerate after every change.
Bursts of file events are debounced and unchanged files are not parsed again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunWatch,
	}
	addGenerationFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before regenerating")
	watchCmd.Flags().Int("cache-size", 64, "Number of parsed sample files kept in memory")
	bind("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	bind("watch.cache_size", watchCmd.Flags().Lookup("cache-size"))
	rootCmd.AddCommand(watchCmd)

	// Add inspect command
	inspectCmd := &cobra.Command{
		Use:   "inspect [files...]",
		Short: "Show the inferred type model",
		Long: `Infer the type model from the samples and print the named-type table as a tree,
or as JSON with --json. Nothing is rendered.`,
		RunE: RunInspect,
	}
	inspectCmd.Flags().Bool("json", false, "Print the table as JSON")
	inspectCmd.Flags().String("root-name", "", "Name of the root type (default: derived from the first file)")
	inspectCmd.Flags().Int("workers", 1, "Samples classified in parallel")
	bind("inspect.json", inspectCmd.Flags().Lookup("json"))
	bindOnRun(inspectCmd, map[string]string{"root_name": "root-name", "workers": "workers"})
	rootCmd.AddCommand(inspectCmd)

	// Add targets command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "targets",
		Short: "List the supported targets",
		Args:  cobra.NoArgs,
		RunE:  ListTargets,
	})

	// Add config command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file, TYPEFORGE_
environment variables and flags. When a log directory is configured its statistics are
printed too.`,
		Args: cobra.NoArgs,
		RunE: ShowConfig,
	})

	return rootCmd
}

// addGenerationFlags declares the flags shared by generate and watch
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("target", "t", []string{"go"}, "Targets to render (go, rust, typescript|ts, python|py, schema); repeatable or comma separated")
	cmd.Flags().String("root-name", "", "Name of the root type (default: derived from the first file)")
	cmd.Flags().StringP("out-dir", "o", "", "Write one file per target into this directory")
	cmd.Flags().String("base", "", "File name of generated files without extension (default: the root name in snake case)")
	cmd.Flags().String("package", "main", "Package clause of generated Go code")
	cmd.Flags().Bool("no-comments", false, "Omit header and doc comments")
	cmd.Flags().Bool("no-optional", false, "Render optional fields as required")
	cmd.Flags().String("field-convention", "", "Field naming convention for every target (pascal, camel, snake, screaming_snake, go)")
	cmd.Flags().StringArray("convention", nil, "Field naming convention for one target, e.g. rust=camel")
	cmd.Flags().StringArray("override", nil, "Literal type for a field path, e.g. user.created=time.Time")
	cmd.Flags().Int("workers", 1, "Samples classified in parallel")
	cmd.Flags().String("report-dir", "", "Write a JSON run report into this directory")

	bindOnRun(cmd, generationKeys)
}

// generationKeys maps viper keys to the generation flags
var generationKeys = map[string]string{
	"targets":          "target",
	"root_name":        "root-name",
	"out_dir":          "out-dir",
	"base":             "base",
	"package":          "package",
	"no_comments":      "no-comments",
	"no_optional":      "no-optional",
	"field_convention": "field-convention",
	"convention":       "convention",
	"overrides":        "override",
	"workers":          "workers",
	"report_dir":       "report-dir",
}

// bindOnRun binds command-local flags once that command runs. Several commands declare
// flags for the same key, and viper keeps only one binding per key.
func bindOnRun(cmd *cobra.Command, keys map[string]string) {
	cmd.PreRun = func(c *cobra.Command, _ []string) {
		for key, flag := range keys {
			bind(key, c.Flags().Lookup(flag))
		}
	}
}

// bind binds one flag to a viper key
func bind(key string, flag *pflag.Flag) {
	_ = viper.BindPFlag(key, flag)
}
