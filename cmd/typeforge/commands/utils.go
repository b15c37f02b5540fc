/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the typeforge commands. Provides configuration loading,
logging setup, input handling and the translation of settings into pipeline requests.
*/

package commands

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kleascm/typeforge/pkg/codegen"
	"github.com/kleascm/typeforge/pkg/logging"
	"github.com/kleascm/typeforge/pkg/naming"
	"github.com/kleascm/typeforge/pkg/pipeline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from .env, the config file and the environment
func LoadConfig() error {
	// A missing .env file is not an error
	_ = godotenv.Load()

	viper.SetDefault("comments", true)
	viper.SetDefault("optional_fields", true)
	viper.SetDefault("input.max_bytes", pipeline.DefaultMaxInputBytes)
	viper.SetDefault("input.warn_bytes", pipeline.DefaultWarnInputBytes)

	// Set environment variable prefix
	viper.SetEnvPrefix("TYPEFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	if viper.GetBool("no_color") {
		pterm.DisableColor()
	}
	return nil
}

// SetupLogging creates the run logger from the loaded configuration. Logs go to the
// command's error stream.
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	cfg := &logging.LoggerConfig{
		Level:     logging.LogLevel(strings.ToLower(viper.GetString("log_level"))),
		Format:    logging.LogFormat(strings.ToLower(viper.GetString("log_format"))),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Timestamp: true,
		Colors:    !viper.GetBool("no_color"),
		Compress:  viper.GetBool("log_compress"),
		Console:   cmd.ErrOrStderr(),
	}
	if cfg.Level == "warning" {
		cfg.Level = logging.LogLevelWarning
	}
	if viper.GetBool("json_logs") {
		cfg.Format = logging.LogFormatJSON
	}
	if viper.GetBool("quiet") {
		cfg.Level = logging.LogLevelError
	}

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, errors.WithHint(err, "check --log-level, --log-format and --log-max-files")
	}
	return logger, nil
}

// openSources opens the sample files named by args. No args, or "-", reads the
// command's input stream. The returned function closes every opened file.
func openSources(cmd *cobra.Command, args []string) ([]pipeline.Source, func(), error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	sources := make([]pipeline.Source, 0, len(args))
	for _, path := range args {
		if path == "-" {
			sources = append(sources, pipeline.Source{Name: "-", Reader: cmd.InOrStdin()})
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, errors.Wrapf(err, "open sample %s", path)
		}
		files = append(files, f)
		sources = append(sources, pipeline.Source{Name: path, Reader: f})
	}
	return sources, closeAll, nil
}

// buildRequest translates the generation settings into a pipeline request
func buildRequest() (pipeline.Request, error) {
	overrides, err := parseAssignments(viper.GetStringSlice("overrides"), "override")
	if err != nil {
		return pipeline.Request{}, err
	}

	conventions := make(map[string]string)
	for target, c := range viper.GetStringMapString("conventions") {
		if err := setConvention(conventions, target, c); err != nil {
			return pipeline.Request{}, err
		}
	}
	flagged, err := parseAssignments(viper.GetStringSlice("convention"), "convention")
	if err != nil {
		return pipeline.Request{}, err
	}
	for target, c := range flagged {
		if err := setConvention(conventions, target, c); err != nil {
			return pipeline.Request{}, err
		}
	}

	opts := codegen.Options{
		IncludeComments: viper.GetBool("comments") && !viper.GetBool("no_comments"),
		OptionalFields:  viper.GetBool("optional_fields") && !viper.GetBool("no_optional"),
		Package:         viper.GetString("package"),
		FieldConvention: viper.GetString("field_convention"),
		TypeOverrides:   overrides,
	}

	return pipeline.Request{
		Targets:     splitList(viper.GetStringSlice("targets")),
		RootName:    viper.GetString("root_name"),
		Options:     opts,
		Conventions: conventions,
		Workers:     viper.GetInt("workers"),
		Limits:      inputLimits(),
	}, nil
}

// inputLimits reads the per-input size limits
func inputLimits() pipeline.Limits {
	return pipeline.Limits{
		MaxBytes:  viper.GetInt64("input.max_bytes"),
		WarnBytes: viper.GetInt64("input.warn_bytes"),
	}
}

// setConvention validates one per-target convention and stores it under the canonical
// target name
func setConvention(conventions map[string]string, target, convention string) error {
	name, err := codegen.Canonical(target)
	if err != nil {
		return errors.Wrap(err, "convention")
	}
	if _, err := naming.ParseConvention(convention); err != nil {
		return errors.Wrapf(err, "convention for %s", name)
	}
	conventions[name] = convention
	return nil
}

// parseAssignments parses "key=value" entries
func parseAssignments(entries []string, what string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, val, ok := strings.Cut(entry, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			return nil, errors.WithHintf(errors.Newf("malformed %s %q", what, entry), "use key=value")
		}
		out[key] = val
	}
	return out, nil
}

// splitList flattens comma separated entries, as given by environment variables
func splitList(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// outputBase returns the file name, without extension, of generated files
func outputBase(req pipeline.Request) string {
	if base := viper.GetString("base"); base != "" {
		return base
	}
	return naming.Join(naming.Split(pipeline.ResolveRootName(req)), naming.SnakeCase)
}

// printSummary prints one line per target to w
func printSummary(w io.Writer, report *pipeline.Report) {
	if viper.GetBool("quiet") {
		return
	}
	for _, t := range report.Targets {
		if t.Failed() {
			pterm.Error.WithWriter(w).Printfln("%s: %s", t.Target, t.Error)
			continue
		}
		where := t.File
		if where == "" {
			where = "stdout"
		}
		line := pterm.Sprintf("%s: %d declarations -> %s", t.Target, len(t.Declarations), where)
		if len(t.Warnings) > 0 {
			pterm.Warning.WithWriter(w).Printfln("%s (%d warnings)", line, len(t.Warnings))
			continue
		}
		pterm.Success.WithWriter(w).Println(line)
	}
}
