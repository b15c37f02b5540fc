/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: The config command. Prints the effective configuration as YAML and, when a
log directory is configured, statistics about the log files kept there.
*/

package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/logging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ShowConfig executes the config command
func ShowConfig(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}

	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return errors.Wrap(err, "failed to marshal configuration")
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), string(data)); err != nil {
		return err
	}

	dir := viper.GetString("log_dir")
	if dir == "" {
		return nil
	}
	stats, err := logging.NewLogManager(dir, viper.GetInt("log_max_files"), false).GetLogStats()
	if err != nil {
		return err
	}
	pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("%s: %d log files (%d compressed), %d bytes",
		dir, stats.TotalFiles, stats.CompressedFiles, stats.TotalSize)
	return nil
}
