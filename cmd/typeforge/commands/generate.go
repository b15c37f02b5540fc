/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: The generate command. Runs the pipeline once over the given samples and
writes every target to stdout or to one file per target in the output directory.
*/

package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/logging"
	"github.com/kleascm/typeforge/pkg/output"
	"github.com/kleascm/typeforge/pkg/pipeline"
	"github.com/kleascm/typeforge/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunGenerate executes the generate command
func RunGenerate(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	req, err := buildRequest()
	if err != nil {
		return err
	}
	sources, closeAll, err := openSources(cmd, args)
	if err != nil {
		return err
	}
	defer closeAll()
	req.Sources = sources

	sink, err := newSink(cmd, req)
	if err != nil {
		return err
	}

	report, err := pipeline.New(logger, sink).Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return finishRun(cmd, logger, report)
}

// newSink picks the output directory sink when --out-dir is set, else stdout. Banners
// separate the files when several targets share stdout.
func newSink(cmd *cobra.Command, req pipeline.Request) (output.Sink, error) {
	if dir := viper.GetString("out_dir"); dir != "" {
		return output.NewDirSink(dir, outputBase(req)), nil
	}
	targets, err := pipeline.ResolveTargets(req.Targets)
	if err != nil {
		return nil, err
	}
	return output.NewWriterSink(cmd.OutOrStdout(), len(targets) > 1), nil
}

// finishRun writes the run report when requested, prints the summary and turns a run in
// which every target failed into an error
func finishRun(cmd *cobra.Command, logger *logging.Logger, report *pipeline.Report) error {
	if dir := viper.GetString("report_dir"); dir != "" {
		path, err := utils.WriteReport(dir, cmd.Name(), report.RunID, report)
		if err != nil {
			logger.Error("Failed to write run report", map[string]interface{}{"error": err})
		} else {
			logger.Info("Wrote run report", map[string]interface{}{"path": path})
		}
	}

	printSummary(cmd.ErrOrStderr(), report)

	if report.AllFailed() {
		return errors.Newf("all %d targets failed", len(report.Targets))
	}
	return nil
}
