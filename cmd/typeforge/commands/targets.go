/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: targets.go
Description: The targets command. Lists every supported target with its aliases, file
extension and a short description.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/codegen"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ListTargets executes the targets command
func ListTargets(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}

	data := pterm.TableData{{"Target", "Aliases", "Extension", "Description"}}
	for _, name := range codegen.Targets() {
		backend, err := codegen.New(name, codegen.DefaultOptions())
		if err != nil {
			return err
		}
		data = append(data, []string{
			name,
			strings.Join(codegen.Aliases(name), ", "),
			"." + backend.FileExtension(),
			codegen.Describe(name),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
