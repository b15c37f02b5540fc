/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inspect.go
Description: The inspect command. Prints the inferred root type and the reachable
named-type table, either as a tree or as JSON.
*/

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/kleascm/typeforge/pkg/codegen"
	"github.com/kleascm/typeforge/pkg/inference"
	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/naming"
	"github.com/kleascm/typeforge/pkg/pipeline"
	"github.com/kleascm/typeforge/pkg/value"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunInspect executes the inspect command
func RunInspect(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	sources, closeAll, err := openSources(cmd, args)
	if err != nil {
		return err
	}
	defer closeAll()

	samples, _, err := pipeline.Decode(sources, inputLimits(), logger)
	if err != nil {
		return err
	}
	engine := inference.NewEngine()
	if w := viper.GetInt("workers"); w > 1 {
		engine.Workers = w
	}
	res, err := engine.Infer(samples)
	if err != nil {
		return err
	}

	root := pipeline.ResolveRootName(pipeline.Request{Sources: sources, RootName: viper.GetString("root_name")})
	names := codegen.AssignNames(res.Root, res.Table, root, naming.NewScope(naming.PascalCase, nil))

	if viper.GetBool("inspect.json") {
		return printInspectJSON(cmd, res, names, value.Analyze(samples))
	}
	return printInspectTree(cmd, res, names)
}

type inspectDump struct {
	Root      string            `json:"root"`
	Samples   int               `json:"samples"`
	Structure value.Analysis    `json:"structure"`
	Names     map[string]string `json:"names"`
	Table     *ir.Table         `json:"table"`
}

func printInspectJSON(cmd *cobra.Command, res *inference.Result, names *codegen.Names, structure value.Analysis) error {
	dump := inspectDump{
		Root:      res.Root.String(),
		Samples:   res.Samples,
		Structure: structure,
		Names:     make(map[string]string, len(names.Types)),
		Table:     res.Table,
	}
	for id, name := range names.Types {
		dump.Names[string(id)] = name
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal table")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func printInspectTree(cmd *cobra.Command, res *inference.Result, names *codegen.Names) error {
	rootLabel := "root: " + res.Root.String()
	if names.Alias != "" {
		rootLabel = names.Alias + " = " + res.Root.String()
	}
	list := pterm.LeveledList{{Level: 0, Text: rootLabel}}

	for _, id := range names.Order {
		s, ok := res.Table.Get(id)
		if !ok {
			continue
		}
		list = append(list, pterm.LeveledListItem{
			Level: 0,
			Text:  fmt.Sprintf("%s (shape %s)", names.Types[id], id.Short()),
		})
		for _, f := range s.Fields {
			key := f.Key
			if f.Optional {
				key += "?"
			}
			list = append(list, pterm.LeveledListItem{Level: 1, Text: key + ": " + typeLabel(f.Type, names)})
		}
	}

	out, err := pterm.DefaultTree.WithRoot(putils.TreeFromLeveledList(list)).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render tree")
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// typeLabel prints a type with shape references replaced by their names
func typeLabel(t *ir.Type, names *codegen.Names) string {
	var s string
	switch t.Kind {
	case ir.Array:
		s = "[]" + typeLabel(t.Elem, names)
	case ir.Union:
		for i, v := range t.Variants {
			if i > 0 {
				s += "|"
			}
			s += typeLabel(v, names)
		}
	case ir.Object:
		if name, ok := names.Types[t.Shape]; ok {
			s = name
		} else {
			s = t.String()
		}
	default:
		s = t.Kind.String()
	}
	if t.Nullable {
		if t.Kind == ir.Union {
			s = "(" + s + ")"
		}
		s += "?"
	}
	return s
}
