package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typegen/internal/index"
	"typegen/internal/pipeline"
	"typegen/internal/typespec"
)

var gentypesCmd = &cobra.Command{
	Use:   "gentypes <module.md> <out.json>",
	Short: "Extract the intermediate typespec of one module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, "gentypes", func(tg *pipeline.Typegen) error {
			_, err := tg.GenTypes(cmd.Context(), args[0], args[1])
			return err
		})
	},
}

var gendocsCmd = &cobra.Command{
	Use:   "gendocs <module.md> <datapath> <templatepath> [typespec files...]",
	Short: "Resolve one module against typespecs and write its documents and page stubs",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, "gendocs", func(tg *pipeline.Typegen) error {
			return tg.GenDocs(cmd.Context(), args[0], args[1], args[2], args[3:])
		})
	},
}

var fulltypegenCmd = &cobra.Command{
	Use:   "fulltypegen <basedir> <outpath> <datapath> <templatepath> [extra type dirs...]",
	Short: "Discover every module, extract all typespecs and document every module",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, "fulltypegen", func(tg *pipeline.Typegen) error {
			return tg.FullTypegen(cmd.Context(), args[0], args[1], args[2], args[3], args[4:])
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <typespec files or dirs...>",
	Short: "Schema-check and merge typespecs, reporting conflicts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandSpecPaths(args)
		if err != nil {
			return err
		}

		specs, err := index.LoadSpecs(paths)
		if err != nil {
			return err
		}
		if !cfg.NoBuiltins {
			specs = append(specs, typespec.Builtins())
		}

		merged, conflicts := typespec.Merge(specs...)
		out := cmd.OutOrStdout()
		for _, c := range conflicts {
			fmt.Fprintf(out, "%s %s\n", color.YellowString("conflict:"), c)
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%d merge conflicts in %d typespecs", len(conflicts), len(paths))
		}

		fmt.Fprintf(out, "%s %d typespecs: %d mappings, %d classes, %d gadgets, %d enums\n",
			color.GreenString("valid:"), len(paths),
			len(merged.TypeMap), len(merged.Classes), len(merged.Gadgets), len(merged.Enums))
		return nil
	},
}

// expandSpecPaths replaces directory arguments with the spec files inside them.
func expandSpecPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if filepath.Ext(arg) == ".json" {
			paths = append(paths, arg)
			continue
		}
		files, err := index.SpecFiles(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}
