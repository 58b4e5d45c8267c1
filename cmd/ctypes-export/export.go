// Package main implements the ctypes-export CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/export"
	"github.com/jordan9001/ctypes-export/internal/typedb"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] NAME...",
	Short: "Export types as Python ctypes declarations",
	Long:  "Export the named types (literals or glob patterns) from the loaded snapshots as a single Python source file.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  exportExecution,
}

func exportExecution(cmd *cobra.Command, args []string) error {
	dbPaths, err := cmd.Flags().GetStringSlice("db")
	if err != nil {
		return err
	}
	includeDeps, err := cmd.Flags().GetBool("deps")
	if err != nil {
		return err
	}
	debugOnly, err := cmd.Flags().GetBool("debug-only")
	if err != nil {
		return err
	}
	sizeAsserts, err := cmd.Flags().GetBool("size-asserts")
	if err != nil {
		return err
	}
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	manifest, manifestFound, err := loadManifest(".")
	if err != nil {
		return err
	}
	if manifestFound {
		if !cmd.Flags().Changed("db") && len(manifest.Database.Snapshots) > 0 {
			dbPaths = manifest.SnapshotPaths()
		}
		if !cmd.Flags().Changed("prefix") && manifest.HasPrefix {
			prefix = manifest.Export.Prefix
		}
		if !cmd.Flags().Changed("size-asserts") && manifest.HasSizeAsserts {
			sizeAsserts = manifest.Export.SizeAsserts
		}
		if !cmd.Flags().Changed("deps") && manifest.HasIncludeDeps {
			includeDeps = manifest.Export.IncludeDeps
		}
	}
	if len(dbPaths) == 0 {
		return errors.New(noManifestMessage)
	}

	names := splitNames(args)
	if len(names) == 0 {
		return fmt.Errorf("no type names requested")
	}

	loadBag := diag.NewBag(maxDiagnostics)
	loadRep := diag.BagReporter{Bag: loadBag}
	src, err := typedb.LoadAll(cmd.Context(), dbPaths, jobs, loadRep)
	if err != nil {
		printDiagnostics(loadBag, nil)
		return err
	}

	req := &export.Request{
		Names:          names,
		IncludeDeps:    includeDeps,
		DebugOnly:      debugOnly,
		SizeAsserts:    sizeAsserts,
		Prefix:         prefix,
		MaxDiagnostics: maxDiagnostics,
	}

	var res *export.Result
	if shouldUseTUI(uiModeValue) {
		selected, selErr := export.ExpandSelection(src, names, debugOnly, loadRep)
		if selErr != nil {
			printDiagnostics(loadBag, nil)
			return selErr
		}
		res, err = runExportWithUI(cmd.Context(), src, selected, req)
	} else {
		res, err = export.Run(cmd.Context(), src, req)
	}
	printDiagnostics(loadBag, res)
	if err != nil {
		if res != nil && showTimings {
			printStageTimings(os.Stdout, res.Timings)
		}
		return err
	}

	if outPath == "" {
		if _, printErr := fmt.Fprint(os.Stdout, res.Text); printErr != nil {
			return printErr
		}
	} else {
		if writeErr := os.WriteFile(outPath, []byte(res.Text), 0o644); writeErr != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, writeErr)
		}
		if !quiet {
			if _, printErr := fmt.Fprintf(os.Stderr, "wrote %s\n", outPath); printErr != nil {
				return printErr
			}
		}
	}
	if showTimings {
		printStageTimings(os.Stderr, res.Timings)
	}
	return nil
}

// splitNames принимает и повторяющиеся аргументы, и списки через запятую
func splitNames(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// printDiagnostics merges load-time and export-time diagnostics and prints
// them, sorted and deduplicated, to stderr.
func printDiagnostics(loadBag *diag.Bag, res *export.Result) {
	merged := loadBag
	if res != nil && res.Bag != nil {
		merged.Merge(res.Bag)
	}
	if merged == nil || merged.Len() == 0 {
		return
	}
	merged.Sort()
	merged.Dedup()
	if _, err := fmt.Fprint(os.Stderr, diag.FormatGolden(merged.Items(), true)); err != nil {
		panic(err)
	}
}

func init() {
	exportCmd.Flags().StringSlice("db", nil, "type database snapshot path (repeatable)")
	exportCmd.Flags().Bool("deps", false, "include every transitively referenced type")
	exportCmd.Flags().Bool("debug-only", false, "resolve types through debug parsers only")
	exportCmd.Flags().Bool("size-asserts", false, "emit sizeof assertions after each struct/union")
	exportCmd.Flags().String("prefix", "", "prefix for generated type names")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	exportCmd.Flags().Int("jobs", 0, "parallel snapshot loads (0 = one per snapshot)")
	exportCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
}
