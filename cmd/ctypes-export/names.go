package main

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/typedb"
)

var namesCmd = &cobra.Command{
	Use:   "names [flags] [GLOB]",
	Short: "List type names known to the database",
	Long:  "List every exportable type name in the loaded snapshots, optionally filtered by a glob pattern.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  namesExecution,
}

func namesExecution(cmd *cobra.Command, args []string) error {
	dbPaths, err := cmd.Flags().GetStringSlice("db")
	if err != nil {
		return err
	}
	debugOnly, err := cmd.Flags().GetBool("debug-only")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	manifest, manifestFound, err := loadManifest(".")
	if err != nil {
		return err
	}
	if manifestFound && !cmd.Flags().Changed("db") && len(manifest.Database.Snapshots) > 0 {
		dbPaths = manifest.SnapshotPaths()
	}
	if len(dbPaths) == 0 {
		return errors.New(noManifestMessage)
	}

	loadBag := diag.NewBag(maxDiagnostics)
	src, err := typedb.LoadAll(cmd.Context(), dbPaths, jobs, diag.BagReporter{Bag: loadBag})
	printDiagnostics(loadBag, nil)
	if err != nil {
		return err
	}

	scope := typedb.ScopeAll
	if debugOnly {
		scope = typedb.ScopeDebugOnly
	}
	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}
	for _, name := range src.Names(scope) {
		if pattern != "" {
			ok, matchErr := path.Match(pattern, name)
			if matchErr != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, matchErr)
			}
			if !ok {
				continue
			}
		}
		if _, printErr := fmt.Fprintln(os.Stdout, name); printErr != nil {
			return printErr
		}
	}
	return nil
}

func init() {
	namesCmd.Flags().StringSlice("db", nil, "type database snapshot path (repeatable)")
	namesCmd.Flags().Bool("debug-only", false, "list types from debug parsers only")
	namesCmd.Flags().Int("jobs", 0, "parallel snapshot loads (0 = one per snapshot)")
}
