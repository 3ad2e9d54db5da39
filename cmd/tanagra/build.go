package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanagra-lang/tanagra/config"
	"github.com/tanagra-lang/tanagra/errs"
	"github.com/tanagra-lang/tanagra/grammar"
)

var buildFlags = struct {
	config         *string
	compactReduces *bool
	expect         *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "build <demo>",
		Short:   "Build a fixed demo grammar into LALR(1) parse tables",
		Example: "  tanagra build expr\n  tanagra build dangling-else --expect 1",
		Args:    cobra.ExactArgs(1),
		RunE:    runBuild,
	}
	buildFlags.config = cmd.Flags().String("config", "", "optional TOML config file (compact_reduces, expect)")
	buildFlags.compactReduces = cmd.Flags().Bool("compact-reduces", false, "enable default-action row compaction")
	buildFlags.expect = cmd.Flags().Int("expect", 0, "required conflict count; -1 disables the check")
	rootCmd.AddCommand(cmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctor, ok := demoGrammars[args[0]]
	if !ok {
		return unknownDemoError(args[0])
	}

	opts, err := config.Load(*buildFlags.config, config.Default())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("compact-reduces") {
		opts.CompactReduces = *buildFlags.compactReduces
	}
	if cmd.Flags().Changed("expect") {
		opts.Expect = *buildFlags.expect
	}

	em := errs.New()
	g, err := ctor(em)
	if err != nil {
		return err
	}

	tables, err := g.Compile(opts)
	if err != nil {
		return err
	}

	compressed := grammar.Compress(g, tables)

	fmt.Fprintf(os.Stdout, "states: %d\n", tables.NumStates)
	fmt.Fprintf(os.Stdout, "conflicts: %d (shift/reduce %d, reduce/reduce %d)\n",
		g.ConflictCount(), em.ShiftReduceConflicts, em.ReduceReduceConflicts)
	for _, d := range g.Diagnostics() {
		fmt.Fprintf(os.Stdout, "  %s\n", d.Error())
	}
	fmt.Fprintf(os.Stdout, "compressed action table: %d base rows, %d comb units\n",
		len(compressed.Action.Base), len(compressed.Action.Comb))
	fmt.Fprintf(os.Stdout, "compressed goto table: %d base rows, %d comb units\n",
		len(compressed.Goto.Base), len(compressed.Goto.Comb))

	return nil
}
