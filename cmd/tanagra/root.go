package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tanagra",
	Short: "Build LALR(1) parse tables from fixed demo grammars",
	Long: `tanagra assembles a small grammar through the Builder API and
runs it through the full nullability/FIRST/LALR(1)/table pipeline,
reporting conflicts and compressed table sizes.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
