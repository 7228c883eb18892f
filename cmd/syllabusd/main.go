package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/syllabus/internal/cli"
	"github.com/cloo-solutions/syllabus/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "syllabusd",
		Short: "Syllabus API server",
		Long:  "Syllabus daemon for running the API server and managing the database schema",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
