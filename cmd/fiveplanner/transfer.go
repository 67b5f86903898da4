package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a browser local-storage dump (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runImport),
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the planner data as a browser local-storage dump",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runExport),
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)
}

func runImport(ctx context.Context, a *app, args []string) error {
	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var dump storage.Dump
	if err := json.NewDecoder(in).Decode(&dump); err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}
	written, err := storage.Import(ctx, a.gw, dump)
	if err != nil {
		return err
	}
	for _, key := range written {
		fmt.Println("imported", key)
	}
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	dump, err := storage.Export(ctx, a.gw)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}
