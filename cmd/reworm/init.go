package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pedronauck/reworm/internal/config"
	"github.com/pedronauck/reworm/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		force    bool
		devtools bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter reworm.json",
		Long: `Write a reworm.json with default settings and an example store.

Examples:
  reworm init
  reworm init ./playground --devtools
  reworm init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir, force, devtools)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing reworm.json")
	cmd.Flags().BoolVar(&devtools, "devtools", false, "Enable the inspector in the generated file")

	return cmd
}

func runInit(out io.Writer, dir string, force, devtools bool) error {
	if config.Exists(dir) && !force {
		return errors.New("R141").
			WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists").
			WithSuggestion("Pass --force to overwrite it")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.FromError(err, "R120").WithDetail("cannot create " + dir)
	}

	cfg := config.New()
	cfg.Stores["count"] = json.RawMessage(`0`)
	cfg.Devtools.Enabled = devtools

	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	success(out, "Wrote %s", cfg.Path())
	fmt.Fprintln(out)
	info(out, "Next: reworm serve --config %s", cfg.Path())
	return nil
}
