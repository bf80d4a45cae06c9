package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedronauck/reworm/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Print the meaning of a reworm error code, or list every code.

Examples:
  reworm explain
  reworm explain R001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listCodes(cmd.OutOrStdout())
				return nil
			}
			return explainCode(cmd.OutOrStdout(), args[0])
		},
	}
}

func listCodes(w io.Writer) {
	for _, code := range errors.GetAllCodes() {
		tmpl, _ := errors.GetTemplate(code)
		fmt.Fprintf(w, "  %s  %-10s %s\n", code, tmpl.Category, tmpl.Message)
	}
}

func explainCode(w io.Writer, code string) error {
	code = strings.ToUpper(code)
	tmpl, ok := errors.GetTemplate(code)
	if !ok {
		return errors.New("R142").
			WithDetail(code + " is not a reworm error code").
			WithSuggestion("Run `reworm explain` to list every code")
	}

	fmt.Fprintf(w, "%s: %s\n\n", paint("\033[1m", code), tmpl.Message)
	info(w, "Category: %s", tmpl.Category)
	if tmpl.Explain != "" {
		info(w, "%s", tmpl.Explain)
	}
	info(w, "Learn more: %s", tmpl.DocURL)
	return nil
}
