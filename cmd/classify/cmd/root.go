// Package cmd contains the classify CLI command.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanwahyu/componentlens/internal/domain/analysis"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// Execute runs the root command against os.Args.
func Execute() error {
	return newRootCmd(viper.New()).Execute()
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Sort component analysis bullets into Confirmed, Not Visible and Note",
		Long: `classify reads model output from a file, or stdin when no file is given,
and groups every "* Name: status" bullet by its status.

Example:
  classify analysis.txt
  cat analysis.txt | classify --format text`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, v)
		},
	}

	cmd.Flags().String("format", formatJSON, "output format: json or text")
	cmd.Flags().Bool("pretty", false, "indent JSON output")
	v.BindPFlag("format", cmd.Flags().Lookup("format"))
	v.BindPFlag("pretty", cmd.Flags().Lookup("pretty"))

	v.SetEnvPrefix("COMPONENTLENS")
	v.AutomaticEnv()
	return cmd
}

func run(cmd *cobra.Command, args []string, v *viper.Viper) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	res := analysis.Classify(text)

	out := cmd.OutOrStdout()
	switch format := strings.ToLower(v.GetString("format")); format {
	case formatJSON:
		enc := json.NewEncoder(out)
		if v.GetBool("pretty") {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	case formatText:
		return writeText(out, res)
	default:
		return fmt.Errorf("unknown format %q (json, text)", format)
	}
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(b), nil
}

func writeText(w io.Writer, res analysis.Result) error {
	for _, c := range analysis.Categories {
		records := res.In(c)
		if _, err := fmt.Fprintf(w, "%s (%d)\n", c.Label(), len(records)); err != nil {
			return err
		}
		for _, r := range records {
			if _, err := fmt.Fprintf(w, "  - %s: %s\n", r.Name, r.Status); err != nil {
				return err
			}
		}
	}
	return nil
}
