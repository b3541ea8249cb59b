package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/heartrisk/internal/artifact"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load and cross-check the artifact bundle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := artifact.Verify(cmd.Context(), cfg.Artifacts, artifact.Options{
			RequireChecksums: cfg.RequireChecksums,
			Logger:           logger,
		})
		if err != nil {
			return fmt.Errorf("verify %s: %w", cfg.Artifacts, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Bundle:    %s\n", r.Dir)
		fmt.Fprintf(out, "Model:     %s (classes %v)\n", r.ModelKind, r.Classes)
		fmt.Fprintf(out, "Features:  %d\n", r.NumFeatures)
		checksums := "not present"
		if r.ChecksumsListed {
			checksums = "verified"
		}
		fmt.Fprintf(out, "Checksums: %s\n\n", checksums)

		fmt.Fprintf(out, "%-20s  %-8s  %8s  %s\n", "File", "Version", "Bytes", "SHA256")
		fmt.Fprintln(out, strings.Repeat("─", 104))
		for _, f := range r.Files {
			fmt.Fprintf(out, "%-20s  %-8s  %8d  %s\n", f.Name, f.FormatVersion, f.Size, f.SHA256)
		}
		fmt.Fprintln(out, "\nOK")
		return nil
	},
}
