package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/heartrisk/internal/app"
	"github.com/abhisek/heartrisk/internal/predict"
)

// runApp loads the artifacts, opens the history store when enabled, and
// launches the TUI. Artifact failures are reported before any screen is shown.
func runApp(cmd *cobra.Command) error {
	bundle, err := loadBundle(cmd.Context())
	if err != nil {
		return err
	}

	opts := app.Options{
		Predictor: predict.FromBundle(bundle),
		ModelKind: bundle.ModelKind,
		Logger:    logger,
	}

	if cfg.History.Enabled {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		opts.EventRepo = st.EventRepo()
	}

	return app.Run(opts)
}
