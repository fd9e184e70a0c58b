package commands

import (
	"github.com/spf13/cobra"

	"github.com/bladeworks/qloft/internal/config"
	"github.com/bladeworks/qloft/internal/logging"
)

var (
	cfg *config.Config
	log *logging.Logger

	calibrationPath string
	verbose         bool
)

func Execute() error {
	root := &cobra.Command{
		Use:   "qloft",
		Short: "Import QBlade blade definitions as lofted 3D solids",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.LoadOrDefault()
			if calibrationPath != "" {
				if err := cfg.ApplyCalibrationFile(calibrationPath); err != nil {
					return err
				}
			}
			if verbose {
				cfg.Logging.Level = "debug"
				cfg.Logging.Development = true
			}

			var err error
			log, err = logging.New(logging.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
				OutputPaths: []string{"stderr"},
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&calibrationPath, "calibration", "", "TOML file overriding geometric thresholds")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(importCmd())
	return root.Execute()
}
