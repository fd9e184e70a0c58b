package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bladeworks/qloft/internal/kernel/mesh"
	"github.com/bladeworks/qloft/internal/pipeline"
)

// import --blade <file> --profile <file>: run one blade through the full
// pipeline and report the resulting solid.
func importCmd() *cobra.Command {
	var (
		bladePath   string
		profilePath string
		zeroRoot    bool
		centerMass  bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Loft a QBlade blade definition into a 3D solid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kern := mesh.New(cfg.Calibration.RailTolerance)
			p := pipeline.New(cfg, log, kern)

			res, err := p.Run(cmd.Context(), pipeline.Request{
				BladePath:   bladePath,
				ProfilePath: profilePath,
				ZeroRoot:    zeroRoot,
				CenterMass:  centerMass,
			})
			if err != nil {
				return err
			}

			props, err := kern.QueryMassProperties(cmd.Context(), res.Handle)
			if err != nil {
				return err
			}

			fmt.Printf("solid %s\n", res.Handle)
			fmt.Printf("  format    %s\n", res.Format)
			fmt.Printf("  airfoil   %s\n", res.Airfoil)
			fmt.Printf("  sections  %d", len(res.Stations))
			if res.Dropped > 0 {
				fmt.Printf(" (%d circular root station(s) dropped)", res.Dropped)
			}
			fmt.Println()
			if res.Fallback {
				fmt.Println("  loft      unguided (guide rails rejected)")
			}
			if zeroRoot {
				fmt.Printf("  hub       %.2f cm removed\n", res.HubOffset)
			}
			fmt.Printf("  volume    %.2f cm3\n", props.Volume)
			fmt.Printf("  centroid  (%.2f, %.2f, %.2f) cm\n",
				props.Centroid.X, props.Centroid.Y, props.Centroid.Z)
			return nil
		},
	}

	cmd.Flags().StringVar(&bladePath, "blade", "", "QBlade blade definition file (.bld)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "2D airfoil coordinate file")
	cmd.Flags().BoolVar(&zeroRoot, "zero-root", false, "shift the blade so the root sits at Z = 0")
	cmd.Flags().BoolVar(&centerMass, "center-mass", false, "recenter the solid's centroid on the blade axis")
	_ = cmd.MarkFlagRequired("blade")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
