package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omics-group/dynamics-cli/internal/compare"
	"github.com/omics-group/dynamics-cli/internal/sampler"
)

var (
	compareClusters string
	compareDynamics []string
	compareCores    int
	compareOut      string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare clusters across conditions",
	Long:  "Commands for comparing cluster temporal dynamics and membership composition across experimental conditions.",
}

// -- compare dynamics --

var compareDynamicsCmd = &cobra.Command{
	Use:   "dynamics",
	Short: "Compare cluster temporal profiles with posterior uncertainty",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(compareDynamics) == 0 {
			return eris.New("compare dynamics: --dynamics column list is required")
		}

		clusters, err := loadClusters(compareClusters, compareDynamics)
		if err != nil {
			return err
		}

		scfg := cfg.Sampler
		if compareCores > 0 {
			scfg.Cores = compareCores
		}

		eng := sampler.NewGibbs(cfg.Pipeline.Seed)
		comparisons, err := compare.Dynamics(ctx, clusters, eng, scfg)
		if err != nil {
			return err
		}

		if err := writeJSON(compareOut, comparisons); err != nil {
			return err
		}
		zap.L().Info("dynamics comparison written",
			zap.String("path", compareOut),
			zap.Int("pairs", len(comparisons)))
		return nil
	},
}

// -- compare metabolites --

var compareMetabolitesCmd = &cobra.Command{
	Use:   "metabolites",
	Short: "Compare cluster membership overlap",
	RunE: func(cmd *cobra.Command, args []string) error {
		clusters, err := loadClusters(compareClusters, compareDynamics)
		if err != nil {
			return err
		}

		comparisons, err := compare.Composition(clusters)
		if err != nil {
			return err
		}

		if err := writeJSON(compareOut, comparisons); err != nil {
			return err
		}
		zap.L().Info("composition comparison written",
			zap.String("path", compareOut),
			zap.Int("pairs", len(comparisons)))
		return nil
	},
}

func init() {
	compareCmd.PersistentFlags().StringVar(&compareClusters, "clusters", "", "path to the cluster assignment CSV")
	compareCmd.PersistentFlags().StringSliceVar(&compareDynamics, "dynamics", nil, "ordered timepoint-mean column names in the cluster CSV")
	compareCmd.PersistentFlags().StringVar(&compareOut, "out", "comparison.json", "output path")
	_ = compareCmd.MarkPersistentFlagRequired("clusters")

	compareDynamicsCmd.Flags().IntVar(&compareCores, "cores", 0, "override sampler core count")

	compareCmd.AddCommand(compareDynamicsCmd)
	compareCmd.AddCommand(compareMetabolitesCmd)
	rootCmd.AddCommand(compareCmd)
}
