package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omics-group/dynamics-cli/internal/cluster"
	"github.com/omics-group/dynamics-cli/internal/model"
)

var (
	clusterEstimates string
	clusterK         int
	clusterOut       string
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster fitted temporal profiles within each condition",
	Long:  "Groups posterior mean profiles from a fit run into k clusters per condition using average-linkage agglomeration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(clusterEstimates)
		if err != nil {
			return eris.Wrapf(err, "read %s", clusterEstimates)
		}
		var est model.EstimateSet
		if err := json.Unmarshal(raw, &est); err != nil {
			return eris.Wrapf(err, "decode %s", clusterEstimates)
		}
		if len(est.Profiles) == 0 {
			return eris.New("cluster: no profiles in estimate set")
		}

		byCondition := make(map[model.ConditionID][]model.Profile)
		for _, p := range est.Profiles {
			byCondition[p.Condition] = append(byCondition[p.Condition], p)
		}

		linker := cluster.AverageLinkage{}
		var set model.ClusterSet
		for cond, profiles := range byCondition {
			assignments, err := linker.Cluster(profiles, clusterK)
			if err != nil {
				return eris.Wrapf(err, "cluster condition %s", cond)
			}
			condSet, err := cluster.Build(cond, profiles, assignments)
			if err != nil {
				return eris.Wrapf(err, "cluster condition %s", cond)
			}
			set.Clusters = append(set.Clusters, condSet.Clusters...)
		}
		set.Clusters = set.Sorted()

		if err := writeJSON(clusterOut, set); err != nil {
			return err
		}
		zap.L().Info("clusters written",
			zap.String("path", clusterOut),
			zap.Int("clusters", len(set.Clusters)),
			zap.Int("k_per_condition", clusterK))
		return nil
	},
}

func init() {
	clusterCmd.Flags().StringVar(&clusterEstimates, "estimates", "", "path to the estimates JSON from a fit run")
	clusterCmd.Flags().IntVar(&clusterK, "k", 6, "target number of clusters per condition")
	clusterCmd.Flags().StringVar(&clusterOut, "out", "clusters.json", "output path")
	_ = clusterCmd.MarkFlagRequired("estimates")
	rootCmd.AddCommand(clusterCmd)
}
