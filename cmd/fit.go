package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omics-group/dynamics-cli/internal/diagnostics"
	"github.com/omics-group/dynamics-cli/internal/estimates"
	"github.com/omics-group/dynamics-cli/internal/fitter"
	"github.com/omics-group/dynamics-cli/internal/model"
	"github.com/omics-group/dynamics-cli/internal/sampler"
)

var (
	fitObservations string
	fitOutDir       string
	fitCores        int
	fitIter         int
	fitChains       int
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit per-condition dynamics models and extract estimates",
	Long:  "Fits the hierarchical model per experimental condition, summarizes convergence diagnostics, and extracts posterior estimates with interval bounds and trend flags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		tab, err := loadObservations(fitObservations)
		if err != nil {
			return err
		}

		scfg := cfg.Sampler
		if fitCores > 0 {
			scfg.Cores = fitCores
		}
		if fitIter > 0 {
			scfg.Iter = fitIter
		}
		if fitChains > 0 {
			scfg.Chains = fitChains
		}

		run, err := st.CreateRun(ctx, fitObservations)
		if err != nil {
			return eris.Wrap(err, "create run")
		}
		start := time.Now()

		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusFitting); err != nil {
			return eris.Wrap(err, "update run status")
		}

		eng := sampler.NewGibbs(cfg.Pipeline.Seed)
		res, err := fitter.FitDynamics(ctx, tab, eng, scfg)
		if err != nil {
			if serr := st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); serr != nil {
				zap.L().Error("update run status", zap.Error(serr))
			}
			return err
		}

		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusDiagnosing); err != nil {
			return eris.Wrap(err, "update run status")
		}
		summary := diagnostics.Summarize(res.Fits, cfg.Pipeline.MinESS)

		ppc := make(map[model.ConditionID][]model.PPCRow, len(res.Fits))
		for cond, fit := range res.Fits {
			ppc[cond] = diagnostics.PosteriorPredictive(fit, tab, cfg.Pipeline.PPCDraws)
		}

		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusEstimating); err != nil {
			return eris.Wrap(err, "update run status")
		}
		est, err := estimates.Extract(res.Fits, cfg.Pipeline.DrawsPerParam)
		if err != nil {
			if serr := st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); serr != nil {
				zap.L().Error("update run status", zap.Error(serr))
			}
			return err
		}

		if err := writeFitOutputs(fitOutDir, summary, ppc, est); err != nil {
			return err
		}

		failed := make([]model.ConditionID, 0, len(res.Failed))
		for cond := range res.Failed {
			failed = append(failed, cond)
		}
		result := &model.RunResult{
			ConditionsRequested: len(tab.Conditions()),
			ConditionsFitted:    len(res.Fits),
			ConditionsFailed:    failed,
			ParametersTotal:     len(summary.Rows),
			ParametersConverged: summary.ConvergedCount(),
			Estimates:           len(est.Estimates),
			DurationMS:          time.Since(start).Milliseconds(),
		}
		if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
			return eris.Wrap(err, "update run result")
		}

		zap.L().Info("fit pipeline complete",
			zap.String("run_id", run.ID),
			zap.Int("conditions_fitted", result.ConditionsFitted),
			zap.Int("conditions_failed", len(failed)),
			zap.Int("parameters_converged", result.ParametersConverged),
			zap.Int("parameters_total", result.ParametersTotal),
			zap.Int64("duration_ms", result.DurationMS))
		return nil
	},
}

func writeFitOutputs(dir string, summary model.DiagnosticsSummary, ppc map[model.ConditionID][]model.PPCRow, est *model.EstimateSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}
	outputs := map[string]any{
		"diagnostics.json": summary,
		"ppc.json":         ppc,
		"estimates.json":   est,
	}
	for name, v := range outputs {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "encode %s", path)
	}
	return nil
}

func init() {
	fitCmd.Flags().StringVar(&fitObservations, "observations", "", "path to the observations CSV")
	fitCmd.Flags().StringVar(&fitOutDir, "out", "out", "directory for JSON outputs")
	fitCmd.Flags().IntVar(&fitCores, "cores", 0, "override sampler core count")
	fitCmd.Flags().IntVar(&fitIter, "iter", 0, "override sampler iterations per chain")
	fitCmd.Flags().IntVar(&fitChains, "chains", 0, "override sampler chain count")
	_ = fitCmd.MarkFlagRequired("observations")
	rootCmd.AddCommand(fitCmd)
}
