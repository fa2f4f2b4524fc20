package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trajmle/internal/config"
	"trajmle/internal/covariance"
	"trajmle/internal/design"
	"trajmle/internal/gap"
	"trajmle/internal/mle"
	"trajmle/internal/observations"
	"trajmle/internal/report"
	"trajmle/internal/solver"
)

// annualPeriod and semiAnnualPeriod are the periodic-signal periods (days)
// added to the design matrix when the control file requests them.
const (
	annualPeriod     = 365.25
	semiAnnualPeriod = 182.625
)

var (
	csvPath     string
	sidecarPath string
	controlPath string
	logLevel    string
	solverFlag  string
	scaleFlag   float64
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate trajectory parameters from a time series",
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&csvPath, "observations", "", "path to the observations CSV (epoch, value)")
	estimateCmd.Flags().StringVar(&sidecarPath, "sidecar", "", "path to the observations YAML sidecar (sampling_period, offsets)")
	estimateCmd.Flags().StringVar(&controlPath, "control", "", "path to the control YAML file")
	estimateCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	estimateCmd.Flags().StringVar(&solverFlag, "solver", "", "override the control file's minimization_method")
	estimateCmd.Flags().Float64Var(&scaleFlag, "scale", 0, "override the control file's scale_factor")
	estimateCmd.MarkFlagRequired("observations")
	estimateCmd.MarkFlagRequired("sidecar")
	estimateCmd.MarkFlagRequired("control")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	ctrl, err := config.Load(controlPath)
	if err != nil {
		return err
	}
	ctrl.ApplyOverrides(solverFlag, scaleFlag)
	if err := ctrl.Validate(); err != nil {
		return err
	}

	payload, err := observations.Load(csvPath, sidecarPath)
	if err != nil {
		return err
	}
	logrus.Infof("loaded %d observations, sampling period %.4g days", len(payload.Values), payload.SamplingPeriod)

	values := payload.Values
	if ctrl.ScaleFactor != 1.0 {
		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = v * ctrl.ScaleFactor
		}
		values = scaled
	}

	var periods []float64
	if ctrl.SeasonalSignal {
		periods = append(periods, annualPeriod)
	}
	if ctrl.HalfSeasonalSignal {
		periods = append(periods, semiAnnualPeriod)
	}
	offsets := payload.Offsets
	if !ctrl.EstimateOffsets {
		offsets = nil
	}

	H, err := design.Build(payload.SamplingPeriod, offsets, periods, payload.Epochs)
	if err != nil {
		return err
	}

	gapInfo, err := gap.Build(values)
	if err != nil {
		return err
	}

	cov, err := covariance.New(ctrl.NoiseModels)
	if err != nil {
		return err
	}

	s, err := solver.Select(solver.Name(ctrl.MinimizationMethod), gapInfo.MissingCount, len(values))
	if err != nil {
		return err
	}

	driver, err := mle.New(values, H, gapInfo, cov, s)
	if err != nil {
		return err
	}

	result, err := driver.Estimate()
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}
	for _, w := range result.Warnings {
		logrus.Warn(w)
	}

	names := design.ColumnNames(periods, offsets)
	rep, err := report.Build(H, result, names)
	if err != nil {
		return err
	}

	for _, p := range rep.Parameters {
		flag := ""
		if p.Significant {
			flag = " *"
		}
		cmd.Printf("%-20s %12.6g +/- %10.4g%s\n", p.Name, p.Value, p.StdError, flag)
	}
	cmd.Printf("sigma_eta = %.6g (%s), ln|C| = %.6g\n", rep.SigmaEta, ctrl.PhysicalUnit, rep.LnDetC)
	if len(rep.POpt) > 0 {
		cmd.Printf("p* = %v\n", rep.POpt)
	}

	return nil
}
