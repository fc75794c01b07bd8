package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
	"github.com/de-tools/spend-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/spend-atlas/pkg/services/app"
	"github.com/de-tools/spend-atlas/pkg/services/config"
	storeexport "github.com/de-tools/spend-atlas/pkg/store/export"
)

const runTimeout = 5 * time.Minute

type AnalyzeCmd struct {
	configPath string
	topN       int
	declinePct float64
	exportTo   string
	reporter   *export.Reporter
	logger     zerolog.Logger
}

func NewAnalyzeCmd(reporter *export.Reporter, logger zerolog.Logger) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter, logger: logger}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find top recipients whose obligations declined year over year",
		RunE:  ac.run,
	}

	cmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "Path to the configuration file")
	cmd.Flags().IntVar(&ac.topN, "top-n", 0, "Number of top base-year recipients to analyze (1-100)")
	cmd.Flags().Float64Var(&ac.declinePct, "decline-pct", 0, "Minimum decline in percent")
	cmd.Flags().StringVar(&ac.exportTo, "export", "", "Write the report as JSON to a file path or s3://bucket/key")

	_ = cmd.MarkFlagRequired("top-n")
	_ = cmd.MarkFlagRequired("decline-pct")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	ctx = ac.logger.WithContext(ctx)

	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}
	defer a.Close()

	req := domain.AnalysisRequest{TopN: ac.topN, DeclinePct: ac.declinePct}
	results, err := a.Analyzer.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	base, comparison := a.Analyzer.Years()
	report := domain.NewReport(base, comparison, req, results)

	if ac.exportTo != "" {
		sink, err := storeexport.NewSink(ctx, ac.exportTo)
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, report); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
	}

	return ac.reporter.Handle(report)
}
