package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"promolift/adapters/dataset"
	"promolift/adapters/excel"
	"promolift/domain/promo"
	"promolift/internal/analysis"
	"promolift/internal/config"
	"promolift/internal/errors"
	"promolift/internal/report"
	"promolift/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dataFlags are shared by every command that reads the dataset
type dataFlags struct {
	path   string
	sheet  string
	groupA string
	groupB string
}

func newRootCmd() *cobra.Command {
	flags := &dataFlags{}

	rootCmd := &cobra.Command{
		Use:   "promolift",
		Short: "Promotion A/B test analysis",
		Long: `Analyse a two-group promotion experiment: assumption checks, the selected
significance test, effect size, segment breakdowns and factorial ANOVA models.

The dataset comes from DATASET_PATH (or --data); group labels from
GROUP_A_LABEL and GROUP_B_LABEL (or --group-a / --group-b).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.path, "data", "", "Dataset file (.csv or .xlsx); overrides DATASET_PATH")
	rootCmd.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "Worksheet for .xlsx files; overrides DATASET_SHEET")
	rootCmd.PersistentFlags().StringVar(&flags.groupA, "group-a", "", "Promotion label of group A; overrides GROUP_A_LABEL")
	rootCmd.PersistentFlags().StringVar(&flags.groupB, "group-b", "", "Promotion label of group B; overrides GROUP_B_LABEL")

	rootCmd.AddCommand(
		newReportCmd(flags),
		newAnalysisCmd(flags, "assumptions", "Check normality per group and equality of variances",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.Assumptions(ctx) }),
		newAnalysisCmd(flags, "test", "Run the significance test selected by the assumption checks",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.Test(ctx) }),
		newAnalysisCmd(flags, "effect-size", "Compute Cohen's d between the groups",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.EffectSize(ctx) }),
		newAnalysisCmd(flags, "anova", "Fit the five factorial models and print Type-II ANOVA tables",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.Anova(ctx) }),
		newAnalysisCmd(flags, "trend", "Print weekly sales per group",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.Trend(ctx) }),
		newAnalysisCmd(flags, "summary", "Print group counts and descriptive statistics",
			func(ctx context.Context, a *analysis.Analyzer) (interface{}, error) { return a.Summary(ctx) }),
		newSegmentsCmd(flags),
		newGenerateCmd(),
	)
	return rootCmd
}

// analyzerFor builds the analyzer from environment config plus flag overrides
func analyzerFor(flags *dataFlags) (*analysis.Analyzer, error) {
	cfg, err := config.LoadWithOverrides(config.DataConfig{
		Path:        flags.path,
		Sheet:       flags.sheet,
		GroupALabel: flags.groupA,
		GroupBLabel: flags.groupB,
	})
	if err != nil {
		return nil, err
	}
	cfg.ConfigureLogging()

	reader := excel.NewDataReader(excel.ConfigFrom(cfg.Data))
	return analysis.NewAnalyzer(dataset.NewProvider(reader)), nil
}

func newAnalysisCmd(flags *dataFlags, use, short string, run func(context.Context, *analysis.Analyzer) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := analyzerFor(flags)
			if err != nil {
				return err
			}
			result, err := run(cmd.Context(), analyzer)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newReportCmd(flags *dataFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every analysis and print the full report",
		Long: `Run every analysis once over the dataset and print the report.

Example: promolift report --data WA_Marketing-Campaign.csv --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "markdown", "json", "yaml":
			default:
				return errors.InvalidInput(fmt.Sprintf("unknown format %q (want markdown, json or yaml)", format))
			}
			analyzer, err := analyzerFor(flags)
			if err != nil {
				return err
			}
			rep, err := analyzer.Report(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), rep)
			case "yaml":
				out, err := report.YAML(rep)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(rep))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|json|yaml")
	return cmd
}

func newSegmentsCmd(flags *dataFlags) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Compare the groups inside each market size or store age bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cov, err := promo.ParseCovariate(by)
			if err != nil {
				return err
			}
			analyzer, err := analyzerFor(flags)
			if err != nil {
				return err
			}
			rows, err := analyzer.Segments(cmd.Context(), cov)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&by, "by", string(promo.CovariateMarket), "Covariate: market|age")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var rows int
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic promotion dataset",
		Long: `Write a reproducible synthetic dataset with three promotions over four weeks,
in the column layout the analyses expect.

Example: promolift generate --rows 548 --seed 42 --out campaign.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows < promo.MaxWeek {
				return errors.InvalidInput(fmt.Sprintf("--rows must be at least %d", promo.MaxWeek))
			}
			cfg := testkit.DefaultPromotionConfig()
			cfg.Locations = (rows + promo.MaxWeek - 1) / promo.MaxWeek
			cfg.Seed = seed

			generated, err := testkit.NewPromotionDataGenerator(cfg).Generate()
			if err != nil {
				return err
			}
			if err := testkit.WriteFile(out, generated); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"rows": len(generated), "path": out}).Info("dataset written")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(generated), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 548, "Approximate number of rows (rounded up to whole locations)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&out, "out", "promotions.csv", "Output file (.csv or .xlsx)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
