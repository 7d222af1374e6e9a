package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/csvdir"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/parquet"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/xlsx"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/config"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/observability"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/pipeline"
)

type analyzeOptions struct {
	siteFile      string
	name          string
	folder        string
	meanThreshold string
	gustThreshold string
	returnPeriods string
	outputDir     string
	xlsx          bool
	parquet       bool
}

func newAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the source files of one site and write the result tables",
		Example: `  windstats analyze --site sites/dakar.yaml
  windstats analyze --name dakar --folder data/dakar --mean-threshold 24 --return-periods 50,100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.siteFile, "site", "", "YAML site file")
	f.StringVar(&opts.name, "name", "", "site name")
	f.StringVar(&opts.folder, "folder", "", "site folder holding the source CSV files (default: DATA_DIR/<name>)")
	f.StringVar(&opts.meanThreshold, "mean-threshold", "", "building-code mean wind speed threshold in m/s (default 25)")
	f.StringVar(&opts.gustThreshold, "gust-threshold", "", "building-code gust threshold in m/s (default 25)")
	f.StringVar(&opts.returnPeriods, "return-periods", "", "comma separated return periods in years (default 50)")
	f.StringVar(&opts.outputDir, "output-dir", "", "artifact directory (default: OUTPUT_DIR or <folder>/figures_and_tables)")
	f.BoolVar(&opts.xlsx, "xlsx", false, "also write an xlsx workbook")
	f.BoolVar(&opts.parquet, "parquet", false, "also export the harmonized series as parquet")
	cmd.MarkFlagsMutuallyExclusive("site", "name")
	cmd.MarkFlagsOneRequired("site", "name")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	site, err := resolveSite(cfg, opts)
	if err != nil {
		return err
	}

	writer := csvdir.NewWriter(cfg.OutputDir, logger)
	stages := pipeline.Stages{
		Sources:   csvdir.NewLoader(domain.DefaultPrefixRules, logger),
		Artifacts: []pipeline.ArtifactWriter{writer},
	}
	if cfg.XLSXEnabled || opts.xlsx {
		stages.Artifacts = append(stages.Artifacts, xlsx.NewWriter(cfg.OutputDir, logger))
	}
	if cfg.ParquetEnabled || opts.parquet {
		stages.Series = parquet.NewWriter(cfg.OutputDir, logger)
	}

	analyzer := pipeline.NewAnalyzer(cfg.GumbelMinYears, cfg.DirectionBinWidth, logger, metrics)
	p := pipeline.New(stages, analyzer, logger, metrics, cfg.BatchSize)

	rep, tables, err := p.RunSite(cmd.Context(), site)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rep.Empty {
		fmt.Fprintf(out, "%s: no usable source data in %s, nothing written\n", site.Name, site.Folder)
		return nil
	}
	fmt.Fprintf(out, "%s: %d sources, %d tables written to %s\n",
		site.Name, len(rep.Sources), len(tables), writer.Dir(site))
	for _, o := range rep.Outcomes {
		if o.Status == domain.StatusOK {
			continue
		}
		fmt.Fprintf(out, "  %-8s %-18s %-12s %-15s %s\n", o.Status, o.Stage, o.Source, o.Variable, o.Reason)
	}
	return nil
}

func resolveSite(cfg *config.Config, opts analyzeOptions) (domain.Site, error) {
	if opts.siteFile != "" {
		sc, err := config.LoadSite(opts.siteFile)
		if err != nil {
			return domain.Site{}, err
		}
		return sc.Site(), nil
	}

	sc, err := config.SiteFromFlags(opts.name, opts.folder, opts.meanThreshold, opts.gustThreshold, opts.returnPeriods)
	if err != nil {
		return domain.Site{}, err
	}
	if opts.folder == "" {
		sc.Folder = filepath.Join(cfg.DataDir, sc.Folder)
	}
	return sc.Site(), nil
}
