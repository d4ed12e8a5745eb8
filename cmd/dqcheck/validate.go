package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveydq/internal/config"
	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/logger"
	"surveydq/internal/profile"
	"surveydq/internal/report"
	"surveydq/internal/service"
)

type validateOptions struct {
	keyPath      string
	dataPath     string
	country      string
	lang         string
	outPath      string
	csvPath      string
	profilePath  string
	failOnIssues bool
	parallel     bool
	verbose      bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a data workbook against a key workbook",
		Long: `Reads the schema and answer sheets of the key workbook, validates every survey sheet
of the data workbook and writes an Excel report. Country and language default to
SURVEYDQ_VALIDATION_DEFAULT_COUNTRY and SURVEYDQ_VALIDATION_DEFAULT_LANGUAGE.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.keyPath, "key", "k", "", "Path to the key workbook (schema and answer sheets)")
	f.StringVarP(&opts.dataPath, "data", "d", "", "Path to the data workbook")
	f.StringVarP(&opts.country, "country", "c", "", "Country code (GHA, CIV)")
	f.StringVarP(&opts.lang, "lang", "l", "", "Report language (EN, FR)")
	f.StringVarP(&opts.outPath, "out", "o", "", "Excel report path (default dq_<data>_<date>.xlsx next to the data workbook)")
	f.StringVar(&opts.csvPath, "csv", "", "Also write the issue listing as CSV to this path")
	f.StringVar(&opts.profilePath, "profile", "", "Survey profile YAML (defaults to the built-in profile)")
	f.BoolVar(&opts.failOnIssues, "fail-on-issues", false, "Exit with status 2 when any issue is found")
	f.BoolVar(&opts.parallel, "parallel", false, "Validate sheets concurrently")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress details")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	prof := profile.Default()
	profilePath := firstNonEmpty(opts.profilePath, cfg.Validation.ProfilePath)
	if profilePath != "" {
		if prof, err = profile.Load(profilePath); err != nil {
			return err
		}
	}

	keyFile, err := os.Open(opts.keyPath)
	if err != nil {
		return fmt.Errorf("opening key workbook: %w", err)
	}
	defer func() { _ = keyFile.Close() }()
	dataFile, err := os.Open(opts.dataPath)
	if err != nil {
		return fmt.Errorf("opening data workbook: %w", err)
	}
	defer func() { _ = dataFile.Close() }()

	svc := service.NewValidationService(prof, nil, nil, service.Options{
		ParallelSheets: opts.parallel || cfg.Validation.ParallelSheets,
		MaxWorkers:     cfg.Validation.MaxWorkers,
	}, zlog)

	out := cmd.OutOrStdout()
	res, err := svc.Run(cmd.Context(), service.RunInput{
		KeyWorkbook:  keyFile,
		KeyFileName:  filepath.Base(opts.keyPath),
		DataWorkbook: dataFile,
		DataFileName: filepath.Base(opts.dataPath),
		Country:      firstNonEmpty(opts.country, cfg.Validation.DefaultCountry),
		Language:     firstNonEmpty(opts.lang, cfg.Validation.DefaultLanguage),
		Progress: func(p service.SheetProgress) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %d rows, %d issues\n", p.Done, p.Total, p.Sheet, p.Rows, p.Issues)
		},
	})
	if err != nil {
		return err
	}

	outPath := opts.outPath
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(opts.dataPath), report.BuildFilename(filepath.Base(opts.dataPath), "xlsx"))
	}
	if err := os.WriteFile(outPath, res.Report, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	zlog.Debug("report written", zap.String("path", outPath), zap.Int("bytes", len(res.Report)))

	if opts.csvPath != "" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, res.Issues); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		if err := os.WriteFile(opts.csvPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	printSummary(out, res)
	fmt.Fprintf(out, "Report: %s\n", outPath)

	if opts.failOnIssues && !res.Clean {
		return errIssuesFound
	}
	return nil
}

func printSummary(w io.Writer, res *domain.RunResult) {
	if res.Clean {
		fmt.Fprintln(w, i18n.Default().Render(i18n.MsgNoIssues, res.Run.Language))
		return
	}
	for _, sg := range report.BySheet(res.Groups) {
		fmt.Fprintf(w, "%s\n", sg.Sheet)
		for _, g := range sg.Groups {
			fmt.Fprintf(w, "  %s\n", report.SummaryLine(g))
		}
	}
	fmt.Fprintf(w, "%d issues in %d groups across %d sheets\n", len(res.Issues), len(res.Groups), len(res.Sheets))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
