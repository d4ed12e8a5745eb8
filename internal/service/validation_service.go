package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"surveydq/internal/catalog"
	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/port"
	"surveydq/internal/profile"
	"surveydq/internal/report"
	"surveydq/internal/tabular"
	"surveydq/internal/validator"
	"surveydq/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetProgress is reported after each data sheet finishes.
type SheetProgress struct {
	Sheet  string
	Done   int
	Total  int
	Rows   int
	Issues int
}

// ProgressFunc receives per-sheet progress. Calls are serialized.
type ProgressFunc func(SheetProgress)

// RunInput is the DTO for a validation run.
type RunInput struct {
	KeyWorkbook  io.Reader
	KeyFileName  string
	DataWorkbook io.Reader
	DataFileName string
	Country      string
	Language     string
	Progress     ProgressFunc
}

// ValidationService defines the validation run contract.
type ValidationService interface {
	Run(ctx context.Context, input RunInput) (*domain.RunResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.RunResult, error)
	List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
	ReportURL(ctx context.Context, id uuid.UUID) (string, error)
	Profile() *profile.Profile
}

// Options tunes how runs execute and where their results go.
type Options struct {
	ParallelSheets bool
	MaxWorkers     int
	PresignExpiry  int64
}

type validationService struct {
	prof     *profile.Profile
	messages i18n.Catalog
	registry *validator.Registry
	runs     port.RunRepository
	storage  port.ObjectStorage
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

// NewValidationService creates a new ValidationService. runs and storage may be
// nil, in which case history and report archiving are disabled.
func NewValidationService(
	prof *profile.Profile,
	runs port.RunRepository,
	storage port.ObjectStorage,
	opts Options,
	log *zap.Logger,
) ValidationService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &validationService{
		prof:     prof,
		messages: i18n.Default(),
		registry: validator.DefaultRegistry(),
		runs:     runs,
		storage:  storage,
		opts:     opts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *validationService) Profile() *profile.Profile { return s.prof }

func (s *validationService) Run(ctx context.Context, input RunInput) (*domain.RunResult, error) {
	country, lang, err := s.parseParams(input.Country, input.Language)
	if err != nil {
		return nil, err
	}

	run := domain.ValidationRun{
		ID:           uuid.New(),
		Country:      country,
		Language:     lang,
		KeyFileName:  input.KeyFileName,
		DataFileName: input.DataFileName,
		StartedAt:    s.now(),
	}
	log := s.log.With(zap.String("run_id", run.ID.String()))
	log.Info("validation run started",
		zap.String("country", string(country)),
		zap.String("language", string(lang)),
		zap.String("key_file", input.KeyFileName),
		zap.String("data_file", input.DataFileName))

	result, err := s.execute(ctx, &run, input, log)
	if err != nil {
		log.Warn("validation run failed", zap.Error(err))
		s.recordFailure(ctx, &run, err, log)
		return nil, err
	}
	return result, nil
}

func (s *validationService) parseParams(rawCountry, rawLang string) (domain.Country, domain.Language, error) {
	country := domain.Country(strings.ToUpper(strings.TrimSpace(rawCountry)))
	if !s.prof.SupportsCountry(country) {
		return "", "", fmt.Errorf("%w: unsupported country %q", domain.ErrInvalidRunParams, rawCountry)
	}
	lang, err := i18n.ParseLanguage(rawLang)
	if err != nil {
		return "", "", err
	}
	if !s.prof.SupportsLanguage(lang) {
		return "", "", fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidRunParams, rawLang)
	}
	return country, lang, nil
}

func (s *validationService) execute(ctx context.Context, run *domain.ValidationRun, input RunInput, log *zap.Logger) (*domain.RunResult, error) {
	schema, answers, err := s.loadCatalogs(input.KeyWorkbook, input.KeyFileName, run.Country)
	if err != nil {
		return nil, err
	}
	log.Debug("catalogs built",
		zap.Int("expected_fields", len(schema.Fields())),
		zap.Int("answer_fields", answers.Len()))

	sheets, err := s.loadSheets(input.DataWorkbook, input.DataFileName)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		log.Warn("data workbook contains none of the profile sheets", zap.Strings("sheets", s.prof.Sheets))
	}

	engine := validator.NewEngine(s.registry, schema, answers, s.prof, s.messages, run.Language)
	perSheet, err := s.validateSheets(ctx, engine, sheets, input.Progress, log)
	if err != nil {
		return nil, err
	}

	res := &domain.RunResult{Sheets: make([]domain.SheetSummary, len(sheets))}
	for i, t := range sheets {
		res.Sheets[i] = domain.SheetSummary{Name: t.Name, Rows: t.Len(), Issues: len(perSheet[i])}
		res.Issues = append(res.Issues, perSheet[i]...)
	}
	if res.Issues == nil {
		res.Issues = []domain.Issue{}
	}
	res.Groups = report.Aggregate(res.Issues, s.messages, run.Language)
	res.Clean = len(res.Issues) == 0

	run.Status = domain.RunStatusCompleted
	run.SheetCount = len(sheets)
	run.IssueCount = len(res.Issues)
	run.GroupCount = len(res.Groups)
	run.FinishedAt = s.now()
	if run.Groups, err = json.Marshal(res.Groups); err != nil {
		return nil, fmt.Errorf("marshaling groups: %w", err)
	}
	if run.Sheets, err = json.Marshal(res.Sheets); err != nil {
		return nil, fmt.Errorf("marshaling sheet summaries: %w", err)
	}
	res.Run = *run

	res.Report, err = report.RenderXLSX(res, s.messages, run.Language)
	if err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	s.archive(ctx, run, res, log)
	if err := s.persist(ctx, run, log); err != nil {
		return nil, err
	}
	res.Run = *run

	log.Info("validation run completed",
		zap.Int("sheets", run.SheetCount),
		zap.Int("issues", run.IssueCount),
		zap.Int("groups", run.GroupCount),
		zap.Duration("duration", run.FinishedAt.Sub(run.StartedAt)))
	return res, nil
}

// loadCatalogs builds the schema and answer catalogs from the key workbook.
func (s *validationService) loadCatalogs(r io.Reader, name string, country domain.Country) (*catalog.Schema, *catalog.Answers, error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w: key workbook is required", domain.ErrInvalidRunParams)
	}
	key, err := workbook.Open(r, name)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = key.Close() }()

	meta, err := key.SheetOrFirst(s.prof.SchemaSheet)
	if err != nil {
		return nil, nil, err
	}
	schema, err := catalog.BuildSchema(meta, s.prof.SchemaColumns, s.prof.UniversalMarker, country)
	if err != nil {
		return nil, nil, err
	}

	ref, err := key.Sheet(s.prof.AnswerSheet)
	if err != nil {
		return nil, nil, err
	}
	cls := catalog.NewClassifier(s.prof.RowOnlyFields, s.prof.RowOrColumnFields)
	answers, err := catalog.BuildAnswers(ref, s.prof.AnswerColumns, cls)
	if err != nil {
		return nil, nil, err
	}
	return schema, answers, nil
}

// loadSheets reads the profile's data sheets present in the workbook, in profile order.
func (s *validationService) loadSheets(r io.Reader, name string) ([]*tabular.Table, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: data workbook is required", domain.ErrInvalidRunParams)
	}
	data, err := workbook.Open(r, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = data.Close() }()

	var out []*tabular.Table
	for _, sheet := range s.prof.Sheets {
		t, err := data.Sheet(sheet)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// validateSheets runs the engine over every sheet, concurrently when enabled.
// Results are indexed like sheets so the output order never depends on scheduling.
func (s *validationService) validateSheets(
	ctx context.Context,
	engine *validator.Engine,
	sheets []*tabular.Table,
	progress ProgressFunc,
	log *zap.Logger,
) ([][]domain.Issue, error) {
	out := make([][]domain.Issue, len(sheets))
	var mu sync.Mutex
	done := 0
	finish := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		log.Info("sheet validated",
			zap.String("sheet", sheets[i].Name),
			zap.Int("rows", sheets[i].Len()),
			zap.Int("issues", len(out[i])),
			zap.Int("done", done),
			zap.Int("total", len(sheets)))
		if progress != nil {
			progress(SheetProgress{
				Sheet:  sheets[i].Name,
				Done:   done,
				Total:  len(sheets),
				Rows:   sheets[i].Len(),
				Issues: len(out[i]),
			})
		}
	}

	if !s.opts.ParallelSheets || len(sheets) < 2 {
		for i, t := range sheets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = engine.ValidateSheet(t)
			finish(i)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxWorkers)
	for i, t := range sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = engine.ValidateSheet(t)
			finish(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// archive uploads the rendered report. Failures are logged and leave the run
// without a report key; the validation result itself is still returned.
func (s *validationService) archive(ctx context.Context, run *domain.ValidationRun, res *domain.RunResult, log *zap.Logger) {
	if s.storage == nil {
		return
	}
	key := fmt.Sprintf("runs/%s/%s", run.ID, report.BuildFilename(run.DataFileName, "xlsx"))
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        bytes.NewReader(res.Report),
		ContentType: xlsxContentType,
		Size:        int64(len(res.Report)),
	})
	if err != nil {
		log.Error("report archive failed", zap.String("key", key), zap.Error(err))
		return
	}
	run.ReportKey = key

	url, err := s.storage.GetPresignedURL(ctx, key, s.opts.PresignExpiry)
	if err != nil {
		log.Warn("presigning report url failed", zap.String("key", key), zap.Error(err))
		return
	}
	res.ReportURL = url
}

// persist stores the run record. If it cannot be saved the archived report is
// removed so storage holds no orphans.
func (s *validationService) persist(ctx context.Context, run *domain.ValidationRun, log *zap.Logger) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.Error("saving run failed", zap.Error(err))
		if run.ReportKey != "" && s.storage != nil {
			if derr := s.storage.Delete(ctx, run.ReportKey); derr != nil {
				log.Warn("removing orphaned report failed", zap.String("key", run.ReportKey), zap.Error(derr))
			}
		}
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// recordFailure stores a failed run for the history; errors are only logged.
func (s *validationService) recordFailure(ctx context.Context, run *domain.ValidationRun, cause error, log *zap.Logger) {
	if s.runs == nil || ctx.Err() != nil {
		return
	}
	run.Status = domain.RunStatusFailed
	run.Error = cause.Error()
	run.FinishedAt = s.now()
	if err := s.runs.Create(ctx, run); err != nil {
		log.Warn("saving failed run", zap.Error(err))
	}
}

func (s *validationService) Get(ctx context.Context, id uuid.UUID) (*domain.RunResult, error) {
	if s.runs == nil {
		return nil, domain.ErrHistoryDisabled
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &domain.RunResult{Run: *run, Clean: run.Status == domain.RunStatusCompleted && run.IssueCount == 0}
	if len(run.Groups) > 0 {
		if err := json.Unmarshal(run.Groups, &res.Groups); err != nil {
			return nil, fmt.Errorf("unmarshaling groups: %w", err)
		}
	}
	if len(run.Sheets) > 0 {
		if err := json.Unmarshal(run.Sheets, &res.Sheets); err != nil {
			return nil, fmt.Errorf("unmarshaling sheet summaries: %w", err)
		}
	}
	if run.ReportKey != "" && s.storage != nil {
		if url, err := s.storage.GetPresignedURL(ctx, run.ReportKey, s.opts.PresignExpiry); err == nil {
			res.ReportURL = url
		}
	}
	return res, nil
}

func (s *validationService) List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	if s.runs == nil {
		return nil, 0, domain.ErrHistoryDisabled
	}
	return s.runs.List(ctx, offset, limit)
}

func (s *validationService) ReportURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.runs == nil {
		return "", domain.ErrHistoryDisabled
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if run.ReportKey == "" || s.storage == nil {
		return "", domain.ErrReportNotArchived
	}
	url, err := s.storage.GetPresignedURL(ctx, run.ReportKey, s.opts.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}
	return url, nil
}
