package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"autotable/adapters/excel"
	"autotable/adapters/markdown"
	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
	"autotable/internal"
	"autotable/internal/config"
	"autotable/internal/errors"
	"autotable/internal/generator"
	"autotable/ports"
)

// ReportDeps wires the report service. Database may be nil when no report
// uses a query source.
type ReportDeps struct {
	Files     ports.DataSource
	Database  ports.DataSource
	Estimator ports.Estimator
	Logger    *internal.Logger
	// BaseDir resolves relative data paths
	BaseDir string
}

// ReportService runs report definitions end to end: load data, generate
// tables, write the workbook and previews
type ReportService struct {
	cfg  *config.Config
	deps ReportDeps
	log  *internal.Logger
}

// ReportResult describes the files written for one report
type ReportResult struct {
	Name     string
	RunID    core.RunID
	Tables   int
	Workbook string
	Markdown string
	HTML     string
}

func NewReportService(cfg *config.Config, deps ReportDeps) *ReportService {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	return &ReportService{
		cfg:  cfg,
		deps: deps,
		log:  deps.Logger.Named("reports"),
	}
}

// Run executes the reports concurrently, at most MaxParallel at a time.
// Reports that resolve to the same file are rendered into one workbook in
// input order, so their worksheets stack instead of overwriting each
// other. Results keep the input order. The first failure cancels the rest.
func (s *ReportService) Run(ctx context.Context, reports []config.Report) ([]ReportResult, error) {
	var files []string
	members := make(map[string][]int)
	for i := range reports {
		name := s.fileName(&reports[i], len(reports))
		if _, ok := members[name]; !ok {
			files = append(files, name)
		}
		members[name] = append(members[name], i)
	}

	results := make([]ReportResult, len(reports))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.MaxParallel, 1))
	for _, name := range files {
		idx := members[name]
		g.Go(func() error {
			group := make([]*config.Report, len(idx))
			for j, i := range idx {
				group[j] = &reports[i]
			}
			res, err := s.runFile(ctx, name, group)
			if err != nil {
				return err
			}
			for j, i := range idx {
				results[i] = res[j]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ReportService) fileName(r *config.Report, total int) string {
	switch {
	case r.Output != "":
		return r.Output
	case total == 1:
		return s.cfg.FileName
	default:
		return s.cfg.FileName + "_" + r.Name
	}
}

// RunReport executes one report and writes its outputs under OutputDir
func (s *ReportService) RunReport(ctx context.Context, r *config.Report, fileName string) (ReportResult, error) {
	res, err := s.runFile(ctx, fileName, []*config.Report{r})
	if err != nil {
		return ReportResult{Name: r.Name}, err
	}
	return res[0], nil
}

// runFile generates every report of one output file and writes the
// workbook and previews once
func (s *ReportService) runFile(ctx context.Context, fileName string, reports []*config.Report) ([]ReportResult, error) {
	results := make([]ReportResult, len(reports))
	var all []*table.Table
	hashes := make(map[string]interface{}, len(reports))
	for i, r := range reports {
		tables, err := s.generate(ctx, r)
		if err != nil {
			return nil, errors.Wrapf(err, "report %s", r.Name)
		}
		results[i] = ReportResult{Name: r.Name, Tables: len(tables)}
		all = append(all, tables...)
		hashes[r.Name] = r.Hash().String()
	}

	title := reports[0].Options(s.cfg.Worksheet).Title
	hash := reports[0].Hash()
	if len(reports) > 1 {
		hash = core.ComputeConfigHash(hashes)
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", s.cfg.OutputDir)
	}
	writer, err := excel.NewWriter(excel.WriterConfig{
		FileName:   fileName,
		Title:      title,
		ConfigHash: hash,
	}, s.deps.Logger)
	if err != nil {
		return nil, errors.RenderError("workbook", err)
	}
	defer writer.Close()
	if err := writer.Render(all); err != nil {
		return nil, errors.RenderError("workbook", err)
	}
	workbook, err := writer.Save(s.cfg.OutputDir)
	if err != nil {
		return nil, errors.RenderError("workbook", err)
	}

	var shared ReportResult
	if err := s.preview(&shared, fileName, title, all); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].RunID = writer.RunID()
		results[i].Workbook = workbook
		results[i].Markdown = shared.Markdown
		results[i].HTML = shared.HTML
		s.log.Info("report %s: %d table(s) -> %s", results[i].Name, results[i].Tables, workbook)
	}
	return results, nil
}

// generate loads the report's data and builds its tables
func (s *ReportService) generate(ctx context.Context, r *config.Report) ([]*table.Table, error) {
	frame, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	catalog, err := r.Catalog(s.cfg.Pctiles)
	if err != nil {
		return nil, errors.FromDomain(err, "invalid variable settings")
	}

	opts := r.Options(s.cfg.Worksheet)
	opts.Estimator = s.deps.Estimator
	opts.Logger = s.deps.Logger
	gen, err := generator.New(frame, catalog, opts)
	if err != nil {
		return nil, errors.FromDomain(err, "invalid grouping")
	}
	if err := r.Apply(gen); err != nil {
		return nil, errors.FromDomain(err, "invalid block")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tables, err := gen.Generate()
	if err != nil {
		return nil, errors.FromDomain(err, "generation failed")
	}
	return tables, nil
}

func (s *ReportService) preview(res *ReportResult, fileName, title string, tables []*table.Table) error {
	base := filepath.Join(s.cfg.OutputDir, fileName)

	f, err := os.Create(base + ".md")
	if err != nil {
		return errors.RenderError("markdown", err)
	}
	renderErr := markdown.NewRenderer(f).Render(tables)
	closeErr := f.Close()
	if renderErr != nil {
		return errors.RenderError("markdown", renderErr)
	}
	if closeErr != nil {
		return errors.RenderError("markdown", closeErr)
	}
	res.Markdown = base + ".md"

	if !s.cfg.HTMLPreview {
		return nil
	}
	page, err := markdown.RenderHTML(tables, title)
	if err != nil {
		return errors.RenderError("html", err)
	}
	if err := os.WriteFile(base+".html", page, 0o644); err != nil {
		return errors.RenderError("html", err)
	}
	res.HTML = base + ".html"
	return nil
}

// Infer loads the report's data and returns its catalog decorated with
// inferred labels and types. Inference notes are logged as warnings.
func (s *ReportService) Infer(ctx context.Context, r *config.Report) (*variable.Catalog, []string, error) {
	frame, err := s.load(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := r.Catalog(s.cfg.Pctiles)
	if err != nil {
		return nil, nil, errors.FromDomain(err, "invalid variable settings")
	}
	for _, note := range catalog.Decorate(frame) {
		s.log.Warn("column %s typed %s: %v", note.Variable, note.Type, note.Err)
	}
	return catalog, frame.Columns(), nil
}

func (s *ReportService) load(ctx context.Context, r *config.Report) (*dataset.Frame, error) {
	var (
		src ports.DataSource
		ref string
	)
	switch {
	case r.Data != "":
		if s.deps.Files == nil {
			return nil, errors.InternalError("no file data source configured")
		}
		src, ref = s.deps.Files, r.Data
		if !filepath.IsAbs(ref) && s.deps.BaseDir != "" {
			ref = filepath.Join(s.deps.BaseDir, ref)
		}
	case r.Query != "":
		if s.deps.Database == nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("report %s queries a database but no database_url is set", r.Name))
		}
		src, ref = s.deps.Database, r.Query
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("report %s has no data source", r.Name))
	}

	frame, err := src.Load(ctx, ref)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to load %s: %w", ref, err))
	}
	s.log.Debug("loaded %d row(s) x %d column(s) from %s", frame.Len(), len(frame.Columns()), ref)
	return frame, nil
}
