// Package generator builds the tables of a report: one per value of each
// table-group variable plus a pooled rollup, each split into rows by the
// vertical-group variables and filled by the configured blocks.
package generator

import (
	"fmt"

	"autotable/adapters/ols"
	"autotable/domain/core"
	"autotable/domain/dataset"
	"autotable/domain/table"
	"autotable/domain/variable"
	"autotable/internal"
	"autotable/internal/blocks"
	"autotable/internal/grouping"
	"autotable/ports"
)

// DefaultWorksheet is the worksheet tables go to when none is named
const DefaultWorksheet = "Main"

// Options configures a Generator
type Options struct {
	Title     string
	Worksheet string
	TGroups   []string
	VGroups   []string

	// SkipPooledTable drops the unconditional table that is otherwise
	// appended after the per-tgroup tables
	SkipPooledTable bool

	// Estimator fits analysis blocks; nil uses OLS
	Estimator ports.Estimator
	Logger    *internal.Logger
}

// Generator owns one report definition over one dataset. It is not safe
// for concurrent use; run independent reports on separate generators.
type Generator struct {
	opts        Options
	frame       *dataset.Frame
	catalog     *variable.Catalog
	partitioner *grouping.Partitioner
	blocks      []table.Block
	logger      *internal.Logger
}

// New creates a generator. Grouping variables are checked against the
// frame immediately. catalog may be nil, in which case an empty one is
// created; explicit labels, types and percentiles set on it before
// Generate take precedence over inference.
func New(frame *dataset.Frame, catalog *variable.Catalog, opts Options) (*Generator, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil dataset", core.ErrConfiguration)
	}
	if catalog == nil {
		catalog = variable.NewCatalog()
	}
	if opts.Worksheet == "" {
		opts.Worksheet = DefaultWorksheet
	}
	if opts.Estimator == nil {
		opts.Estimator = ols.New()
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	opts.TGroups = append([]string(nil), opts.TGroups...)
	opts.VGroups = append([]string(nil), opts.VGroups...)

	for _, name := range opts.TGroups {
		if !frame.Has(name) {
			return nil, core.NewUnknownColumnError("table group", name)
		}
	}
	for _, name := range opts.VGroups {
		if name == table.PooledGroup {
			return nil, fmt.Errorf("%w: %q is reserved for the pooled row", core.ErrConfiguration, name)
		}
		if !frame.Has(name) {
			return nil, core.NewUnknownColumnError("vertical group", name)
		}
	}

	return &Generator{
		opts:        opts,
		frame:       frame,
		catalog:     catalog,
		partitioner: grouping.NewPartitioner(catalog),
		logger:      opts.Logger.Named("generator"),
	}, nil
}

// Catalog returns the generator's variable catalog
func (g *Generator) Catalog() *variable.Catalog {
	return g.catalog
}

// Worksheet returns the worksheet the generated tables belong to
func (g *Generator) Worksheet() string {
	return g.opts.Worksheet
}

// AddSummary appends a summary block
func (g *Generator) AddSummary(spec blocks.SummarySpec) error {
	if len(spec.Vars) == 0 {
		return fmt.Errorf("%w: summary block without variables", core.ErrConfiguration)
	}
	for _, name := range spec.Vars {
		if err := g.checkColumn("summary variable", name); err != nil {
			return err
		}
	}
	g.blocks = append(g.blocks, blocks.NewSummary(spec, g.opts.Logger))
	return nil
}

// AddAnalysis appends a regression block
func (g *Generator) AddAnalysis(spec blocks.AnalysisSpec) error {
	if spec.Y == "" {
		return fmt.Errorf("%w: analysis block without a response", core.ErrConfiguration)
	}
	if len(spec.Regressors) == 0 {
		return fmt.Errorf("%w: analysis block without regressors", core.ErrConfiguration)
	}
	if spec.CovType != "" && !spec.CovType.Valid() {
		return fmt.Errorf("%w: unknown covariance type %q", core.ErrConfiguration, spec.CovType)
	}
	if err := g.checkColumn("response", spec.Y); err != nil {
		return err
	}
	for _, name := range spec.Regressors {
		if err := g.checkColumn("regressor", name); err != nil {
			return err
		}
	}
	for _, name := range spec.Controls {
		if err := g.checkColumn("control", name); err != nil {
			return err
		}
	}
	if spec.CovType == ports.CovCluster {
		cluster, ok := spec.ClusterColumn()
		if !ok {
			return fmt.Errorf("%w: cluster covariance needs a %q keyword", core.ErrConfiguration, blocks.GroupsKwd)
		}
		if err := g.checkColumn("cluster groups", cluster); err != nil {
			return err
		}
	}
	g.blocks = append(g.blocks, blocks.NewAnalysis(spec, g.opts.Estimator, g.opts.Logger))
	return nil
}

func (g *Generator) checkColumn(role, name string) error {
	if name == blocks.ConstColumn || g.frame.Has(name) {
		return nil
	}
	return core.NewUnknownColumnError(role, name)
}

// Generate builds every table: one per value of each tgroup in
// configuration order, then the pooled table. The returned tables are
// not touched again by the generator.
func (g *Generator) Generate() ([]*table.Table, error) {
	frame, err := g.prepare()
	if err != nil {
		return nil, err
	}

	var tables []*table.Table
	for _, tg := range g.opts.TGroups {
		g.decorate(frame)
		assign, part, err := g.partitioner.Partition(frame, tg)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("table group %s", grouping.Describe(part))
		for _, v := range part.Values {
			subset := frame.Where(assign.Mask(v))
			t, err := g.buildTable(frame, subset, tg, v)
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
		}
	}
	if !g.opts.SkipPooledTable {
		t, err := g.buildTable(frame, frame, "", table.Pooled)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	g.logger.Info("generated %d table(s) for %q", len(tables), g.opts.Title)
	return tables, nil
}

// prepare returns the root frame, extended with the intercept column when
// an analysis block asks for one
func (g *Generator) prepare() (*dataset.Frame, error) {
	frame := g.frame
	needConst := false
	for _, b := range g.blocks {
		if a, ok := b.(*blocks.Analysis); ok && a.UsesConst() {
			needConst = true
		}
	}
	if needConst && !frame.Has(blocks.ConstColumn) {
		withConst, err := frame.WithColumn(blocks.ConstColumn, dataset.Constant(dataset.Number(1), frame.Len()))
		if err != nil {
			return nil, err
		}
		frame = withConst
		if info, ok := g.catalog.Lookup(blocks.ConstColumn); !ok || info.Label == "" {
			g.catalog.SetLabels(map[string]string{blocks.ConstColumn: blocks.ConstLabel})
		}
	}
	return frame, nil
}

// decorate fills in catalog attributes still unset for any column of
// root. It runs before every table so derived columns are covered.
func (g *Generator) decorate(root *dataset.Frame) {
	for _, note := range g.catalog.Decorate(root) {
		g.logger.Warn("column %s typed %s: %v", note.Variable, note.Type, note.Err)
	}
}

func (g *Generator) buildTable(root, subset *dataset.Frame, tgroup string, value table.GroupValue) (*table.Table, error) {
	g.decorate(root)
	t := &table.Table{
		Title:      g.opts.Title,
		Worksheet:  g.opts.Worksheet,
		TableGroup: tgroup,
		TableValue: value,
		Pooled:     value.Pooled,
		Rows:       subset,
		VGroups:    append([]string(nil), g.opts.VGroups...),
		Partitions: make(map[string]table.GroupPartition, len(g.opts.VGroups)),
		Labels:     g.labels(),
	}
	if t.Pooled {
		t.Subtitle = table.PooledGroup
	} else {
		t.Subtitle = fmt.Sprintf("%s: %s", g.catalog.Label(tgroup), value)
	}
	for _, b := range g.blocks {
		t.Blocks = append(t.Blocks, table.NewBlockResult(b))
	}

	for _, vg := range t.VGroups {
		assign, part, err := g.partitioner.Partition(subset, vg)
		if err != nil {
			return nil, err
		}
		g.logger.Trace("%s: vertical group %s", t.Subtitle, grouping.Describe(part))
		t.Partitions[vg] = part
		for _, v := range part.Values {
			g.fill(t, vg, v, subset.Where(assign.Mask(v)))
		}
	}
	g.fill(t, table.PooledGroup, table.Pooled, subset)
	g.logger.Debug("table %q: %d rows, %d block(s)", t.Subtitle, subset.Len(), len(t.Blocks))
	return t, nil
}

func (g *Generator) fill(t *table.Table, vgroup string, value table.GroupValue, rows *dataset.Frame) {
	for i, b := range g.blocks {
		t.Blocks[i].Set(vgroup, value, b.Compute(rows, g.catalog))
	}
}

// labels snapshots the labels of every variable a table shows
func (g *Generator) labels() map[string]string {
	out := make(map[string]string)
	add := func(names ...string) {
		for _, n := range names {
			out[n] = g.catalog.Label(n)
		}
	}
	add(g.opts.TGroups...)
	add(g.opts.VGroups...)
	for _, b := range g.blocks {
		add(b.Columns()...)
	}
	return out
}
