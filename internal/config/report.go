package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"autotable/domain/core"
	"autotable/domain/variable"
	"autotable/internal/blocks"
	"autotable/internal/errors"
	"autotable/internal/generator"
	"autotable/ports"
)

// ReportFile is a YAML document holding one or more report definitions
type ReportFile struct {
	Reports []Report `yaml:"reports" validate:"required,min=1,unique=Name,dive"`
}

// Report defines one generator run: where the data comes from, how it is
// grouped, and which blocks fill the tables
type Report struct {
	Name string `yaml:"name" validate:"required"`
	// Data is a CSV or XLSX path; Query is a table name or SELECT run
	// against the configured database. Exactly one is set.
	Data  string `yaml:"data" validate:"required_without=Query,excluded_with=Query"`
	Query string `yaml:"query" validate:"required_without=Data"`

	Title       string   `yaml:"title"`
	Output      string   `yaml:"output"`
	Worksheet   string   `yaml:"worksheet" validate:"max=31"`
	TGroups     []string `yaml:"tgroups"`
	VGroups     []string `yaml:"vgroups"`
	PooledTable *bool    `yaml:"pooled_table"`

	Labels       map[string]string    `yaml:"labels"`
	Types        map[string]string    `yaml:"types" validate:"dive,oneof=unary binary ordered numeric category"`
	GroupPctiles map[string][]float64 `yaml:"group_pctiles"`
	CellPctiles  map[string][]float64 `yaml:"cell_pctiles"`

	Blocks []BlockDef `yaml:"blocks" validate:"required,min=1,dive"`
}

// BlockDef holds exactly one of Summary and Analysis
type BlockDef struct {
	Summary  *SummaryDef  `yaml:"summary"`
	Analysis *AnalysisDef `yaml:"analysis"`
}

// SummaryDef configures a summary block
type SummaryDef struct {
	Title string   `yaml:"title"`
	Vars  []string `yaml:"vars" validate:"required,min=1"`
}

// AnalysisDef configures a regression block. Const defaults to true.
type AnalysisDef struct {
	Title      string            `yaml:"title"`
	Y          string            `yaml:"y" validate:"required"`
	Regressors []string          `yaml:"regressors" validate:"required,min=1"`
	Controls   []string          `yaml:"controls"`
	CovType    string            `yaml:"cov_type" validate:"omitempty,oneof=nonrobust HC0 HC1 cluster"`
	CovKwds    map[string]string `yaml:"cov_kwds"`
	Const      *bool             `yaml:"const"`
}

// LoadReports reads and validates a report definition file. Unknown keys
// are rejected so typos surface as errors.
func LoadReports(path string) (*ReportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read report file %s", path)
	}
	return ParseReports(data)
}

// ParseReports decodes and validates report definitions
func ParseReports(data []byte) (*ReportFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var rf ReportFile
	if err := dec.Decode(&rf); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse report file")
	}
	if err := validate.Struct(&rf); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "report validation failed")
	}
	for _, r := range rf.Reports {
		for i, b := range r.Blocks {
			if (b.Summary == nil) == (b.Analysis == nil) {
				return nil, errors.ConfigInvalid(fmt.Sprintf("report %s block %d: set exactly one of summary and analysis", r.Name, i+1))
			}
		}
	}
	return &rf, nil
}

// Catalog builds the variable catalog holding the report's explicit
// labels, types and percentiles on top of the given defaults
func (r *Report) Catalog(defaultPctiles []float64) (*variable.Catalog, error) {
	c := variable.NewCatalog()
	if len(defaultPctiles) > 0 {
		if err := c.SetDefaultPctiles(defaultPctiles); err != nil {
			return nil, err
		}
	}
	c.SetLabels(r.Labels)
	types := make(map[string]variable.Type, len(r.Types))
	for name, s := range r.Types {
		t, err := variable.ParseType(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
		}
		types[name] = t
	}
	c.SetTypes(types)
	if err := c.SetGroupPctiles(r.GroupPctiles); err != nil {
		return nil, err
	}
	if err := c.SetCellPctiles(r.CellPctiles); err != nil {
		return nil, err
	}
	return c, nil
}

// Options converts the grouping settings into generator options
func (r *Report) Options(defaultWorksheet string) generator.Options {
	opts := generator.Options{
		Title:     r.Title,
		Worksheet: r.Worksheet,
		TGroups:   r.TGroups,
		VGroups:   r.VGroups,
	}
	if opts.Title == "" {
		opts.Title = r.Name
	}
	if opts.Worksheet == "" {
		opts.Worksheet = defaultWorksheet
	}
	if r.PooledTable != nil && !*r.PooledTable {
		opts.SkipPooledTable = true
	}
	return opts
}

// Apply adds the report's blocks to g in order
func (r *Report) Apply(g *generator.Generator) error {
	for i, b := range r.Blocks {
		var err error
		switch {
		case b.Summary != nil:
			err = g.AddSummary(blocks.SummarySpec{Title: b.Summary.Title, Vars: b.Summary.Vars})
		case b.Analysis != nil:
			err = g.AddAnalysis(b.Analysis.Spec())
		}
		if err != nil {
			return fmt.Errorf("report %s block %d: %w", r.Name, i+1, err)
		}
	}
	return nil
}

// Spec converts the definition into a block spec
func (a *AnalysisDef) Spec() blocks.AnalysisSpec {
	spec := blocks.AnalysisSpec{
		Title:      a.Title,
		Y:          a.Y,
		Regressors: a.Regressors,
		Controls:   a.Controls,
		CovType:    ports.CovType(a.CovType),
		CovKwds:    a.CovKwds,
		Const:      true,
	}
	if a.Const != nil {
		spec.Const = *a.Const
	}
	return spec
}

// Hash fingerprints the definition for the workbook properties
func (r *Report) Hash() core.Hash {
	encoded, err := yaml.Marshal(r)
	if err != nil {
		return core.NewHash([]byte(r.Name))
	}
	return core.ComputeConfigHash(map[string]interface{}{
		"name":       r.Name,
		"definition": string(encoded),
	})
}
