// Package testkit generates synthetic datasets for tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"

	"autotable/domain/dataset"
)

// SurveyConfig configures the synthetic trial survey
type SurveyConfig struct {
	Participants int
	Sites        []string
	Arms         []string
	// Effect is added to the outcome of the second arm
	Effect float64
	// MissingRate is the share of ages left blank
	MissingRate float64
	Seed        int64
}

// DefaultSurveyConfig returns a small two-arm, three-site survey
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Participants: 120,
		Sites:        []string{"north", "south", "west"},
		Arms:         []string{"control", "treat"},
		Effect:       2.0,
		MissingRate:  0.05,
		Seed:         42,
	}
}

// SurveyColumns lists the generated columns in order
var SurveyColumns = []string{"id", "arm", "site", "sex", "age", "score", "treated", "outcome"}

// SurveyGenerator produces deterministic participant records
type SurveyGenerator struct {
	config SurveyConfig
	rng    *rand.Rand
}

// NewSurveyGenerator creates a generator seeded from config
func NewSurveyGenerator(config SurveyConfig) *SurveyGenerator {
	return &SurveyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Records returns the raw string records, header first
func (g *SurveyGenerator) Records() [][]string {
	records := [][]string{append([]string(nil), SurveyColumns...)}
	for i := 0; i < g.config.Participants; i++ {
		armIdx := i % len(g.config.Arms)
		site := g.config.Sites[g.rng.Intn(len(g.config.Sites))]
		sex := "F"
		if g.rng.Float64() < 0.5 {
			sex = "M"
		}
		age := 18 + g.rng.Intn(60)
		score := 1 + g.rng.Intn(5)
		outcome := 10 + 0.1*float64(age) + g.config.Effect*float64(armIdx) + g.rng.NormFloat64()

		ageText := fmt.Sprintf("%d", age)
		if g.rng.Float64() < g.config.MissingRate {
			ageText = ""
		}
		records = append(records, []string{
			fmt.Sprintf("p%04d", i+1),
			g.config.Arms[armIdx],
			site,
			sex,
			ageText,
			fmt.Sprintf("%d", score),
			fmt.Sprintf("%d", armIdx),
			fmt.Sprintf("%.4f", outcome),
		})
	}
	return records
}

// Frame returns the survey as a dataset
func (g *SurveyGenerator) Frame() (*dataset.Frame, error) {
	records := g.Records()
	return dataset.FromRecords(records[0], records[1:])
}

// WriteCSV writes the survey to path
func (g *SurveyGenerator) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(g.Records()); err != nil {
		return fmt.Errorf("failed to write survey csv: %w", err)
	}
	return nil
}

// Linear returns a frame with y = intercept + slope*x + noise for x = 1..n
func Linear(n int, intercept, slope, noise float64, seed int64) *dataset.Frame {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]dataset.Value, n)
	ys := make([]dataset.Value, n)
	for i := 0; i < n; i++ {
		x := float64(i + 1)
		xs[i] = dataset.Number(x)
		ys[i] = dataset.Number(intercept + slope*x + noise*rng.NormFloat64())
	}
	f, err := dataset.New([]string{"x", "y"}, [][]dataset.Value{xs, ys})
	if err != nil {
		panic(err)
	}
	return f
}
