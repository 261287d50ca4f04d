// Package victims summarises SWITRS victim records per collision case.
package victims

import (
	"context"
	"fmt"

	"github.com/jengzang/collision-records-go/internal/analysis"
	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/stats"
	"github.com/jengzang/collision-records-go/internal/table"
)

// Name is the registry name of the victim aggregator.
const Name = "victims"

func init() {
	analysis.RegisterAggregator(Name, func() analysis.Aggregator { return New() })
}

// Aggregator derives victim age buckets and sex indicators and sums them per case.
type Aggregator struct {
	pivot analysis.PivotOptions
}

// New creates a victim aggregator with the default pivot options.
func New() *Aggregator {
	return &Aggregator{pivot: analysis.DefaultPivotOptions()}
}

// Name returns the registry name.
func (a *Aggregator) Name() string {
	return Name
}

// Required returns the victim columns the aggregator reads.
func (a *Aggregator) Required() []string {
	return []string{models.FieldCaseID, models.FieldVictimAge, models.FieldVictimSex}
}

// Aggregate returns one row per case with AvgVAGE (mean), the age bucket and
// MobilLimAge sums, and one F_<sex>_VSEX sum per sex code.
func (a *Aggregator) Aggregate(ctx context.Context, source *table.Table) (*table.Table, error) {
	if err := source.Require(a.Required()...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	work := source.Clone()
	if err := addAgeColumns(work); err != nil {
		return nil, err
	}

	_, sexAggs, err := analysis.IndicatorPivot(work, models.FieldVictimSex, a.pivot)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggs := []table.Agg{
		{Column: models.ColAvgVictimAge, Func: stats.AggMean},
		{Column: models.ColAgeMinor, Func: stats.AggSum},
		{Column: models.ColAgeWorking, Func: stats.AggSum},
		{Column: models.ColAgeSenior, Func: stats.AggSum},
		{Column: models.ColMobilityLimAge, Func: stats.AggSum},
	}
	aggs = append(aggs, sexAggs...)

	out, err := work.GroupBy(models.FieldCaseID, aggs)
	if err != nil {
		return nil, fmt.Errorf("failed to group victims: %w", err)
	}
	return out, nil
}

// addAgeColumns appends AvgVAGE, the three mutually exclusive age buckets and the
// mobility-limited flag (minor or senior). Rows without an age get no flags.
func addAgeColumns(t *table.Table) error {
	ages, err := t.Column(models.FieldVictimAge)
	if err != nil {
		return err
	}

	n := len(ages)
	minor := make([]table.Value, n)
	working := make([]table.Value, n)
	senior := make([]table.Value, n)
	mobility := make([]table.Value, n)

	for i, v := range ages {
		if v.Missing {
			minor[i], working[i], senior[i], mobility[i] = table.Missing(), table.Missing(), table.Missing(), table.Missing()
			continue
		}
		age, ok := v.Float()
		if !ok {
			return &table.InvalidValueError{Table: t.Name(), Column: models.FieldVictimAge, Row: i, Value: v.Raw, Reason: "age is not numeric"}
		}
		minor[i] = analysis.Flag(age < models.MinorAgeLimit)
		working[i] = analysis.Flag(age >= models.MinorAgeLimit && age < models.SeniorAgeLimit)
		senior[i] = analysis.Flag(age >= models.SeniorAgeLimit)
		if age < models.MinorAgeLimit {
			mobility[i] = analysis.Flag(true)
		} else {
			mobility[i] = senior[i]
		}
	}

	columns := []struct {
		name   string
		values []table.Value
	}{
		{models.ColAvgVictimAge, ages},
		{models.ColAgeMinor, minor},
		{models.ColAgeWorking, working},
		{models.ColAgeSenior, senior},
		{models.ColMobilityLimAge, mobility},
	}
	for _, c := range columns {
		if err := t.SetColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}
