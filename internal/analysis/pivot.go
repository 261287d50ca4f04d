package analysis

import (
	"fmt"
	"unicode"

	"github.com/samber/lo"

	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/stats"
	"github.com/jengzang/collision-records-go/internal/table"
)

// MissingToken names the indicator generated for missing values when they are kept.
const MissingToken = "nan"

// PivotOptions controls IndicatorPivot.
type PivotOptions struct {
	// IgnoreNA skips missing values instead of giving them an indicator column.
	IgnoreNA bool
	// StatsType is the aggregation tag attached to every generated column.
	StatsType string
	// Prefix starts every generated column name.
	Prefix string
}

// DefaultPivotOptions ignores missing values and tags columns for summing.
func DefaultPivotOptions() PivotOptions {
	return PivotOptions{
		IgnoreNA:  true,
		StatsType: stats.AggSum,
		Prefix:    models.IndicatorPrefix,
	}
}

// IndicatorName returns the generated column name for value in column.
func IndicatorName(prefix, value, column string) string {
	return prefix + value + "_" + column
}

// IndicatorPivot adds one indicator column to t for every distinct value of column
// that contains a letter or digit, in order of first appearance. A row holds 1 in
// the column matching its value and is missing in every other one. The returned
// aggregations tag each generated column with opts.StatsType.
func IndicatorPivot(t *table.Table, column string, opts PivotOptions) (*table.Table, []table.Agg, error) {
	if !stats.Known(opts.StatsType) {
		return nil, nil, fmt.Errorf("pivot %s.%s: unknown aggregation %q", t.Name(), column, opts.StatsType)
	}
	values, err := t.Column(column)
	if err != nil {
		return nil, nil, err
	}

	present := lo.FilterMap(values, func(v table.Value, _ int) (string, bool) {
		return v.Raw, !v.Missing
	})
	distinct := lo.Filter(lo.Uniq(present), func(s string, _ int) bool {
		return hasAlnum(s)
	})
	hasMissing := lo.ContainsBy(values, func(v table.Value) bool { return v.Missing })

	var aggs []table.Agg
	for _, value := range distinct {
		name := IndicatorName(opts.Prefix, value, column)
		flags := lo.Map(values, func(v table.Value, _ int) table.Value {
			return Flag(!v.Missing && v.Raw == value)
		})
		if err := t.AddColumn(name, flags); err != nil {
			return nil, nil, fmt.Errorf("pivot %s.%s: %w", t.Name(), column, err)
		}
		aggs = append(aggs, table.Agg{Column: name, Func: opts.StatsType})
	}

	if !opts.IgnoreNA && hasMissing {
		name := IndicatorName(opts.Prefix, MissingToken, column)
		flags := lo.Map(values, func(v table.Value, _ int) table.Value {
			return Flag(v.Missing)
		})
		if err := t.AddColumn(name, flags); err != nil {
			return nil, nil, fmt.Errorf("pivot %s.%s: %w", t.Name(), column, err)
		}
		aggs = append(aggs, table.Agg{Column: name, Func: opts.StatsType})
	}

	return t, aggs, nil
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
