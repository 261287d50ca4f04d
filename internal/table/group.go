package table

import (
	"fmt"
	"sort"

	"github.com/jengzang/collision-records-go/internal/stats"
)

// Agg pairs a column with the aggregation applied to it when rows are grouped.
type Agg struct {
	Column string
	Func   string
}

type group struct {
	key  Value
	rows []int
}

// GroupBy collapses rows sharing a key into one row per key. The result holds the
// key column followed by one column per agg, in order. Groups are sorted by key,
// numeric keys first and numerically. Rows with a missing key are dropped.
// Missing cells are skipped by every aggregation.
func (t *Table) GroupBy(key string, aggs []Agg) (*Table, error) {
	keys, err := t.Column(key)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(aggs)+1)
	columns = append(columns, key)
	sources := make([][]Value, len(aggs))
	for i, a := range aggs {
		if !stats.Known(a.Func) {
			return nil, fmt.Errorf("table %s: column %q: unknown aggregation %q", t.name, a.Column, a.Func)
		}
		col, err := t.Column(a.Column)
		if err != nil {
			return nil, err
		}
		sources[i] = col
		columns = append(columns, a.Column)
	}

	out, err := New(t.name, columns...)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	for r, k := range keys {
		norm, ok := NormalizeKey(k)
		if !ok {
			continue
		}
		g, ok := groups[norm]
		if !ok {
			g = &group{key: k}
			groups[norm] = g
		}
		g.rows = append(g.rows, r)
	}

	order := make([]string, 0, len(groups))
	for k := range groups {
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool { return lessKey(order[i], order[j]) })

	for _, k := range order {
		g := groups[k]
		row := make([]Value, 0, len(columns))
		row = append(row, g.key)
		for i, a := range aggs {
			v, err := t.reduce(a, sources[i], g.rows)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		if err := out.AddRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Table) reduce(a Agg, col []Value, rows []int) (Value, error) {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		cell := col[r]
		if cell.Missing {
			continue
		}
		if a.Func == stats.AggCount {
			values = append(values, 1)
			continue
		}
		f, ok := cell.Float()
		if !ok {
			return Value{}, &InvalidValueError{Table: t.name, Column: a.Column, Row: r, Value: cell.Raw, Reason: "not numeric"}
		}
		values = append(values, f)
	}
	result, ok, err := stats.Reduce(a.Func, values)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Missing(), nil
	}
	return Number(result), nil
}

// lessKey orders normalised keys: numbers before text, numbers numerically.
// Two integer keys are compared exactly.
func lessKey(a, b string) bool {
	if ia, ok := integerKey(a); ok {
		if ib, ok := integerKey(b); ok {
			return ia.Cmp(ib) < 0
		}
	}
	fa, aNum := Text(a).Float()
	fb, bNum := Text(b).Float()
	switch {
	case aNum && bNum && fa != fb:
		return fa < fb
	case aNum != bNum:
		return aNum
	default:
		return a < b
	}
}
