package table

import (
	"fmt"
	"strings"
)

// JoinPolicy decides what happens to left rows without a matching right key.
type JoinPolicy string

const (
	// InnerJoin drops left rows that have no match.
	InnerJoin JoinPolicy = "inner"
	// LeftJoin keeps them with missing right-hand cells.
	LeftJoin JoinPolicy = "left"
)

// ParseJoinPolicy accepts "inner" or "left", case-insensitively. Empty means inner.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", InnerJoin:
		return InnerJoin, nil
	case LeftJoin:
		return LeftJoin, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownJoinPolicy)
}

// Join appends the columns of right onto left for rows whose key matches. Left row
// order is preserved; a left row matching several right rows is repeated per match.
// The right key column is not repeated, and any other column name present on both
// sides is a conflict.
func Join(left, right *Table, key string, policy JoinPolicy) (*Table, error) {
	if policy != InnerJoin && policy != LeftJoin {
		return nil, fmt.Errorf("join %s with %s: %q: %w", left.name, right.name, policy, ErrUnknownJoinPolicy)
	}
	leftKeys, err := left.Column(key)
	if err != nil {
		return nil, err
	}
	rightKeys, err := right.Column(key)
	if err != nil {
		return nil, err
	}

	var extra []int
	columns := left.Columns()
	for i, c := range right.columns {
		if c == key {
			continue
		}
		if left.HasColumn(c) {
			return nil, fmt.Errorf("join %s with %s: column %q: %w", left.name, right.name, c, ErrColumnConflict)
		}
		extra = append(extra, i)
		columns = append(columns, c)
	}

	out, err := New(left.name, columns...)
	if err != nil {
		return nil, err
	}

	matches := make(map[string][]int, right.rows)
	for r, k := range rightKeys {
		if norm, ok := NormalizeKey(k); ok {
			matches[norm] = append(matches[norm], r)
		}
	}

	for r, k := range leftKeys {
		var hits []int
		if norm, ok := NormalizeKey(k); ok {
			hits = matches[norm]
		}
		if len(hits) == 0 {
			if policy == InnerJoin {
				continue
			}
			row := left.Row(r)
			for range extra {
				row = append(row, Missing())
			}
			if err := out.AddRow(row); err != nil {
				return nil, err
			}
			continue
		}
		for _, h := range hits {
			row := left.Row(r)
			for _, c := range extra {
				row = append(row, right.cells[c][h])
			}
			if err := out.AddRow(row); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
