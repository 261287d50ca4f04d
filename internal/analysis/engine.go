package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/jengzang/collision-records-go/internal/table"
)

// Aggregator is the interface every per-case summary must implement
type Aggregator interface {
	// Name returns the registry name of the aggregator
	Name() string

	// Required returns the columns the source table must carry
	Required() []string

	// Aggregate derives indicator columns from the source table and collapses it
	// to one row per case identifier. The source table is not modified.
	Aggregate(ctx context.Context, source *table.Table) (*table.Table, error)
}

// Progress describes one completed pipeline stage
type Progress struct {
	Stage   string // read, aggregate, join, classify, write, persist
	Table   string // table the stage worked on
	Rows    int    // rows produced by the stage
	Message string
}

// ProgressFunc receives stage updates while a pipeline runs
type ProgressFunc func(Progress)

// AggregatorFactory is a function that creates an aggregator instance
type AggregatorFactory func() Aggregator

// AggregatorRegistry maps aggregator names to factories
var AggregatorRegistry = make(map[string]AggregatorFactory)

// RegisterAggregator registers an aggregator factory under name
func RegisterAggregator(name string, factory AggregatorFactory) {
	AggregatorRegistry[name] = factory
}

// GetAggregator returns a new aggregator instance for name
func GetAggregator(name string) (Aggregator, error) {
	factory, ok := AggregatorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("aggregator %q is not registered", name)
	}
	return factory(), nil
}

// RegisteredAggregators returns the registered names in sorted order
func RegisteredAggregators() []string {
	names := make([]string, 0, len(AggregatorRegistry))
	for name := range AggregatorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flag returns the indicator cell: 1 when set, missing otherwise.
func Flag(set bool) table.Value {
	if set {
		return table.Text("1")
	}
	return table.Missing()
}
