// Package parties summarises SWITRS party records per collision case.
package parties

import (
	"context"
	"fmt"

	"github.com/jengzang/collision-records-go/internal/analysis"
	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/table"
)

// Name is the registry name of the party aggregator.
const Name = "parties"

func init() {
	analysis.RegisterAggregator(Name, func() analysis.Aggregator { return New() })
}

// Aggregator pivots party movement, vehicle type and race codes into indicator
// counts per case.
type Aggregator struct {
	pivot analysis.PivotOptions
}

// New creates a party aggregator with the default pivot options.
func New() *Aggregator {
	return &Aggregator{pivot: analysis.DefaultPivotOptions()}
}

func (a *Aggregator) Name() string {
	return Name
}

func (a *Aggregator) Required() []string {
	return []string{models.FieldCaseID, models.FieldMovement, models.FieldVehicleType, models.FieldPartyRace}
}

// Aggregate returns one row per case with race, movement and vehicle type
// indicator sums, in that column order.
func (a *Aggregator) Aggregate(ctx context.Context, source *table.Table) (*table.Table, error) {
	if err := source.Require(a.Required()...); err != nil {
		return nil, err
	}

	work := source.Clone()
	passes := make(map[string][]table.Agg, 3)
	for _, column := range []string{models.FieldMovement, models.FieldVehicleType, models.FieldPartyRace} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, aggs, err := analysis.IndicatorPivot(work, column, a.pivot)
		if err != nil {
			return nil, err
		}
		passes[column] = aggs
	}

	var aggs []table.Agg
	aggs = append(aggs, passes[models.FieldPartyRace]...)
	aggs = append(aggs, passes[models.FieldMovement]...)
	aggs = append(aggs, passes[models.FieldVehicleType]...)

	out, err := work.GroupBy(models.FieldCaseID, aggs)
	if err != nil {
		return nil, fmt.Errorf("failed to group parties: %w", err)
	}
	return out, nil
}
