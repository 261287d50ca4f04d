// Package report derives the chart-ready views of an enhanced collision table.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/jengzang/collision-records-go/internal/models"
	"github.com/jengzang/collision-records-go/internal/spatial"
	"github.com/jengzang/collision-records-go/internal/table"
)

// TimestampLayout is the layout of DATE_ joined to the zero-padded TIME_.
const TimestampLayout = "2006-01-02 1504"

const (
	hotspotPrecision = 6
	hotspotLimit     = 10
)

// RequiredColumns are the enhanced columns every report reads.
func RequiredColumns() []string {
	cols := []string{
		models.FieldSeverity,
		models.ColPrimeModeClass,
		models.ColAgeMinor,
		models.ColAgeWorking,
		models.ColAgeSenior,
	}
	cols = append(cols, models.RaceColumns...)
	return append(cols, models.FieldDate, models.FieldTime)
}

// Build derives severity, age, race, hourly and map views from an enhanced table.
func Build(t *table.Table) (*models.CollisionReport, error) {
	if err := t.Require(RequiredColumns()...); err != nil {
		return nil, err
	}

	r := &models.CollisionReport{Collisions: t.Len()}

	var err error
	if r.SeverityCounts, err = severityCounts(t); err != nil {
		return nil, err
	}
	if r.AgeCounts, err = ageCounts(t); err != nil {
		return nil, err
	}
	if r.RaceCounts, err = raceCounts(t); err != nil {
		return nil, err
	}
	if r.Hourly, err = hourly(t); err != nil {
		return nil, err
	}
	if r.Map, err = collisionMap(t); err != nil {
		return nil, err
	}
	return r, nil
}

// severityCounts counts CRASHSEV codes within each mode, most frequent first.
func severityCounts(t *table.Table) ([]models.SeverityCount, error) {
	modes, err := t.Column(models.ColPrimeModeClass)
	if err != nil {
		return nil, err
	}
	sev, err := t.Column(models.FieldSeverity)
	if err != nil {
		return nil, err
	}

	out := []models.SeverityCount{}
	for _, mode := range models.ModeClasses {
		counts := map[string]int{}
		for i, m := range modes {
			if m.Missing || m.Raw != string(mode) {
				continue
			}
			code, ok := table.NormalizeKey(sev[i])
			if !ok {
				continue
			}
			counts[code]++
		}

		codes := lo.Keys(counts)
		sort.Slice(codes, func(i, j int) bool {
			if counts[codes[i]] != counts[codes[j]] {
				return counts[codes[i]] > counts[codes[j]]
			}
			return codes[i] < codes[j]
		})
		for _, code := range codes {
			out = append(out, models.SeverityCount{
				Mode:     mode,
				Severity: code,
				Label:    severityLabel(code),
				Count:    counts[code],
			})
		}
	}
	return out, nil
}

func ageCounts(t *table.Table) (models.AgeCounts, error) {
	var a models.AgeCounts
	var err error
	if a.Minors, err = columnSum(t, models.ColAgeMinor); err != nil {
		return a, err
	}
	if a.Working, err = columnSum(t, models.ColAgeWorking); err != nil {
		return a, err
	}
	if a.Seniors, err = columnSum(t, models.ColAgeSenior); err != nil {
		return a, err
	}
	return a, nil
}

func raceCounts(t *table.Table) ([]models.RaceCount, error) {
	out := make([]models.RaceCount, 0, len(models.RaceColumns))
	for _, c := range models.RaceColumns {
		sum, err := columnSum(t, c)
		if err != nil {
			return nil, err
		}
		out = append(out, models.RaceCount{Column: c, Count: sum})
	}
	return out, nil
}

// hourly places every collision with a parseable timestamp and a severity in time.
func hourly(t *table.Table) (models.HourlySeries, error) {
	s := models.HourlySeries{Points: []models.TimePoint{}}

	var caseIDs []table.Value
	if t.HasColumn(models.FieldCaseID) {
		caseIDs, _ = t.Column(models.FieldCaseID)
	}
	dates, err := t.Column(models.FieldDate)
	if err != nil {
		return s, err
	}
	times, err := t.Column(models.FieldTime)
	if err != nil {
		return s, err
	}
	sev, err := t.Column(models.FieldSeverity)
	if err != nil {
		return s, err
	}

	var hours []float64
	for i := range dates {
		ts, ok := ParseTimestamp(dates[i], times[i])
		code, hasSev := table.NormalizeKey(sev[i])
		if !ok || !hasSev {
			s.Dropped++
			continue
		}
		p := models.TimePoint{Timestamp: ts, Hour: ts.Hour(), Severity: code}
		if caseIDs != nil {
			p.CaseID = caseIDs[i].String()
		}
		s.Points = append(s.Points, p)
		s.Histogram[p.Hour]++
		hours = append(hours, float64(ts.Hour())+float64(ts.Minute())/60)
	}

	s.MeanHour, s.Concentration = spatial.MeanHourOfDay(hours)
	return s, nil
}

// ParseTimestamp joins a DATE_ cell to a TIME_ cell left-padded with zeros to four
// digits. ok is false when either is missing or the result does not parse.
func ParseTimestamp(date, clock table.Value) (time.Time, bool) {
	if date.Missing || clock.Missing {
		return time.Time{}, false
	}
	hhmm := clock.Raw
	if len(hhmm) < 4 {
		hhmm = strings.Repeat("0", 4-len(hhmm)) + hhmm
	}
	ts, err := time.Parse(TimestampLayout, date.Raw+" "+hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// collisionMap places collisions with usable POINT_Y/POINT_X coordinates.
// Tables without coordinate columns yield an empty map.
func collisionMap(t *table.Table) (models.CollisionMap, error) {
	m := models.CollisionMap{Layers: []models.MapLayer{}, Hotspots: []models.Hotspot{}}
	if !t.HasColumn(models.FieldPointX) || !t.HasColumn(models.FieldPointY) {
		m.SkippedNoCoords = t.Len()
		return m, nil
	}

	xs, _ := t.Column(models.FieldPointX)
	ys, _ := t.Column(models.FieldPointY)
	sev, err := t.Column(models.FieldSeverity)
	if err != nil {
		return m, err
	}

	var points []spatial.Point
	bySeverity := map[string][]models.LatLon{}
	for i := range xs {
		lon, okX := xs[i].Float()
		lat, okY := ys[i].Float()
		p := spatial.Point{Lat: lat, Lon: lon}
		if !okX || !okY || !p.Valid() {
			m.SkippedNoCoords++
			continue
		}
		points = append(points, p)
		if code, ok := table.NormalizeKey(sev[i]); ok {
			bySeverity[code] = append(bySeverity[code], models.LatLon{Lat: lat, Lon: lon})
		}
	}
	if len(points) == 0 {
		return m, nil
	}

	c := spatial.Centroid(points)
	m.Center = models.LatLon{Lat: c.Lat, Lon: c.Lon}
	minLat, minLon, maxLat, maxLon := spatial.BoundingBox(points)
	m.Bounds = models.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	m.SpreadMeters = spatial.RadiusOfGyration(points)

	for _, s := range models.Severities {
		code := fmt.Sprint(int(s))
		if pts, ok := bySeverity[code]; ok {
			m.Layers = append(m.Layers, models.MapLayer{Severity: code, Label: s.Label(), Points: pts})
		}
	}

	m.Hotspots = lo.Map(spatial.DensestCells(points, hotspotPrecision, hotspotLimit), func(c spatial.Cell, _ int) models.Hotspot {
		lat, lon := spatial.DecodeGeohash(c.Geohash)
		return models.Hotspot{Geohash: c.Geohash, Center: models.LatLon{Lat: lat, Lon: lon}, Count: c.Count}
	})
	return m, nil
}

func columnSum(t *table.Table, column string) (float64, error) {
	values, err := t.Column(column)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, v := range values {
		if v.Missing {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return 0, &table.InvalidValueError{Table: t.Name(), Column: column, Row: i, Value: v.Raw, Reason: "not a number"}
		}
		sum += f
	}
	return sum, nil
}

func severityLabel(code string) string {
	for _, s := range models.Severities {
		if code == fmt.Sprint(int(s)) {
			return s.Label()
		}
	}
	return models.Severity(0).Label()
}
