package models

import "time"

// CollisionReport holds the chart-ready tables derived from an enhanced collision table
type CollisionReport struct {
	GeneratedAt    string          `json:"generated_at"`
	Collisions     int             `json:"collisions"`
	SeverityCounts []SeverityCount `json:"severity_counts"`
	AgeCounts      AgeCounts       `json:"age_counts"`
	RaceCounts     []RaceCount     `json:"race_counts"`
	Hourly         HourlySeries    `json:"hourly"`
	Map            CollisionMap    `json:"map"`
}

// SeverityCount is the number of collisions of one severity within one mode
type SeverityCount struct {
	Mode     ModeClass `json:"mode"`
	Severity string    `json:"severity"` // raw CRASHSEV code
	Label    string    `json:"label"`
	Count    int       `json:"count"`
}

// AgeCounts totals victims per age bucket
type AgeCounts struct {
	Minors  float64 `json:"minors"`
	Working float64 `json:"working"` // 16-65
	Seniors float64 `json:"seniors"`
}

// RaceCount totals parties of one race code
type RaceCount struct {
	Column string  `json:"column"`
	Count  float64 `json:"count"`
}

// HourlySeries is the time-of-day view of collisions with a parseable timestamp
type HourlySeries struct {
	Points        []TimePoint `json:"points"`
	Histogram     [24]int     `json:"histogram"`
	MeanHour      float64     `json:"mean_hour"`     // circular mean, 0-24
	Concentration float64     `json:"concentration"` // mean resultant length, 0-1
	Dropped       int         `json:"dropped"`
}

// TimePoint is one collision placed in time
type TimePoint struct {
	CaseID    string    `json:"case_id"`
	Timestamp time.Time `json:"timestamp"`
	Hour      int       `json:"hour"`
	Severity  string    `json:"severity"`
}

// CollisionMap is the spatial view of collisions with valid coordinates
type CollisionMap struct {
	Center          LatLon     `json:"center"`
	Bounds          Bounds     `json:"bounds"`
	SpreadMeters    float64    `json:"spread_meters"` // radius of gyration around the center
	Layers          []MapLayer `json:"layers"`
	Hotspots        []Hotspot  `json:"hotspots"`
	SkippedNoCoords int        `json:"skipped_no_coords"`
}

// LatLon is a WGS84 coordinate in degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a latitude/longitude rectangle
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// MapLayer groups collision points of one severity
type MapLayer struct {
	Severity string   `json:"severity"`
	Label    string   `json:"label"`
	Points   []LatLon `json:"points"`
}

// Hotspot is a geohash cell with its collision count
type Hotspot struct {
	Geohash string `json:"geohash"`
	Center  LatLon `json:"center"`
	Count   int    `json:"count"`
}
