package spatial

import (
	"sort"
	"strings"
)

// Base32 encoding for geohash
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes latitude and longitude into a geohash string
// precision: number of characters in the geohash (1-12)
func EncodeGeohash(lat, lon float64, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	latRange := []float64{-90.0, 90.0}
	lonRange := []float64{-180.0, 180.0}

	geohash := make([]byte, 0, precision)
	bits := 0
	bit := 0
	ch := 0

	for len(geohash) < precision {
		if bit%2 == 0 {
			// Longitude
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon > mid {
				ch |= (1 << (4 - bits))
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			// Latitude
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		bits++
		if bits == 5 {
			geohash = append(geohash, base32[ch])
			bits = 0
			ch = 0
		}
		bit++
	}

	return string(geohash)
}

// DecodeGeohash decodes a geohash string into latitude and longitude
// Returns center point of the geohash cell
func DecodeGeohash(geohash string) (lat, lon float64) {
	latRange := []float64{-90.0, 90.0}
	lonRange := []float64{-180.0, 180.0}

	isLon := true
	for i := 0; i < len(geohash); i++ {
		ch := geohash[i]
		idx := indexOfBase32(ch)
		if idx == -1 {
			continue
		}

		for mask := 16; mask > 0; mask >>= 1 {
			if isLon {
				mid := (lonRange[0] + lonRange[1]) / 2
				if idx&mask != 0 {
					lonRange[0] = mid
				} else {
					lonRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if idx&mask != 0 {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			isLon = !isLon
		}
	}

	lat = (latRange[0] + latRange[1]) / 2
	lon = (lonRange[0] + lonRange[1]) / 2
	return
}

// indexOfBase32 finds the index of a character in the base32 alphabet
func indexOfBase32(ch byte) int {
	return strings.IndexByte(base32, ch)
}

// Cell is a geohash cell and the number of points that fall in it
type Cell struct {
	Geohash string
	Count   int
}

// DensestCells buckets points into geohash cells of the given precision and returns
// the limit most populated cells, densest first. Ties are ordered by geohash.
// A limit of zero or less returns every cell.
func DensestCells(points []Point, precision int, limit int) []Cell {
	counts := make(map[string]int)
	for _, p := range points {
		counts[EncodeGeohash(p.Lat, p.Lon, precision)]++
	}

	cells := make([]Cell, 0, len(counts))
	for hash, n := range counts {
		cells = append(cells, Cell{Geohash: hash, Count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].Geohash < cells[j].Geohash
	})

	if limit > 0 && len(cells) > limit {
		cells = cells[:limit]
	}
	return cells
}
