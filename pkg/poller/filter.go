package poller

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
	"github.com/trafikinfo-se/trafikinfo/pkg/util"
)

var wktNumberRegex = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
var roadPrefixRegex = regexp.MustCompile(`(?i)^(väg|vag|road)\s+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Filter applies the configured geographic and road pre-filter before any
// incident reaches the trackers. Important safety messages always pass, so a
// national warning without geometry is never dropped.
type Filter struct {
	config Config

	roadTokens []string
}

func NewFilter(config Config) *Filter {
	var tokens []string
	for _, road := range config.Roads {
		token := normalizeRoadToken(road)
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	return &Filter{
		config:     config,
		roadTokens: tokens,
	}
}

// Apply filters the incident list in place.
func (filter *Filter) Apply(incidents *[]traffic.Incident) {
	util.InPlaceFilter(incidents, filter.include)
}

func (filter *Filter) include(incident traffic.Incident) bool {
	if incident.IsImportant() {
		return true
	}

	var included bool
	if filter.config.FilterMode == FilterModeCoordinate {
		included = filter.inRadius(incident)
	} else {
		included = filter.inCounties(incident)
	}

	if !included {
		return false
	}

	return filter.roadMatch(incident)
}

func (filter *Filter) inCounties(incident traffic.Incident) bool {
	if util.ContainsString(filter.config.Counties, CountyAll) {
		return true
	}

	for _, county := range incident.CountyNumbers {
		if util.ContainsString(filter.config.Counties, fmt.Sprint(county)) {
			return true
		}
	}

	return false
}

func (filter *Filter) inRadius(incident traffic.Incident) bool {
	points := WKTPoints(incident.Geometry)
	if len(points) == 0 {
		return false
	}

	radius := math.Max(0.1, filter.config.RadiusKm)
	for _, point := range points {
		if HaversineKm(filter.config.Longitude, filter.config.Latitude, point[0], point[1]) <= radius {
			return true
		}
	}

	return false
}

func (filter *Filter) roadMatch(incident traffic.Incident) bool {
	if len(filter.roadTokens) == 0 {
		return true
	}

	roadText := strings.ToLower(fmt.Sprintf("%s %s", incident.RoadName, incident.RoadNumber))
	roadNumber := strings.ToLower(strings.TrimSpace(incident.RoadNumber))

	for _, token := range filter.roadTokens {
		if roadNumber != "" && token == roadNumber {
			return true
		}
		if strings.Contains(roadText, token) {
			return true
		}
	}

	return false
}

// Allow user friendly inputs like "Väg 163" / "Road 163".
func normalizeRoadToken(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return ""
	}

	s = roadPrefixRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Geometry points are capped so a huge LINESTRING cannot dominate a poll.
const maxGeometryPoints = 200

// WKTPoints extracts lon/lat pairs from common WKT shapes
// (POINT/LINESTRING/etc). "POINT Z" style geometries carry a third ordinate
// which is skipped.
func WKTPoints(wkt string) [][2]float64 {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil
	}

	header := strings.ToUpper(strings.SplitN(s, "(", 2)[0])
	step := 2
	if strings.Contains(header, " Z") || strings.HasSuffix(strings.TrimSpace(header), "Z") {
		step = 3
	}

	var floats []float64
	for _, match := range wktNumberRegex.FindAllString(s, -1) {
		var value float64
		if _, err := fmt.Sscanf(match, "%g", &value); err == nil {
			floats = append(floats, value)
		}
	}

	var points [][2]float64
	for i := 0; i+1 < len(floats); i += step {
		points = append(points, [2]float64{floats[i], floats[i+1]})
		if len(points) >= maxGeometryPoints {
			break
		}
	}

	return points
}

func HaversineKm(lon1 float64, lat1 float64, lon2 float64, lat2 float64) float64 {
	const earthRadiusKm = 6371.0

	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(p1)*math.Cos(p2)*math.Pow(math.Sin(dlon/2), 2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// DistanceKm computes the minimum distance from the reference point to any
// point of the incident geometry. Recomputed every poll; never part of
// change detection.
func DistanceKm(incident *traffic.Incident, latitude float64, longitude float64) *float64 {
	points := WKTPoints(incident.Geometry)
	if len(points) == 0 {
		return nil
	}

	var best float64
	found := false
	for _, point := range points {
		d := HaversineKm(longitude, latitude, point[0], point[1])
		if !found || d < best {
			best = d
			found = true
		}
	}

	best = math.Round(best*100) / 100

	return &best
}
