package ekidata2sql

import (
	"fmt"

	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
)

// ParseClipFeature parses the GeoJSON object stations are clipped to.
func ParseClipFeature(data string) (geojson.Object, error) {
	feature, err := geojson.Parse(data, &geojson.ParseOptions{RequireValid: true})
	if err != nil {
		return nil, fmt.Errorf("%w: parse clip feature: %w", ErrInput, err)
	}
	return feature, nil
}

// stationClip keeps the stations whose lon/lat lies inside feature. Stations without a
// position are outside.
type stationClip struct {
	feature geojson.Object
	lon     int
	lat     int
}

func newStationClip(feature geojson.Object, stations *Records) (*stationClip, error) {
	lon, lat := stations.index("lon"), stations.index("lat")
	if lon == -1 || lat == -1 {
		return nil, inputErrorf("%s: clipping needs lon and lat columns", stations.Path)
	}
	return &stationClip{feature: feature, lon: lon, lat: lat}, nil
}

func (c *stationClip) contains(r Record) bool {
	lng, ok := r.Values[c.lon].(float64)
	if !ok {
		return false
	}
	lat, ok := r.Values[c.lat].(float64)
	if !ok {
		return false
	}
	return c.feature.Contains(geojson.NewPoint(geometry.Point{X: lng, Y: lat}))
}
