package gpx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/planbiir/gframe/internal/track"
)

const (
	Namespace = "http://www.topografix.com/GPX/1/1"
	Creator   = "gframe"

	namespaceXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	namespaceGPXTPX = "http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
	namespaceGPXX   = "http://www.garmin.com/xmlschemas/GpxExtensions/v3"
	schemaLocation  = "http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd " +
		"http://www.garmin.com/xmlschemas/GpxExtensions/v3 http://www.garmin.com/xmlschemas/GpxExtensionsv3.xsd " +
		"http://www.garmin.com/xmlschemas/TrackPointExtension/v1 http://www.garmin.com/xmlschemas/TrackPointExtensionv1.xsd"
)

// Decimal places written for each field. 7 places of a degree is about 1cm.
const (
	coordPlaces     = 7
	elevationPlaces = 1
	headingPlaces   = 4
)

// Track flattens every trkpt of every track and segment into a single track.
// The name comes from the first named trk, or the metadata when no trk has
// one. Every point must carry a time.
func (g *GPX) Track() (track.Track, error) {
	flat := g.FlattenPoints()
	points := make([]track.Point, 0, len(flat))

	for i, p := range flat {
		if p.Time.IsZero() {
			return track.Track{}, fmt.Errorf("%w: point %d (track %d, segment %d) has no time",
				track.ErrMalformed, i, p.TrackIdx, p.SegIdx)
		}

		point := track.Point{
			Lat:  p.Lat,
			Lon:  p.Lon,
			Time: p.Time.UTC(),
		}
		if p.Elevation != nil {
			point.Elevation = *p.Elevation
		}
		if p.Heading != nil {
			point.Bearing = decimal.NewNullDecimal(*p.Heading)
		}
		points = append(points, point)
	}

	t := track.New(g.name(), points)
	if err := t.Validate(); err != nil {
		return track.Track{}, err
	}
	return t, nil
}

func (g *GPX) name() string {
	for _, trk := range g.Tracks {
		if trk.Name != "" {
			return trk.Name
		}
	}
	if g.Metadata != nil {
		return g.Metadata.Name
	}
	return ""
}

// FromTrack builds a single track, single segment GPX document. Coordinates
// are rounded to 7 decimals, elevation to 1 and headings to 4.
func FromTrack(t track.Track) *GPX {
	points := make([]Point, len(t.Points))
	for i, p := range t.Points {
		ele := p.Elevation.Round(elevationPlaces)
		points[i] = Point{
			Lat:       p.Lat.Round(coordPlaces),
			Lon:       p.Lon.Round(coordPlaces),
			Elevation: &ele,
			Time:      p.Time.UTC(),
			PtIdx:     i,
		}
		if p.Bearing.Valid {
			heading := p.Bearing.Decimal.Round(headingPlaces)
			points[i].Heading = &heading
		}
	}

	return &GPX{
		Version:     "1.1",
		Creator:     Creator,
		XMLNS:       Namespace,
		XMLNSXSI:    namespaceXSI,
		XSI:         schemaLocation,
		XMLNSGPXTPX: namespaceGPXTPX,
		XMLNSGPXX:   namespaceGPXX,
		Metadata:    &Metadata{Time: t.Time.UTC()},
		Tracks: []Track{{
			Name:     t.Name,
			Segments: []TrackSegment{{Points: points}},
		}},
	}
}

// ReadTrack parses a GPX file straight into a track.
func ReadTrack(filename string) (track.Track, error) {
	g, err := Parse(filename)
	if err != nil {
		return track.Track{}, err
	}
	t, err := g.Track()
	if err != nil {
		return track.Track{}, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

// WriteTrack writes t as a GPX file.
func WriteTrack(filename string, t track.Track) error {
	return FromTrack(t).Write(filename)
}
