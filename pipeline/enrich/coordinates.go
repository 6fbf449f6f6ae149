package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"

	"spots-backend/lib/restyutil"
	"spots-backend/lib/telemetry"
	"spots-backend/pipeline/schedule"
)

var tracer = otel.Tracer("pipeline/enrich")

// The campus map is published as a GeoJSON FeatureCollection with one
// point feature per building, keyed by the building code in
// properties.name.
type geoJSON struct {
	Features []struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// CoordinatesFromGeoJSON indexes point features by building code.
// Features without a name or with fewer than two coordinate values are
// skipped. GeoJSON stores [longitude, latitude].
func CoordinatesFromGeoJSON(data []byte) (map[string]schedule.Coordinates, error) {
	var parsed geoJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	coords := map[string]schedule.Coordinates{}
	for _, feature := range parsed.Features {
		name := feature.Properties.Name
		if name == "" || len(feature.Geometry.Coordinates) < 2 {
			continue
		}
		coords[name] = schedule.Coordinates{
			Longitude: feature.Geometry.Coordinates[0],
			Latitude:  feature.Geometry.Coordinates[1],
		}
	}
	return coords, nil
}

// LoadGeoJSON reads a campus map from disk.
func LoadGeoJSON(path string) (map[string]schedule.Coordinates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return CoordinatesFromGeoJSON(data)
}

// FetchGeoJSON downloads the campus map. The map endpoint sits behind
// Cloudflare, same as the portal. debug may be nil; when set, request
// and response dumps land there.
func FetchGeoJSON(ctx context.Context, url string, debug restyutil.InstrumentOutput) (map[string]schedule.Coordinates, error) {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	if debug != nil {
		restyutil.InstrumentClient(client, tracer, debug)
	} else {
		telemetry.InstrumentResty(client, "pipeline/enrich")
	}

	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching geojson: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("fetching geojson: status %d", res.StatusCode())
	}
	return CoordinatesFromGeoJSON(res.Body())
}

// ApplyCoordinates merges coordinates into the document in place and
// reports buildings the campus map does not know. For each missing
// building the nearest map key is logged, since misses are usually a
// code spelled slightly differently on the map.
func ApplyCoordinates(ctx context.Context, doc *schedule.BuildingDocument, coords map[string]schedule.Coordinates) Report {
	ctx, span := tracer.Start(ctx, "ApplyCoordinates")
	defer span.End()

	var report Report

	for _, code := range sortedCodes(doc.Buildings) {
		c, ok := coords[code]
		if !ok {
			report.Missing = append(report.Missing, code)
			if suggestion := nearestKey(code, coords); suggestion != "" {
				slog.WarnContext(ctx, "building missing from campus map",
					"building", code,
					"closest_match", suggestion,
				)
			} else {
				slog.WarnContext(ctx, "building missing from campus map", "building", code)
			}
			continue
		}
		doc.Buildings[code].Coordinates = &schedule.Coordinates{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		}
		report.Updated++
	}

	return report
}

func nearestKey(code string, coords map[string]schedule.Coordinates) string {
	best := ""
	bestScore := 0.0
	for key := range coords {
		score := matchr.JaroWinkler(code, key, false)
		if score > bestScore {
			best = key
			bestScore = score
		}
	}
	if bestScore < 0.75 {
		return ""
	}
	return best
}
