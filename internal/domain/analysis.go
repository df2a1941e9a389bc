package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// EpochWindow is one half-open acquisition date range [Start, End).
type EpochWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// rawAnalysisRequest is the flat JSON structure published by request
// producers.
type rawAnalysisRequest struct {
	Sensor      string       `json:"sensor"`
	PreStart    time.Time    `json:"pre_start"`
	PreEnd      time.Time    `json:"pre_end"`
	PostStart   time.Time    `json:"post_start"`
	PostEnd     time.Time    `json:"post_end"`
	AOI         [][2]float64 `json:"aoi"`
	Boundaries  []float64    `json:"boundaries,omitempty"`
	WaterCutoff *float64     `json:"water_cutoff,omitempty"`
	ScaleFactor *float64     `json:"scale_factor,omitempty"`
}

// AnalysisRequest is the validated, default-filled form of one burn-severity
// mapping job.
type AnalysisRequest struct {
	Sensor      Sensor
	Pre         EpochWindow
	Post        EpochWindow
	AOI         AreaOfInterest
	Scale       SeverityScale
	WaterCutoff float64
	ScaleFactor float64

	RawPayload []byte
}

// Default request parameters, per the standard dNBR recipe.
const (
	DefaultWaterCutoff = 10.0 // months per year of standing water
	DefaultScaleFactor = 1000.0
)

// ParseAnalysisRequest deserializes and validates a source-topic message,
// applying defaults for the optional fields. Every configuration problem is
// reported here, before any raster work begins.
func ParseAnalysisRequest(raw RawEvent) (AnalysisRequest, error) {
	var rec rawAnalysisRequest
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return AnalysisRequest{}, fmt.Errorf("parse analysis request: %w", err)
	}

	sensor, err := LookupSensor(rec.Sensor)
	if err != nil {
		return AnalysisRequest{}, err
	}

	pre := EpochWindow{Start: rec.PreStart, End: rec.PreEnd}
	post := EpochWindow{Start: rec.PostStart, End: rec.PostEnd}
	if !pre.Start.Before(pre.End) {
		return AnalysisRequest{}, invalidConfigf("pre epoch start %s is not before end %s", pre.Start, pre.End)
	}
	if !post.Start.Before(post.End) {
		return AnalysisRequest{}, invalidConfigf("post epoch start %s is not before end %s", post.Start, post.End)
	}
	if post.Start.Before(pre.End) {
		return AnalysisRequest{}, invalidConfigf("post epoch starts %s, before the pre epoch ends %s", post.Start, pre.End)
	}

	vertices := make([]Vertex, len(rec.AOI))
	for i, p := range rec.AOI {
		vertices[i] = Vertex{X: p[0], Y: p[1]}
	}
	aoi, err := NewAreaOfInterest(vertices)
	if err != nil {
		return AnalysisRequest{}, err
	}

	scale := DefaultSeverityScale()
	if len(rec.Boundaries) > 0 {
		scale = scaleForBoundaries(rec.Boundaries)
	}
	if err := scale.Validate(); err != nil {
		return AnalysisRequest{}, err
	}

	cutoff := DefaultWaterCutoff
	if rec.WaterCutoff != nil {
		cutoff = *rec.WaterCutoff
	}
	if cutoff < 0 || cutoff > 12 {
		return AnalysisRequest{}, invalidConfigf("water cutoff %v is outside 0..12 months", cutoff)
	}

	factor := DefaultScaleFactor
	if rec.ScaleFactor != nil {
		factor = *rec.ScaleFactor
	}
	if factor == 0 {
		return AnalysisRequest{}, invalidConfigf("scale factor must be non-zero")
	}

	return AnalysisRequest{
		Sensor:      sensor,
		Pre:         pre,
		Post:        post,
		AOI:         aoi,
		Scale:       scale,
		WaterCutoff: cutoff,
		ScaleFactor: factor,
		RawPayload:  raw.Value,
	}, nil
}

// scaleForBoundaries builds a scale for a caller-supplied boundary list. The
// default class labels apply only to the default boundaries; custom lists
// get positional labels.
func scaleForBoundaries(boundaries []float64) SeverityScale {
	def := DefaultSeverityScale()
	if floatsEqual(boundaries, def.Boundaries) {
		return def
	}
	classes := make([]SeverityClass, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		classes = append(classes, SeverityClass{Label: fmt.Sprintf("Class %d", i)})
	}
	return SeverityScale{Boundaries: boundaries, Classes: classes}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ID produces a deterministic identifier from the request's parameters.
// Deterministic IDs enable idempotent upserts downstream and replay safety:
// reprocessing the same request produces the same ID.
func (r AnalysisRequest) ID() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%d|%d|%d|%d|%v|%v|%g|%g",
		r.Sensor.ID,
		r.Pre.Start.Unix(), r.Pre.End.Unix(),
		r.Post.Start.Unix(), r.Post.End.Unix(),
		r.AOI.Vertices(), r.Scale.Boundaries,
		r.WaterCutoff, r.ScaleFactor)
	hash := sha256.Sum256([]byte(sb.String()))
	return "burn-" + hex.EncodeToString(hash[:8])
}

// ClassBucket is one row of the result histogram.
type ClassBucket struct {
	Class  uint8  `json:"class"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Pixels int    `json:"pixels"`
}

// BurnSeverityResult is the sink-topic summary of one completed analysis.
// The full rasters ride along in memory for export collaborators but are not
// serialized.
type BurnSeverityResult struct {
	ID          string        `json:"id"`
	Sensor      string        `json:"sensor"`
	Pre         EpochWindow   `json:"pre"`
	Post        EpochWindow   `json:"post"`
	GridWidth   int           `json:"grid_width"`
	GridHeight  int           `json:"grid_height"`
	PreScenes   int           `json:"pre_scenes"`
	PostScenes  int           `json:"post_scenes"`
	ValidPixels int           `json:"valid_pixels"`
	Buckets     []ClassBucket `json:"buckets"`
	DNBRMin     float64       `json:"dnbr_min"`
	DNBRMean    float64       `json:"dnbr_mean"`
	DNBRMax     float64       `json:"dnbr_max"`
	ProcessedAt time.Time     `json:"processed_at"`

	DNBR       FloatRaster `json:"-"`
	Classified ClassRaster `json:"-"`
}

// SummarizeResult assembles the sink summary from the pipeline outputs:
// per-class histogram in scale order, dNBR statistics over valid pixels, and
// the clockwork-backed processing timestamp.
func SummarizeResult(req AnalysisRequest, preScenes, postScenes int, dnbr FloatRaster, classified ClassRaster) BurnSeverityResult {
	hist := classified.Histogram()
	buckets := make([]ClassBucket, len(classified.Scale.Classes))
	for i, class := range classified.Scale.Classes {
		buckets[i] = ClassBucket{
			Class:  uint8(i),
			Label:  class.Label,
			Color:  class.Color,
			Pixels: hist[uint8(i)],
		}
	}

	result := BurnSeverityResult{
		ID:          req.ID(),
		Sensor:      req.Sensor.ID,
		Pre:         req.Pre,
		Post:        req.Post,
		GridWidth:   dnbr.Grid.Width,
		GridHeight:  dnbr.Grid.Height,
		PreScenes:   preScenes,
		PostScenes:  postScenes,
		ValidPixels: classified.CountValid(),
		Buckets:     buckets,
		ProcessedAt: clock.Now(),
		DNBR:        dnbr,
		Classified:  classified,
	}

	first := true
	sum := 0.0
	n := 0
	for i, valid := range dnbr.Valid {
		if !valid {
			continue
		}
		v := dnbr.Values[i]
		if first || v < result.DNBRMin {
			result.DNBRMin = v
		}
		if first || v > result.DNBRMax {
			result.DNBRMax = v
		}
		first = false
		sum += v
		n++
	}
	if n > 0 {
		result.DNBRMean = sum / float64(n)
	}
	return result
}
