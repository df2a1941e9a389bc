package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
)

// BurnTransformer implements Transformer: it turns one analysis request into
// a burn-severity result by compositing both epochs, differencing their NBR
// rasters, and classifying the delta.
type BurnTransformer struct {
	catalog      domain.ImageryCatalog
	water        domain.WaterProvider
	masker       domain.CloudMasker
	defaultScale domain.SeverityScale
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewTransformer creates a BurnTransformer. Pass a nil water provider to
// disable the persistent-water mask. defaultScale applies to requests that do
// not carry their own boundaries; pass the zero value to use the built-in
// scale.
func NewTransformer(catalog domain.ImageryCatalog, water domain.WaterProvider, defaultScale domain.SeverityScale, logger *slog.Logger, metrics *observability.Metrics) *BurnTransformer {
	return &BurnTransformer{
		catalog:      catalog,
		water:        water,
		masker:       domain.BitmaskCloudMasker{},
		defaultScale: defaultScale,
		logger:       logger,
		metrics:      metrics,
	}
}

func (t *BurnTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseAnalysisRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	req.Scale = t.effectiveScale(req.Scale)

	start := time.Now()
	result, err := t.analyze(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.metrics.AnalysisDuration.WithLabelValues(req.Sensor.ID).Observe(time.Since(start).Seconds())
	t.metrics.ClassifiedPixels.Add(float64(result.ValidPixels))

	t.logger.Info("analysis complete",
		"id", result.ID,
		"sensor", result.Sensor,
		"grid", fmt.Sprintf("%dx%d", result.GridWidth, result.GridHeight),
		"valid_pixels", result.ValidPixels,
		"pre_scenes", result.PreScenes,
		"post_scenes", result.PostScenes,
	)

	value, err := json.Marshal(result)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize result: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(result.ID),
		Value: value,
		Headers: map[string]string{
			"sensor":       result.Sensor,
			"processed_at": result.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// analyze runs the raster chain for one validated request. Both epoch
// composites build concurrently; the catalog and water collaborators must
// tolerate concurrent calls.
func (t *BurnTransformer) analyze(ctx context.Context, req domain.AnalysisRequest) (domain.BurnSeverityResult, error) {
	var pre, post domain.MaskedRaster
	var preScenes, postScenes int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pre, preScenes, err = t.compositeEpoch(gctx, "pre", req.Pre, req)
		return err
	})
	g.Go(func() error {
		var err error
		post, postScenes, err = t.compositeEpoch(gctx, "post", req.Post, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.BurnSeverityResult{}, err
	}

	preNBR, err := domain.NormalizedDifference(pre, req.Sensor.NIRBand, req.Sensor.SWIR2Band)
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}
	postNBR, err := domain.NormalizedDifference(post, req.Sensor.NIRBand, req.Sensor.SWIR2Band)
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}

	delta, err := domain.Difference(preNBR, postNBR, req.ScaleFactor)
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}
	classified, err := domain.Classify(delta, req.Scale)
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}

	return domain.SummarizeResult(req, preScenes, postScenes, delta, classified), nil
}

// compositeEpoch fetches one epoch's collection, masks every scene, and
// reduces the stack to a single composite.
func (t *BurnTransformer) compositeEpoch(ctx context.Context, epoch string, win domain.EpochWindow, req domain.AnalysisRequest) (domain.MaskedRaster, int, error) {
	fetchStart := time.Now()
	c, err := t.catalog.FetchCollection(ctx, req.Sensor.ID, win.Start, win.End, req.AOI)
	if err != nil {
		return domain.MaskedRaster{}, 0, fmt.Errorf("fetch %s collection: %w", epoch, err)
	}
	t.metrics.CollectionFetchDuration.WithLabelValues(epoch).Observe(time.Since(fetchStart).Seconds())

	c.Epoch = epoch
	c.Sensor = req.Sensor.ID
	c.Start, c.End = win.Start, win.End
	if c.Empty() {
		return domain.MaskedRaster{}, 0, &domain.EmptyCollectionError{
			Epoch: epoch, Sensor: req.Sensor.ID, Start: win.Start, End: win.End,
		}
	}

	seasonality, err := t.seasonality(ctx, c.Scenes[0].Grid)
	if err != nil {
		return domain.MaskedRaster{}, 0, fmt.Errorf("fetch water seasonality: %w", err)
	}

	validity := make([][]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		validity[i], err = domain.ComposeMask(s, t.masker, seasonality, req.WaterCutoff)
		if err != nil {
			return domain.MaskedRaster{}, 0, fmt.Errorf("mask scene %s: %w", s.ID, err)
		}
	}

	composite, err := domain.Mosaic(c, validity, req.AOI)
	if err != nil {
		return domain.MaskedRaster{}, 0, err
	}
	t.metrics.ScenesComposited.WithLabelValues(epoch).Observe(float64(len(c.Scenes)))

	return composite, len(c.Scenes), nil
}

func (t *BurnTransformer) seasonality(ctx context.Context, grid domain.Grid) (*domain.FloatRaster, error) {
	if t.water == nil {
		return nil, nil
	}
	return t.water.Seasonality(ctx, grid)
}

// effectiveScale substitutes the operator-configured default scale for
// requests that left the built-in default in place. Requests with explicit
// boundaries always win.
func (t *BurnTransformer) effectiveScale(requested domain.SeverityScale) domain.SeverityScale {
	if len(t.defaultScale.Boundaries) == 0 {
		return requested
	}
	def := domain.DefaultSeverityScale()
	if len(requested.Boundaries) != len(def.Boundaries) {
		return requested
	}
	for i := range requested.Boundaries {
		if requested.Boundaries[i] != def.Boundaries[i] {
			return requested
		}
	}
	return t.defaultScale
}
