// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pipeline sequences the detection stages end to end: preprocessing,
// tiled statistics, tile selection, threshold aggregation, blob sizing, DEM
// terrain derivation, fuzzy fusion, and two-level flood fill.
package pipeline

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/mlnoga/floodsar/internal/blob"
	"github.com/mlnoga/floodsar/internal/config"
	"github.com/mlnoga/floodsar/internal/dem"
	"github.com/mlnoga/floodsar/internal/errs"
	"github.com/mlnoga/floodsar/internal/flood"
	"github.com/mlnoga/floodsar/internal/fuzzy"
	"github.com/mlnoga/floodsar/internal/logging"
	"github.com/mlnoga/floodsar/internal/median"
	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/threshold"
	"github.com/mlnoga/floodsar/internal/tilestats"
)

// Processing-domain rescaling constants, per source behavior: dB values
// are known to fall in [dBMin, dBMax] and are rescaled linearly into
// [ProcMin, ProcMax] before any statistics are computed.
const (
	dBMin   = 0.0
	dBMax   = 35.0
	ProcMin = 0.0
	ProcMax = 400.0
)

// SlopeLow and SlopeHigh bound the slope fuzzy channel's Z-shape in degrees.
const (
	SlopeLow  = 0.0
	SlopeHigh = 15.0
)

// Diagnostics surfaces intermediate results useful for offline inspection
// and for the HTTP status API.
type Diagnostics struct {
	Threshold               float32
	ThresholdStdDev         float32
	NumTilesSelected        int
	NumTilesContributed     int
	MeanRawWaterBackscatter float32
	MeanWaterHeight         float32
	StdDevWaterHeight       float32
}

// Inputs bundles everything the orchestrator needs beyond Config: the raw
// input raster, its georeference, the DEM raster (already in DEM-pixel
// space), a coordinate transform from input-image pixel space to DEM-pixel
// space, the ground resolution in meters/pixel (for blob size bounds), and
// a scratch store for intermediate artifacts.
type Inputs struct {
	Image           raster.RasterReader
	DEM             raster.RasterReader
	ImageToDEM      raster.CoordTransform
	MetersPerPixel  float32
	Scratch         *raster.Store
}

// Run executes the full detection pipeline and returns the final classified
// raster plus diagnostics. ctx is checked for cancellation at each stage
// boundary.
func Run(ctx context.Context, cfg config.Config, in Inputs, logger zerolog.Logger) (*raster.ClassRaster, Diagnostics, error) {
	var diag Diagnostics

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	preprocessed, err := preprocess(in, logger)
	if err != nil {
		return nil, diag, err
	}
	if in.Scratch != nil {
		_ = raster.WriteFloatRaster(in.Scratch.Path("preprocessed_image.tif"), preprocessed)
	}

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	table := tilestats.Compute(preprocessed, cfg.TileSize, cfg.MaxThreads)
	tileStatsLogger := logging.Stage(logger, "tilestats.Compute")
	tileStatsLogger.Debug().
		Int32("rows", table.Rows).Int32("cols", table.Cols).Msg("computed tile statistics")
	if in.Scratch != nil {
		_ = raster.WriteFloatRaster(in.Scratch.Path("tile_means.tif"), tableToRaster(table.Mean, table.Valid))
		_ = raster.WriteFloatRaster(in.Scratch.Path("tile_stddevs.tif"), tableToRaster(table.StdDev, table.Valid))
	}

	selected, err := tilestats.Select(table)
	if err != nil {
		return nil, diag, err
	}
	diag.NumTilesSelected = len(selected)
	if in.Scratch != nil {
		_ = raster.WriteFloatRaster(in.Scratch.Path("initial_kept_tiles.tif"),
			tileFootprints(preprocessed.Width, preprocessed.Height, selected))
	}

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	aggResult, ok := threshold.Aggregate(preprocessed, selected, ProcMin, ProcMax)
	if !ok {
		return nil, diag, errs.New(errs.Algorithmic, "threshold.Aggregate",
			"every selected tile failed Kittler-Illingworth optimization", map[string]interface{}{
				"num_selected": len(selected),
			})
	}
	diag.Threshold = aggResult.Threshold
	diag.ThresholdStdDev = aggResult.StdDev
	diag.NumTilesContributed = aggResult.NumTiles
	if in.Scratch != nil {
		_ = raster.WriteFloatRaster(in.Scratch.Path("final_kept_tiles.tif"),
			tileFootprints(preprocessed.Width, preprocessed.Height, aggResult.ContributingROIs))
	}
	thresholdLogger := logging.Stage(logger, "threshold.Aggregate")
	thresholdLogger.Info().
		Float32("threshold", aggResult.Threshold).
		Float32("stddev", aggResult.StdDev).
		Int("num_tiles", aggResult.NumTiles).
		Msg("aggregated global threshold")

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	initialMask := classifyByThreshold(preprocessed, aggResult.Threshold)

	minBlobPixels := cfg.MinBlobSizePixels(in.MetersPerPixel)
	maxBlobPixels := cfg.MaxBlobSizePixels(in.MetersPerPixel)
	blobSizes := blob.Sizes(initialMask, cfg.TileSize, cfg.TileExpand, int32(maxBlobPixels), cfg.MaxThreads)
	if in.Scratch != nil {
		_ = raster.WriteFloatRaster(in.Scratch.Path("blob_sizes.tif"), blobSizes)
		_ = writeClassRasterScratch(in.Scratch, "initial_water_detect.tif", initialMask)
	}

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	elevationChan, slopeChan, meanWH, stddevWH, err := elevationAndSlopeChannels(in, initialMask, cfg)
	if err != nil {
		return nil, diag, err
	}
	diag.MeanWaterHeight = meanWH
	diag.StdDevWaterHeight = stddevWH

	backscatterChan, meanRawWater, err := backscatterChannel(preprocessed, initialMask, aggResult, cfg)
	if err != nil {
		return nil, diag, err
	}
	diag.MeanRawWaterBackscatter = meanRawWater
	blobChan := fuzzy.SRaster(blobSizes, minBlobPixels, maxBlobPixels)

	defuzzed := fuzzy.VetoMean(backscatterChan, elevationChan, slopeChan, blobChan)

	if err := checkCancel(ctx); err != nil {
		return nil, diag, err
	}
	final := flood.Fill(defuzzed, initialMask, cfg.TileSize, cfg.TileExpand, cfg.MaxThreads,
		cfg.FinalFloodThreshold, cfg.WaterGrowThreshold)

	final.Geo = preprocessed.Geo

	if in.Scratch != nil {
		if err := in.Scratch.Release(); err != nil {
			runLogger := logging.Stage(logger, "pipeline.Run")
			runLogger.Warn().Err(err).Msg("scratch cleanup incomplete")
		}
	}
	return final, diag, nil
}

func checkCancel(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return errs.Wrap(errs.Algorithmic, "pipeline.Run", "canceled", ctx.Err())
	default:
		return nil
	}
}

// preprocess converts DN to dB (zero-valued pixels become invalid),
// median-filters, and rescales linearly into the processing domain.
func preprocess(in Inputs, logger zerolog.Logger) (*raster.FloatRaster, error) {
	width, height := in.Image.Bounds()
	raw, err := in.Image.ReadROI(raster.ROI{X: 0, Y: 0, Width: width, Height: height})
	if err != nil {
		return nil, errs.Wrap(errs.Input, "pipeline.preprocess", "failed to read input raster", err)
	}
	if in.Image.Georef() == nil {
		return nil, errs.New(errs.Input, "pipeline.preprocess", "input raster has no georeference", nil)
	}

	dbData := make([]float32, len(raw.Data))
	dbValid := make([]bool, len(raw.Valid))
	for i, v := range raw.Data {
		if !raw.Valid[i] || v <= 0 {
			continue
		}
		dbData[i] = float32(10 * math.Log10(float64(v)))
		dbValid[i] = true
	}

	filteredData, filteredValid := median.Filter3x3(dbData, dbValid, width)

	rescaled := &raster.FloatRaster{Width: width, Height: height, Geo: in.Image.Georef(),
		Data: make([]float32, len(filteredData)), Valid: make([]bool, len(filteredValid))}
	span := float32(dBMax - dBMin)
	for i, v := range filteredData {
		if !filteredValid[i] {
			continue
		}
		rescaled.Data[i] = (v-dBMin)/span*(ProcMax-ProcMin) + ProcMin
		rescaled.Valid[i] = true
	}

	preprocessLogger := logging.Stage(logger, "pipeline.preprocess")
	preprocessLogger.Debug().
		Int32("width", width).Int32("height", height).Msg("preprocessed input raster")
	return rescaled, nil
}

// classifyByThreshold marks pixels below threshold as WATER (low SAR
// backscatter), at/above as LAND, invalid as NODATA.
func classifyByThreshold(img *raster.FloatRaster, thresh float32) *raster.ClassRaster {
	out := raster.NewClassRaster(img.Width, img.Height)
	for i, v := range img.Data {
		switch {
		case !img.Valid[i]:
			out.Data[i] = raster.NoData
		case v < thresh:
			out.Data[i] = raster.Water
		default:
			out.Data[i] = raster.Land
		}
	}
	return out
}

// backscatterChannel builds the Z-shape membership for the backscatter
// channel, anchored on the mean preprocessed backscatter value under the
// initial-threshold water mask (a below threshold) and the global threshold
// itself (b), per the split-based method: the channel falls from full water
// evidence at the water population's mean backscatter to zero evidence at
// the threshold.
func backscatterChannel(img *raster.FloatRaster, initialMask *raster.ClassRaster, agg threshold.Result, cfg config.Config) (*raster.FloatRaster, float32, error) {
	meanRawWater, _, ok := dem.MeanAndStdDevUnderMask(img, initialMask, cfg.DEMStatsSubsampleFactor)
	if !ok {
		return nil, 0, errs.New(errs.Algorithmic, "pipeline.backscatterChannel",
			"no water pixels under the initial mask to estimate mean backscatter", nil)
	}
	if meanRawWater >= agg.Threshold {
		meanRawWater = agg.Threshold - 1
	}
	return fuzzy.ZRaster(img, meanRawWater, agg.Threshold), meanRawWater, nil
}

// elevationAndSlopeChannels reprojects the DEM into image-pixel space,
// derives slope, and builds both fuzzy channels plus the water-height
// statistics used to parameterize the elevation channel.
func elevationAndSlopeChannels(in Inputs, initialMask *raster.ClassRaster, cfg config.Config) (elevation, slope *raster.FloatRaster, meanWH, stddevWH float32, err error) {
	demWidth, demHeight := in.DEM.Bounds()
	demNative, readErr := in.DEM.ReadROI(raster.ROI{X: 0, Y: 0, Width: demWidth, Height: demHeight})
	if readErr != nil {
		return nil, nil, 0, 0, errs.Wrap(errs.Input, "pipeline.elevationAndSlopeChannels", "failed to read DEM", readErr)
	}

	elevationResampled := dem.Resample(demNative, in.ImageToDEM, initialMask.Width, initialMask.Height)
	_, _, nz := dem.SurfaceNormals(demNative, 1, 1)
	slopeNative := dem.SlopeDegrees(nz)
	slopeResampled := dem.Resample(slopeNative, in.ImageToDEM, initialMask.Width, initialMask.Height)

	meanWH, stddevWH, ok := dem.MeanAndStdDevUnderMask(elevationResampled, initialMask, cfg.DEMStatsSubsampleFactor)
	if !ok {
		return nil, nil, 0, 0, errs.New(errs.Algorithmic, "pipeline.elevationAndSlopeChannels",
			"no water pixels under the initial mask to estimate water height", nil)
	}
	low := meanWH
	high := meanWH + stddevWH*(stddevWH+3.5)

	elevation = fuzzy.ZRaster(elevationResampled, low, high)
	slope = fuzzy.ZRaster(slopeResampled, SlopeLow, SlopeHigh)
	return elevation, slope, meanWH, stddevWH, nil
}

// tableToRaster flattens a per-tile statistics table into a
// (numTilesX, numTilesY) FloatRaster for scratch persistence and debug
// preview.
func tableToRaster(values [][]float32, valid [][]bool) *raster.FloatRaster {
	rows := int32(len(values))
	var cols int32
	if rows > 0 {
		cols = int32(len(values[0]))
	}
	out := raster.NewFloatRaster(cols, rows)
	for r := int32(0); r < rows; r++ {
		for c := int32(0); c < cols; c++ {
			if valid[r][c] {
				out.Set(c, r, values[r][c], true)
			}
		}
	}
	return out
}

// tileFootprints renders a full-resolution raster where pixels inside any
// of rois are marked valid=1, for debug preview of which tiles were kept
// at a given pipeline stage.
func tileFootprints(width, height int32, rois []raster.ROI) *raster.FloatRaster {
	out := raster.NewFloatRaster(width, height)
	for _, roi := range rois {
		for y := roi.Y; y < roi.Y+roi.Height; y++ {
			for x := roi.X; x < roi.X+roi.Width; x++ {
				out.Set(x, y, 1, true)
			}
		}
	}
	return out
}

func writeClassRasterScratch(store *raster.Store, name string, mask *raster.ClassRaster) error {
	asFloat := raster.NewFloatRaster(mask.Width, mask.Height)
	for i, v := range mask.Data {
		if v == raster.NoData {
			continue
		}
		asFloat.Data[i] = float32(v)
		asFloat.Valid[i] = true
	}
	return raster.WriteFloatRaster(store.Path(name), asFloat)
}
