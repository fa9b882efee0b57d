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

// Package config defines the pipeline's tunable parameters and their
// defaults. Populating a Config from flags or environment variables is the
// external CLI collaborator's job; this package only owns the struct and
// the defaults.
package config

import (
	"runtime"

	"github.com/pbnjay/memory"
)

// Config enumerates every tunable of the detection pipeline.
type Config struct {
	// TileSize is the grid stride in pixels for the tiled statistics engine.
	TileSize int32 `json:"tile_size"`
	// TileExpand is the halo in pixels for blob-sizing and flood-fill tile
	// independence.
	TileExpand int32 `json:"tile_expand"`

	MinBlobSizeMeters float32 `json:"min_blob_size_meters"`
	MaxBlobSizeMeters float32 `json:"max_blob_size_meters"`

	DEMStatsSubsampleFactor int32 `json:"dem_stats_subsample_factor"`

	FinalFloodThreshold float32 `json:"final_flood_threshold"`
	WaterGrowThreshold  float32 `json:"water_grow_threshold"`

	// MinPercentValid, TileStdDevPercentileCutoff and MaxNumTiles record the
	// tile statistics and selection parameters, but the pipeline does not
	// read them: tilestats.Compute and tilestats.Select use their own
	// package constants (MinPercentValid, StdDevPercentileCutoff,
	// MaxNumTiles), so changing these fields has no effect on a run.
	MinPercentValid             float32 `json:"min_percent_valid"`
	TileStdDevPercentileCutoff  float32 `json:"tile_stddev_percentile_cutoff"`
	MaxNumTiles                 int     `json:"max_num_tiles"`

	// MaxThreads caps concurrency for all tile-parallel stages. Zero means
	// "use the default computed at load time" (GOMAXPROCS, nudged down on
	// memory-constrained hosts).
	MaxThreads int32 `json:"max_threads"`

	// LogLevel is the ambient logging verbosity: "debug", "info", "warn", "error".
	LogLevel string `json:"log_level"`
}

// Default returns a Config populated with the pipeline's documented
// defaults. MaxThreads is sized from GOMAXPROCS, reduced if the host has
// little memory available per core, since each tile-parallel worker holds
// a full tile plus halo in memory.
func Default() Config {
	return Config{
		TileSize:                   512,
		TileExpand:                 256,
		MinBlobSizeMeters:          250,
		MaxBlobSizeMeters:          1000,
		DEMStatsSubsampleFactor:    10,
		FinalFloodThreshold:        0.60,
		WaterGrowThreshold:         0.45,
		MinPercentValid:            0.9,
		TileStdDevPercentileCutoff: 0.95,
		MaxNumTiles:                5,
		MaxThreads:                 defaultMaxThreads(),
		LogLevel:                   "info",
	}
}

// defaultMaxThreads sizes concurrency from the number of logical CPUs,
// capped so each worker can count on at least 512MiB of headroom.
func defaultMaxThreads() int32 {
	procs := int32(runtime.GOMAXPROCS(0))
	totalMiB := int32(memory.TotalMemory() / (1024 * 1024))
	memCapped := totalMiB / 512
	if memCapped < 1 {
		memCapped = 1
	}
	if memCapped < procs {
		return memCapped
	}
	return procs
}

// MinBlobSizePixels converts MinBlobSizeMeters to pixels given the raster's
// ground resolution in meters per pixel.
func (c Config) MinBlobSizePixels(metersPerPixel float32) float32 {
	if metersPerPixel <= 0 {
		return c.MinBlobSizeMeters
	}
	return c.MinBlobSizeMeters / metersPerPixel
}

// MaxBlobSizePixels converts MaxBlobSizeMeters to pixels given the raster's
// ground resolution in meters per pixel.
func (c Config) MaxBlobSizePixels(metersPerPixel float32) float32 {
	if metersPerPixel <= 0 {
		return c.MaxBlobSizeMeters
	}
	return c.MaxBlobSizeMeters / metersPerPixel
}
