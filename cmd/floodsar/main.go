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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/mlnoga/floodsar/internal/config"
	"github.com/mlnoga/floodsar/internal/logging"
	"github.com/mlnoga/floodsar/internal/pipeline"
	"github.com/mlnoga/floodsar/internal/raster"
	"github.com/mlnoga/floodsar/internal/rest"
)

const version = "0.1.0"

var image = flag.String("image", "", "input SAR backscatter raster, scratch-encoded (`detect` requires this)")
var dem = flag.String("dem", "", "input DEM raster, scratch-encoded, co-registered to image pixel space (`detect` requires this)")
var out = flag.String("out", "out.fsar", "save classified output to `file`")
var scratch = flag.String("scratch", "", "scratch directory for intermediate artifacts; a temp dir is used if blank")
var metersPerPixel = flag.Float64("metersPerPixel", 10, "ground resolution of the input raster in meters/pixel")

var tileSize = flag.Int64("tileSize", 512, "tile grid stride in pixels for the tiled statistics engine")
var tileExpand = flag.Int64("tileExpand", 256, "halo expansion in pixels for tile-parallel independence")
var minBlobSizeMeters = flag.Float64("minBlobSizeMeters", 250, "blob-size fuzzy membership lower bound, in meters (divided by metersPerPixel to give pixels)")
var maxBlobSizeMeters = flag.Float64("maxBlobSizeMeters", 1000, "blob-size fuzzy membership upper bound, in meters (divided by metersPerPixel to give pixels)")
var demStatsSubsample = flag.Int64("demStatsSubsample", 10, "subsampling factor when estimating water height from the DEM")
var finalFloodThreshold = flag.Float64("finalFloodThreshold", 0.60, "seed threshold for the two-level flood fill")
var waterGrowThreshold = flag.Float64("waterGrowThreshold", 0.45, "grow threshold for the two-level flood fill")
var minPercentValid = flag.Float64("minPercentValid", 0.9, "minimum valid-pixel fraction for a tile to contribute statistics")
var tileStdDevPercentileCutoff = flag.Float64("tileStdDevPercentileCutoff", 0.95, "percentile cutoff for heterogeneous tile selection")
var maxNumTiles = flag.Int64("maxNumTiles", 5, "maximum number of tiles selected for global threshold estimation")
var maxThreads = flag.Int64("maxThreads", 0, "cap concurrency for tile-parallel stages, 0=auto")
var logLevel = flag.String("logLevel", "info", "log verbosity: debug, info, warn, error")

var chroot = flag.String("chroot", "", "chroot to `dir` before serving (requires root, Unix only, ignored on Windows)")
var setuid = flag.Int64("setuid", -1, "drop privileges to this uid after chroot, -1=no op")

func main() {
	debug.SetGCPercent(10)
	start := time.Now()
	logWriter := os.Stdout

	flag.Usage = func() {
		fmt.Fprintf(logWriter, `floodsar Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (detect|serve|legal|version)

Commands:
  detect  Run split-based flood detection on a single SAR/DEM pair
  serve   Start the HTTP status/trigger API
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "detect":
		err = cmdDetect(logWriter)
	case "serve":
		rest.MakeSandbox(*chroot, int(*setuid))
		rest.Serve()
	case "legal":
		fmt.Fprint(logWriter, legal)
	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)
	case "help", "?":
		flag.Usage()
	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	fmt.Fprintf(logWriter, "\nDone after %v\n", time.Since(start))
	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func buildConfig() config.Config {
	cfg := config.Default()
	cfg.TileSize = int32(*tileSize)
	cfg.TileExpand = int32(*tileExpand)
	cfg.MinBlobSizeMeters = float32(*minBlobSizeMeters)
	cfg.MaxBlobSizeMeters = float32(*maxBlobSizeMeters)
	cfg.DEMStatsSubsampleFactor = int32(*demStatsSubsample)
	cfg.FinalFloodThreshold = float32(*finalFloodThreshold)
	cfg.WaterGrowThreshold = float32(*waterGrowThreshold)
	cfg.MinPercentValid = float32(*minPercentValid)
	cfg.TileStdDevPercentileCutoff = float32(*tileStdDevPercentileCutoff)
	cfg.MaxNumTiles = int(*maxNumTiles)
	if *maxThreads > 0 {
		cfg.MaxThreads = int32(*maxThreads)
	}
	cfg.LogLevel = *logLevel
	return cfg
}

// cmdDetect runs the pipeline once on -image/-dem, co-registered 1:1 in
// pixel space (the identity coordinate transform), and writes the
// classified output to -out.
func cmdDetect(logWriter io.Writer) error {
	if *image == "" || *dem == "" {
		return fmt.Errorf("detect requires -image and -dem")
	}
	cfg := buildConfig()
	logger := logging.New(logWriter, cfg.LogLevel)

	imageReader, err := raster.OpenFileRasterReader(*image, &raster.Georef{Transform: raster.IdentityTransform2D()})
	if err != nil {
		return fmt.Errorf("opening image %q: %w", *image, err)
	}
	demReader, err := raster.OpenFileRasterReader(*dem, &raster.Georef{Transform: raster.IdentityTransform2D()})
	if err != nil {
		return fmt.Errorf("opening DEM %q: %w", *dem, err)
	}

	scratchDir := *scratch
	if scratchDir == "" {
		scratchDir, err = os.MkdirTemp("", "floodsar-scratch-")
		if err != nil {
			return fmt.Errorf("creating scratch dir: %w", err)
		}
	}
	store, err := raster.NewStore(scratchDir)
	if err != nil {
		return err
	}

	in := pipeline.Inputs{
		Image:          imageReader,
		DEM:            demReader,
		ImageToDEM:     raster.AffineCoordTransform{Fwd: raster.IdentityTransform2D()},
		MetersPerPixel: float32(*metersPerPixel),
		Scratch:        store,
	}

	classified, diag, err := pipeline.Run(context.Background(), cfg, in, logger)
	if err != nil {
		return err
	}
	if err := raster.WriteClassRaster(*out, classified); err != nil {
		return fmt.Errorf("writing output %q: %w", *out, err)
	}

	fmt.Fprintf(logWriter, "Wrote %s: threshold=%.3f (stddev %.3f over %d/%d tiles)\n",
		*out, diag.Threshold, diag.ThresholdStdDev, diag.NumTilesContributed, diag.NumTilesSelected)
	return nil
}
