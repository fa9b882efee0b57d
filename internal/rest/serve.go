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

package rest

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mlnoga/floodsar/internal/config"
	"github.com/mlnoga/floodsar/internal/logging"
	"github.com/mlnoga/floodsar/internal/pipeline"
	"github.com/mlnoga/floodsar/internal/raster"
)

var logger = logging.New(os.Stderr, "info")

// Serve starts the status/trigger HTTP API, listening on 0.0.0.0:8080.
func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/detect", postDetect)
			v1.GET("/jobs/:id", getJob)
		}
	}
	r.Run() // listen and serve on 0.0.0.0:8080
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// transformArgs is the wire encoding of a raster.Transform2D: [A, B, C, D, E, F].
type transformArgs [6]float32

func (t transformArgs) toTransform2D() raster.Transform2D {
	return raster.Transform2D{A: t[0], B: t[1], C: t[2], D: t[3], E: t[4], F: t[5]}
}

// detectArgs is the JSON body of POST /api/v1/detect. ImagePath and DEMPath
// name scratch-encoded rasters (the format the core's RasterReader/Writer
// interfaces stand in for; a GeoTIFF-backed reader is the external I/O
// collaborator's job, not this server's). Config overrides config.Default()
// field by field; a zero value in any numeric field is left at its default.
type detectArgs struct {
	ImagePath            string         `json:"imagePath" binding:"required"`
	ImageTransform       transformArgs  `json:"imageTransform"`
	ImageCRS             string         `json:"imageCrs"`
	DEMPath              string         `json:"demPath" binding:"required"`
	DEMTransform         transformArgs  `json:"demTransform"`
	DEMCRS               string         `json:"demCrs"`
	ImageToDEMTransform  transformArgs  `json:"imageToDemTransform"`
	MetersPerPixel       float32        `json:"metersPerPixel"`
	ScratchDir           string         `json:"scratchDir" binding:"required"`
	OutputPath           string         `json:"outputPath" binding:"required"`
	Config               *config.Config `json:"config"`
	Async                bool           `json:"async"`
}

func (a detectArgs) resolveConfig() config.Config {
	cfg := config.Default()
	if a.Config == nil {
		return cfg
	}
	overrides := *a.Config
	if overrides.TileSize != 0 {
		cfg.TileSize = overrides.TileSize
	}
	if overrides.TileExpand != 0 {
		cfg.TileExpand = overrides.TileExpand
	}
	if overrides.MinBlobSizeMeters != 0 {
		cfg.MinBlobSizeMeters = overrides.MinBlobSizeMeters
	}
	if overrides.MaxBlobSizeMeters != 0 {
		cfg.MaxBlobSizeMeters = overrides.MaxBlobSizeMeters
	}
	if overrides.DEMStatsSubsampleFactor != 0 {
		cfg.DEMStatsSubsampleFactor = overrides.DEMStatsSubsampleFactor
	}
	if overrides.FinalFloodThreshold != 0 {
		cfg.FinalFloodThreshold = overrides.FinalFloodThreshold
	}
	if overrides.WaterGrowThreshold != 0 {
		cfg.WaterGrowThreshold = overrides.WaterGrowThreshold
	}
	if overrides.MinPercentValid != 0 {
		cfg.MinPercentValid = overrides.MinPercentValid
	}
	if overrides.TileStdDevPercentileCutoff != 0 {
		cfg.TileStdDevPercentileCutoff = overrides.TileStdDevPercentileCutoff
	}
	if overrides.MaxNumTiles != 0 {
		cfg.MaxNumTiles = overrides.MaxNumTiles
	}
	if overrides.MaxThreads != 0 {
		cfg.MaxThreads = overrides.MaxThreads
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	return cfg
}

// detectResult is the JSON body returned by a synchronous POST /api/v1/detect
// or a completed GET /api/v1/jobs/:id.
type detectResult struct {
	OutputPath  string               `json:"outputPath"`
	Diagnostics pipeline.Diagnostics `json:"diagnostics"`
}

func postDetect(c *gin.Context) {
	var args detectArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if args.Async {
		id := uuid.New().String()
		j := jobs.create(id)
		go runDetectJob(j, args)
		c.JSON(http.StatusAccepted, gin.H{"id": id, "status": jobStatusRunning})
		return
	}

	result, err := runDetect(context.Background(), args)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func getJob(c *gin.Context) {
	j, ok := jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}
	status, result, jobErr := j.snapshot()
	body := gin.H{"id": j.id, "status": status}
	switch status {
	case jobStatusDone:
		body["result"] = result
	case jobStatusFailed:
		body["error"] = jobErr
	}
	c.JSON(http.StatusOK, body)
}

// runDetect opens the input and DEM rasters, runs the pipeline, writes the
// classified output to a scratch file at args.OutputPath, and returns the
// output path plus diagnostics.
func runDetect(ctx context.Context, args detectArgs) (*detectResult, error) {
	cfg := args.resolveConfig()

	imageReader, err := raster.OpenFileRasterReader(args.ImagePath, &raster.Georef{
		Transform: args.ImageTransform.toTransform2D(), CRS: args.ImageCRS,
	})
	if err != nil {
		return nil, err
	}
	demReader, err := raster.OpenFileRasterReader(args.DEMPath, &raster.Georef{
		Transform: args.DEMTransform.toTransform2D(), CRS: args.DEMCRS,
	})
	if err != nil {
		return nil, err
	}

	scratch, err := raster.NewStore(args.ScratchDir)
	if err != nil {
		return nil, err
	}

	in := pipeline.Inputs{
		Image:          imageReader,
		DEM:            demReader,
		ImageToDEM:     raster.AffineCoordTransform{Fwd: args.ImageToDEMTransform.toTransform2D()},
		MetersPerPixel: args.MetersPerPixel,
		Scratch:        scratch,
	}

	stageLogger := logging.Stage(logger, "rest.postDetect")
	classified, diag, err := pipeline.Run(ctx, cfg, in, stageLogger)
	if err != nil {
		return nil, err
	}

	if err := raster.WriteClassRaster(args.OutputPath, classified); err != nil {
		return nil, err
	}
	return &detectResult{OutputPath: args.OutputPath, Diagnostics: diag}, nil
}

type jobStatusValue string

const (
	jobStatusRunning jobStatusValue = "running"
	jobStatusDone    jobStatusValue = "done"
	jobStatusFailed  jobStatusValue = "failed"
)

// job tracks one asynchronously submitted detection run.
type job struct {
	id string

	mu     sync.Mutex
	status jobStatusValue
	result *detectResult
	err    string
}

func (j *job) snapshot() (jobStatusValue, *detectResult, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.result, j.err
}

func (j *job) finishOK(result *detectResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = jobStatusDone
	j.result = result
}

func (j *job) finishErr(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = jobStatusFailed
	j.err = err.Error()
}

type jobRegistry struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*job)}
}

func (r *jobRegistry) create(id string) *job {
	j := &job{id: id, status: jobStatusRunning}
	r.mu.Lock()
	r.jobs[id] = j
	r.mu.Unlock()
	return j
}

func (r *jobRegistry) get(id string) (*job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

var jobs = newJobRegistry()

func runDetectJob(j *job, args detectArgs) {
	result, err := runDetect(context.Background(), args)
	if err != nil {
		jobLogger := logging.Stage(logger, "rest.runDetectJob")
		jobLogger.Error().Str("job_id", j.id).Err(err).Msg("detection job failed")
		j.finishErr(err)
		return
	}
	j.finishOK(result)
}
