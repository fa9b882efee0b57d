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

// Package errs defines the pipeline's single exported error type and its
// Kind taxonomy, so callers can use errors.As/errors.Is idiomatically
// instead of matching on message strings.
package errs

import "fmt"

// Kind classifies the origin of a PipelineError.
type Kind int

const (
	// Input covers missing georeference and unreadable rasters.
	Input Kind = iota
	// Configuration covers invalid tile sizes or thresholds.
	Configuration
	// Algorithmic covers no candidate tiles, all tiles invalid, or a
	// histogram too sparse for Kittler-Illingworth.
	Algorithmic
	// IO covers scratch write/read failures.
	IO
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Configuration:
		return "configuration"
	case Algorithmic:
		return "algorithmic"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// PipelineError is the single exported error type for the detection
// pipeline. It carries the stage that produced it, a human-readable
// message, an optional parameter bag for diagnostics, and an optional
// wrapped cause.
type PipelineError struct {
	Kind      Kind
	Stage     string
	Message   string
	Params    map[string]interface{}
	Cause     error
	Retryable bool // documents the tile_size/2 retry hook; not auto-invoked
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New constructs a PipelineError with no wrapped cause.
func New(kind Kind, stage, message string, params map[string]interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: message, Params: params}
}

// Wrap constructs a PipelineError wrapping cause.
func Wrap(kind Kind, stage, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: message, Cause: cause}
}

// WithRetryable marks e as eligible for the tile_size/2 retry hook and
// returns it, for the algorithmic failures the orchestrator may one day
// choose to retry automatically.
func (e *PipelineError) WithRetryable() *PipelineError {
	e.Retryable = true
	return e
}
