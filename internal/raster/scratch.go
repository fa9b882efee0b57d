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

package raster

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// scratchMagic tags the private binary encoding used for intermediate
// rasters. This is not GeoTIFF -- real georeferenced encoding remains the
// external I/O collaborator's job -- it exists purely so pipeline stages can
// hand off by path and re-open independently instead of sharing Go objects.
const scratchMagic uint32 = 0x46534152 // "FSAR"

// Store owns a scratch directory for the duration of a pipeline run. Stages
// hand off intermediate rasters by path; Release deletes every file it
// tracked except ones explicitly kept (e.g. the final classified output).
type Store struct {
	dir   string
	paths map[string]bool
}

// NewStore creates (if needed) and takes ownership of dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("raster: creating scratch dir %q: %w", dir, err)
	}
	return &Store{dir: dir, paths: make(map[string]bool)}, nil
}

// Path returns the scratch-relative path for name and registers it for
// cleanup on Release.
func (s *Store) Path(name string) string {
	p := filepath.Join(s.dir, name)
	s.paths[p] = true
	return p
}

// Keep removes name from the cleanup set, so Release leaves it on disk.
func (s *Store) Keep(name string) {
	delete(s.paths, filepath.Join(s.dir, name))
}

// Release deletes every tracked scratch file. Errors from individual
// removals are collected but do not stop the sweep, matching "partial
// scratch artifacts are removed on clean failure" -- a missing file is not
// itself fatal to cleanup.
func (s *Store) Release() error {
	var firstErr error
	for p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	s.paths = make(map[string]bool)
	return firstErr
}

// WriteFloatRaster encodes r to path in the scratch binary format.
func WriteFloatRaster(path string, r *FloatRaster) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	hdr := [4]uint32{scratchMagic, uint32(r.Width), uint32(r.Height), 0}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.Data); err != nil {
		return err
	}
	packedValid := packBits(r.Valid)
	if err := binary.Write(w, binary.LittleEndian, packedValid); err != nil {
		return err
	}
	return w.Flush()
}

// WriteClassRaster persists a classified output raster using the same
// scratch binary encoding as WriteFloatRaster, representing NoData as
// invalid and Land/Water as their ClassValue cast to float32.
func WriteClassRaster(path string, r *ClassRaster) error {
	asFloat := NewFloatRaster(r.Width, r.Height)
	asFloat.Geo = r.Geo
	for i, v := range r.Data {
		if v == NoData {
			continue
		}
		asFloat.Data[i] = float32(v)
		asFloat.Valid[i] = true
	}
	return WriteFloatRaster(path, asFloat)
}

// ReadFloatRaster decodes a raster previously written by WriteFloatRaster.
func ReadFloatRaster(path string) (*FloatRaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var hdr [4]uint32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr[0] != scratchMagic {
		return nil, fmt.Errorf("raster: %q is not a scratch raster", path)
	}
	width, height := int32(hdr[1]), int32(hdr[2])
	n := int(width) * int(height)

	data := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	packedValid := make([]uint8, (n+7)/8)
	if err := binary.Read(r, binary.LittleEndian, packedValid); err != nil {
		return nil, err
	}
	return &FloatRaster{
		Width:  width,
		Height: height,
		Data:   data,
		Valid:  unpackBits(packedValid, n),
	}, nil
}

func packBits(valid []bool) []uint8 {
	out := make([]uint8, (len(valid)+7)/8)
	for i, v := range valid {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBits(packed []uint8, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// FileRasterWriter is a RasterWriter that accumulates writes into an
// in-memory raster and persists it to a scratch path on Close, so
// block-aligned writes from concurrent tile workers can target disjoint ROIs
// without each one touching the filesystem.
type FileRasterWriter struct {
	path string
	r    *FloatRaster
}

var _ RasterWriter = (*FileRasterWriter)(nil)

// NewFileRasterWriter allocates a width x height backing raster that will be
// persisted to path on Close.
func NewFileRasterWriter(path string, width, height int32) *FileRasterWriter {
	return &FileRasterWriter{path: path, r: NewFloatRaster(width, height)}
}

func (w *FileRasterWriter) WriteROI(roi ROI, src *FloatRaster) error {
	w.r.WriteSubRaster(roi, src)
	return nil
}

func (w *FileRasterWriter) Close() error {
	return WriteFloatRaster(w.path, w.r)
}

// FileRasterReader is a RasterReader backed by a raster loaded in full from
// a scratch path when it is opened.
type FileRasterReader struct {
	path string
	geo  *Georef
	r    *FloatRaster
}

var _ RasterReader = (*FileRasterReader)(nil)

// OpenFileRasterReader reads the raster at path immediately, matching the
// "hand off by path plus opened read handle" design.
func OpenFileRasterReader(path string, geo *Georef) (*FileRasterReader, error) {
	r, err := ReadFloatRaster(path)
	if err != nil {
		return nil, err
	}
	r.Geo = geo
	return &FileRasterReader{path: path, geo: geo, r: r}, nil
}

func (f *FileRasterReader) Bounds() (width, height int32) {
	return f.r.Width, f.r.Height
}

func (f *FileRasterReader) Georef() *Georef {
	return f.geo
}

func (f *FileRasterReader) ReadROI(roi ROI) (*FloatRaster, error) {
	clipped, ok := roi.Intersect(f.r.Width, f.r.Height)
	if !ok {
		return NewFloatRaster(0, 0), nil
	}
	return f.r.SubRaster(clipped), nil
}
