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

// MemRaster is an in-memory RasterReader/RasterWriter backed directly by a
// FloatRaster. It is the adapter the core and its tests run against in lieu
// of the real georeferenced-I/O collaborator.
type MemRaster struct {
	R *FloatRaster
}

var _ RasterReader = (*MemRaster)(nil)
var _ RasterWriter = (*MemRaster)(nil)

// NewMemRaster wraps r as both a RasterReader and RasterWriter.
func NewMemRaster(r *FloatRaster) *MemRaster {
	return &MemRaster{R: r}
}

func (m *MemRaster) Bounds() (width, height int32) {
	return m.R.Width, m.R.Height
}

func (m *MemRaster) Georef() *Georef {
	return m.R.Geo
}

func (m *MemRaster) ReadROI(roi ROI) (*FloatRaster, error) {
	clipped, ok := roi.Intersect(m.R.Width, m.R.Height)
	if !ok {
		return NewFloatRaster(0, 0), nil
	}
	return m.R.SubRaster(clipped), nil
}

func (m *MemRaster) WriteROI(roi ROI, src *FloatRaster) error {
	m.R.WriteSubRaster(roi, src)
	return nil
}

func (m *MemRaster) Close() error {
	return nil
}
