package layout

import (
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/virt"
)

// NoVirtualSegmentsText is the synthetic marker shown when the virtual view
// is requested without any segments.
const NoVirtualSegmentsText = "No virtual sections defined, displaying file data instead."

// Orchestrate compiles the layout of the whole document.
//
// In FileView, or in VirtualView with no segments, it compiles
// [0, BufferLength()) with real and virtual offsets equal; the empty
// VirtualView case is prefixed with a synthetic comment marker. Otherwise
// each segment is compiled independently, in ascending virtual order, and
// the results are concatenated.
func Orchestrate(src Source, segs *virt.Map, display DisplayMode, mode InlineCommentMode) []Region {
	if display != VirtualView {
		return Compile(src, bitoff.Zero, bitoff.Zero, src.BufferLength(), mode)
	}

	if segs == nil || segs.Empty() {
		marker := CommentMarker(bitoff.Zero, bitoff.Zero, NoVirtualSegmentsText, false, bitoff.Zero, bitoff.Zero)
		marker.Synthetic = true

		regions := []Region{marker}
		return append(regions, Compile(src, bitoff.Zero, bitoff.Zero, src.BufferLength(), mode)...)
	}

	var regions []Region
	for _, s := range segs.Segments() {
		regions = append(regions, Compile(src, s.RealOffset, s.VirtOffset, s.Length, mode)...)
	}
	return regions
}
