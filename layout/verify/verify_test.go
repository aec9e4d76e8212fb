package verify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/verify"
)

func b(n int64) bitoff.BitOffset { return bitoff.Bytes(n) }

func errType(t *testing.T, err error) string {
	t.Helper()
	var ve *verify.ValidationError
	require.True(t, errors.As(err, &ve), "unexpected error %v", err)
	return ve.Type
}

func TestAllInvariantsAcceptsValidLayout(t *testing.T) {
	regions := []layout.Region{
		layout.RawBlock(b(0), b(2), b(0)),
		layout.CommentMarker(b(2), b(3), "A", false, b(2), b(3)),
		layout.RawBlock(b(2), b(3), b(2)),
		layout.RawBlock(b(5), b(5), b(5)),
	}
	require.NoError(t, verify.AllInvariants(regions, verify.FileDomain(b(10))))
}

func TestCoverageDetectsGap(t *testing.T) {
	regions := []layout.Region{
		layout.RawBlock(b(0), b(2), b(0)),
		layout.RawBlock(b(3), b(7), b(3)),
	}
	err := verify.Coverage(regions, verify.FileDomain(b(10)))
	require.Error(t, err)
	assert.Equal(t, "Coverage", errType(t, err))
}

func TestCoverageDetectsShortfall(t *testing.T) {
	regions := []layout.Region{layout.RawBlock(b(0), b(4), b(0))}
	err := verify.Coverage(regions, verify.FileDomain(b(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "covered up to 4 of 10")
}

func TestCoverageDetectsOverrun(t *testing.T) {
	regions := []layout.Region{layout.RawBlock(b(0), b(12), b(0))}
	require.Error(t, verify.Coverage(regions, verify.FileDomain(b(10))))
}

func TestCoverageIgnoresAnchors(t *testing.T) {
	regions := []layout.Region{
		layout.RawBlock(b(0), b(4), b(0)),
		layout.CommentMarker(b(4), bitoff.Zero, "end", false, b(4), bitoff.Zero),
		layout.RawBlock(b(4), bitoff.Zero, b(4)),
	}
	require.NoError(t, verify.Coverage(regions, verify.FileDomain(b(4))))
	require.NoError(t, verify.Coverage(
		[]layout.Region{layout.RawBlock(bitoff.Zero, bitoff.Zero, bitoff.Zero)},
		verify.FileDomain(bitoff.Zero)))
}

func TestCoverageAcrossSegments(t *testing.T) {
	domain := []verify.Span{
		{Real: b(100), Virt: b(0), Length: b(5)},
		{Real: b(200), Virt: b(5), Length: b(5)},
	}
	regions := []layout.Region{
		layout.RawBlock(b(100), b(5), b(0)),
		layout.RawBlock(b(200), b(5), b(5)),
	}
	require.NoError(t, verify.Coverage(regions, domain))

	regions[1].VirtOffset = b(6)
	require.Error(t, verify.Coverage(regions, domain))
}

func TestShapes(t *testing.T) {
	require.NoError(t, verify.Shapes([]layout.Region{layout.BitBlock(b(0), bitoff.Bits(3), b(0))}))

	err := verify.Shapes([]layout.Region{layout.RawBlock(b(0), bitoff.Bits(3), b(0))})
	require.Error(t, err)
	assert.Equal(t, "Shapes", errType(t, err))

	err = verify.Shapes([]layout.Region{layout.BitBlock(b(0), b(1), b(0))})
	require.Error(t, err)

	err = verify.Shapes([]layout.Region{layout.TypedBlock(b(0), b(4), b(0), "u32le", nil)})
	require.Error(t, err)
}

func TestZeroLengthIndent(t *testing.T) {
	bad := []layout.Region{
		layout.CommentMarker(b(4), bitoff.Zero, "z", false, b(4), b(1)),
	}
	err := verify.ZeroLengthIndent(bad)
	require.Error(t, err)
	assert.Equal(t, "ZeroLengthIndent", errType(t, err))
}

func TestNestingDetectsMisplacedData(t *testing.T) {
	regions := []layout.Region{
		layout.CommentMarker(b(2), b(3), "A", false, b(2), b(3)),
		layout.RawBlock(b(3), b(2), b(3)),
	}
	err := verify.Nesting(regions)
	require.Error(t, err)
	assert.Equal(t, "Nesting", errType(t, err))
}

func TestNestingDetectsCrossingData(t *testing.T) {
	regions := []layout.Region{
		layout.CommentMarker(b(0), b(3), "A", false, b(0), b(3)),
		layout.RawBlock(b(0), b(5), b(0)),
	}
	require.Error(t, verify.Nesting(regions))
}

func TestNestingDetectsCrossingIndent(t *testing.T) {
	regions := []layout.Region{
		layout.CommentMarker(b(0), b(4), "outer", false, b(0), b(4)),
		layout.RawBlock(b(0), b(2), b(0)),
		layout.CommentMarker(b(2), b(4), "inner", false, b(2), b(4)),
	}
	require.Error(t, verify.Nesting(regions))
}

func TestNestingDetectsEmptyIndent(t *testing.T) {
	regions := []layout.Region{
		layout.CommentMarker(b(0), b(2), "A", false, b(0), b(2)),
		layout.CommentMarker(b(2), b(2), "B", false, b(2), b(2)),
		layout.RawBlock(b(2), b(2), b(2)),
	}
	require.Error(t, verify.Nesting(regions))
}

func TestFingerprint(t *testing.T) {
	base := []layout.Region{
		layout.RawBlock(b(0), b(2), b(0)),
		layout.CommentMarker(b(2), b(3), "A", false, b(2), b(3)),
		layout.RawBlock(b(2), b(8), b(2)),
	}
	same := append([]layout.Region(nil), base...)
	assert.Equal(t, verify.Fingerprint(base), verify.Fingerprint(same))
	assert.Len(t, verify.Fingerprint(base), 64)

	changed := append([]layout.Region(nil), base...)
	changed[1].Text = "B"
	assert.NotEqual(t, verify.Fingerprint(base), verify.Fingerprint(changed))

	truncated := append([]layout.Region(nil), base...)
	truncated[1].Truncate = true
	assert.NotEqual(t, verify.Fingerprint(base), verify.Fingerprint(truncated))

	assert.NotEqual(t, verify.Fingerprint(nil), verify.Fingerprint(base))
}
