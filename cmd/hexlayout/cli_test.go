package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionsCommand(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)

	tests := []struct {
		name           string
		args           []string
		mode           string
		display        string
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "file view full indent",
			args: []string{dataPath, snapshotPath},
			wantContain: []string{
				"0x00000000  # [0+8] header\n",
				"0x00000000    u32le = 42\n",
				"0x00000004    # [4+0] magic ends\n",
				"0x00000004    DEADBEEF\n",
				"0x00000008  text = DATA\n",
				"0x00000010  # [16+0] end of file\n",
				"0x00000010  <end>\n",
			},
		},
		{
			name:           "hidden comments",
			args:           []string{dataPath, snapshotPath},
			mode:           "hidden",
			wantContain:    []string{"u32le = 42", "DEADBEEF"},
			wantNotContain: []string{"#"},
		},
		{
			name:           "virtual view",
			args:           []string{dataPath, snapshotPath},
			display:        "virtual",
			wantContain:    []string{"0x00000000  text = DATA\n", "0x00000004  01020304\n"},
			wantNotContain: []string{"u32le", "header"},
		},
		{
			name:           "no snapshot",
			args:           []string{dataPath},
			wantContain:    []string{"2A000000DEADBEEF"},
			wantNotContain: []string{"#"},
		},
		{
			name:    "bad mode",
			args:    []string{dataPath, snapshotPath},
			mode:    "sideways",
			wantErr: true,
		},
		{
			name:    "missing data file",
			args:    []string{filepath.Join(t.TempDir(), "missing.bin")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			regionsMode = tt.mode
			regionsDisplay = tt.display

			output, err := captureOutput(t, func() error {
				return runRegions(tt.args)
			})

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}
			for _, dont := range tt.wantNotContain {
				assert.NotContains(t, output, dont)
			}
		})
	}
}

func TestRegionsCommandJSON(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runRegions([]string{dataPath, snapshotPath})
	})
	require.NoError(t, err)

	var regions []map[string]any
	assertJSON(t, output, &regions)
	require.Len(t, regions, 8)
	assert.Equal(t, "comment", regions[0]["kind"])
	assert.Equal(t, "typed", regions[1]["kind"])
	assert.Equal(t, []any{"42"}, regions[1]["values"])
	assert.Equal(t, "raw", regions[7]["kind"])
	assert.Equal(t, "16", regions[7]["offset"])
}

func TestValidateCommand(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)
	resetFlags(t)

	output, err := captureOutput(t, func() error {
		return runValidate([]string{dataPath, snapshotPath})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Result: ✓ VALID")
	assert.Equal(t, 10, strings.Count(output, "regions\n"))
}

func TestValidateCommandJSON(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runValidate([]string{dataPath, snapshotPath})
	})
	require.NoError(t, err)

	var result validateResult
	assertJSON(t, output, &result)
	assert.True(t, result.Valid)
	require.Len(t, result.Checks, 10)
	for _, c := range result.Checks {
		assert.Empty(t, c.Error)
		assert.Len(t, c.Fingerprint, 64)
	}
}

func TestValidateCommandRejectsBadSnapshot(t *testing.T) {
	dataPath, _ := writeFixture(t)
	bad := filepath.Join(t.TempDir(), "bad.jsonc")
	require.NoError(t, os.WriteFile(bad, []byte(`{"types": [{"offset": 12, "length": 8, "type": "u8"}]}`), 0o644))
	resetFlags(t)

	_, err := captureOutput(t, func() error {
		return runValidate([]string{dataPath, bad})
	})
	require.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runStats([]string{dataPath, snapshotPath})
	})
	require.NoError(t, err)

	var stats LayoutStats
	assertJSON(t, output, &stats)
	assert.Equal(t, "16", stats.Length)
	assert.Equal(t, 3, stats.Comments)
	assert.Equal(t, 1, stats.Segments)
	assert.Equal(t, 8, stats.Regions)
	assert.Equal(t, map[string]int{"comment": 3, "typed": 2, "raw": 3}, stats.RegionsByKind)
	assert.Equal(t, map[string]int64{"u32le": 32, "text": 32, "(untyped)": 64}, stats.BitsByType)
	assert.Equal(t, 1, stats.MaxNesting)
}

func TestStatsCommandText(t *testing.T) {
	dataPath, snapshotPath := writeFixture(t)
	resetFlags(t)
	statsDisplay = "virtual"

	output, err := captureOutput(t, func() error {
		return runStats([]string{dataPath, snapshotPath})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Layout (virtual, full-indent):")
	assert.Contains(t, output, "Fingerprint: ")
}

func TestTypesCommand(t *testing.T) {
	resetFlags(t)

	output, err := captureOutput(t, runTypes)
	require.NoError(t, err)
	assert.Contains(t, output, "u32le")
	assert.Contains(t, output, "record")
	assert.Contains(t, output, "text")
}

func TestSetupLoadsConfig(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "hexlayout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  inline_comments: short\n"), 0o644))
	configPath = path

	require.NoError(t, setup())
	mode, err := cfg.InlineMode()
	require.NoError(t, err)
	assert.Equal(t, "short", mode.String())

	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	require.Error(t, setup())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "2 B + 3 bits", formatBits(19))
}
