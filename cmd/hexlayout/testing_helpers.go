package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/internal/config"
)

const testSnapshot = `
comments:
  - offset: 0
    length: 8
    text: header
  - offset: 4
    length: 0
    text: magic ends
  - offset: 16
    length: 0
    text: end of file
types:
  - offset: 0
    length: 4
    type: u32le
  - offset: 8
    length: 4
    type: text
    options:
      encoding: ascii
segments:
  - virt: 0
    real: 8
    length: 8
`

// writeFixture writes a 16-byte data file and its snapshot into a temp dir.
func writeFixture(t *testing.T) (dataPath, snapshotPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "sample.bin")
	snapshotPath = filepath.Join(dir, "sample.yaml")

	data := []byte{
		0x2A, 0x00, 0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF,
		'D', 'A', 'T', 'A', 0x01, 0x02, 0x03, 0x04,
	}
	require.NoError(t, os.WriteFile(dataPath, data, 0o644))
	require.NoError(t, os.WriteFile(snapshotPath, []byte(testSnapshot), 0o644))
	return dataPath, snapshotPath
}

// resetFlags restores global flag state between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut, configPath = false, false, false, ""
	regionsMode, regionsDisplay, regionsShowReal, regionsMaxBytes = "", "", false, -1
	statsMode, statsDisplay = "", ""
	cfg = config.Default()
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	require.NoError(t, err)

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot block the writer
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "invalid JSON output:\n%s", output)
}
