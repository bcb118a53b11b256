package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScore = `
synthdefs:
  - name: sine
    parameters: [freq, amp]
nodes:
  - id: a
    kind: synth
    synthdef: sine
    offset: 0
    duration: 10
`

func writeScore(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "score.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCompileScoreProducesBundlesFromFile(t *testing.T) {
	path := writeScore(t, sampleScore)

	result, err := CompileScore(path, 10, true)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Bundles)
	assert.Equal(t, 10.0, result.Bundles[len(result.Bundles)-1].Offset)
}

func TestCompileScoreErrorsOnMissingFile(t *testing.T) {
	_, err := CompileScore(filepath.Join(t.TempDir(), "missing.yaml"), 10, true)
	assert.Error(t, err)
}

func TestCompileScoreErrorsOnMissingDuration(t *testing.T) {
	path := writeScore(t, sampleScore)

	_, err := CompileScore(path, 0, false)
	assert.Error(t, err)
}
