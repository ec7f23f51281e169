package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohualzy/VoiceIce/internal/codec"
	"github.com/mohualzy/VoiceIce/internal/testutil"
)

const testRate = 44100

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	t.Setenv("VOICEICE_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer

	root := NewRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func writeTone(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := codec.WAVBytes(codec.Buffer{
		Samples:    testutil.DeterministicSine(2000, testRate, 0.5, testRate),
		SampleRate: testRate,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func decodeFile(t *testing.T, path string) codec.Buffer {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	buf, err := codec.DecodeBytes(data)
	require.NoError(t, err)

	return buf
}

func TestRenderCools(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")
	out := filepath.Join(dir, "cold.wav")

	stdout, _, err := run(t, "render", in, "-t", "0.5", "-o", out, "--store", "none", "--analyze")
	require.NoError(t, err)

	assert.Contains(t, stdout, "tone.wav → "+out)
	assert.Contains(t, stdout, "cooling")
	assert.Contains(t, stdout, "high band")

	buf := decodeFile(t, out)
	assert.Equal(t, testRate, buf.SampleRate)
	assert.Len(t, buf.Samples, 38588)
}

func TestRenderDefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")

	_, _, err := run(t, "render", in, "-t", "1.8", "--store", "none")
	require.NoError(t, err)

	buf := decodeFile(t, filepath.Join(dir, "tone-t1.8.wav"))
	assert.Len(t, buf.Samples, 52920)
}

func TestRenderNeutralIsIdentity(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")
	out := filepath.Join(dir, "same.wav")

	_, _, err := run(t, "render", in, "-o", out, "--store", "none")
	require.NoError(t, err)

	testutil.RequireSliceNearlyEqual(t, decodeFile(t, out).Samples, decodeFile(t, in).Samples, 2.0/32768)
}

func TestRenderRejects(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, "tone.wav")

	_, stderr, err := run(t, "render", in, "-t", "3", "--store", "none")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid temperature")

	junk := filepath.Join(dir, "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not audio"), 0o644))

	_, stderr, err = run(t, "render", junk, "--store", "none")
	require.Error(t, err)
	assert.Contains(t, stderr, "could not decode junk.wav")
	assert.NoFileExists(t, filepath.Join(dir, "junk-t1.wav"))
}

func TestReport(t *testing.T) {
	stdout, _, err := run(t, "report", "-t", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "BLAZE")
	assert.Contains(t, stdout, "heating(drive=5.000)")

	stdout, _, err = run(t, "report", "-t", "0.5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EMBER")
	assert.Contains(t, stdout, "duration x0.875")

	_, stderr, err := run(t, "report", "-t", "0.1")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid temperature")
}

func TestRecordAndVault(t *testing.T) {
	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	in := writeTone(t, dir, "tone.wav")
	store := []string{"--store", "dir", "--vault-dir", vaultDir}

	stdout, _, err := run(t, append([]string{"record", in}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "recorded rec-")

	_, _, err = run(t, append([]string{"render", in, "-o", filepath.Join(dir, "o.wav")}, store...)...)
	require.NoError(t, err)

	stdout, _, err = run(t, append([]string{"vault", "list"}, store...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tone.wav")
	assert.Contains(t, lines[0], "upload")
	assert.Contains(t, lines[1], "recording")

	stdout, _, err = run(t, append([]string{"vault", "show", "tone.wav", "-t", "0.5"}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "EMBER")
	assert.Contains(t, stdout, "duration")

	_, stderr, err := run(t, append([]string{"vault", "show", "missing.wav"}, store...)...)
	require.Error(t, err)
	assert.Contains(t, stderr, "no such file")

	stdout, _, err = run(t, append([]string{"vault", "rm", "tone.wav", "missing.wav"}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 file(s) left")
}

func TestRecordStdin(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	t.Setenv("VOICEICE_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer

	root := NewRootCmd(&out, &errOut)
	root.SetIn(strings.NewReader("raw take"))
	root.SetArgs([]string{"record", "-", "--store", "none"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "recorded rec-")
}

func TestInvalidStore(t *testing.T) {
	_, stderr, err := run(t, "vault", "list", "--store", "tape")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestWatchRejectsSameDir(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := run(t, "watch", dir, "-o", dir, "--store", "none")
	require.Error(t, err)
	assert.Contains(t, stderr, "output inside the watched directory")
}

func TestPlayNeedsOneSource(t *testing.T) {
	_, stderr, err := run(t, "play", "--store", "none")
	require.Error(t, err)
	assert.Contains(t, stderr, "nothing to play")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "take-t0.5.wav"), outputName("out", "take.mp3", 0.5))
	assert.Equal(t, filepath.Join("out", "rec-1-t2.wav"), outputName("out", "rec-1.wav", 2))
}
