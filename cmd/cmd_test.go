package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/biasdeck/config"
	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/taxonomy"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func lineWith(out, needle string) string {
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, needle) {
			return l
		}
	}
	return ""
}

func TestIDs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := execute(t, "ids", "-i", "vae")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 39)
	assert.Contains(t, lineWith(out, "dec_mid_attn"), "attention")

	out, err = execute(t, "ids", "-i", "te", "--category", "attention")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 36)
	for _, l := range lines {
		assert.Contains(t, l, "self_attn")
	}
}

func TestUnknownInstance(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := execute(t, "ids", "-i", "unet")
	assert.True(t, errors.Is(err, taxonomy.ErrUnknownInstance))
}

func TestPresets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := execute(t, "presets", "-i", "te")
	require.NoError(t, err)
	assert.Contains(t, out, "Custom\nDefault\n")
	assert.Contains(t, out, "Soft Attention")

	out, err = execute(t, "presets", "-i", "te", "--show", "Soft Attention")
	require.NoError(t, err)
	assert.Contains(t, lineWith(out, "layers_0_self_attn"), "0.90")
	assert.Contains(t, lineWith(out, "layers_0_mlp"), "1.00")

	_, err = execute(t, "presets", "-i", "te", "--show", "Nope")
	assert.True(t, errors.Is(err, engine.ErrUnknownPreset))
}

func TestApplyThenRender(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	state := filepath.Join(dir, "wf.json")

	_, err := execute(t, "apply", "All Off", "-i", "te", "--state", state,
		"--set", "final_norm=0.93", "--on", "final_norm")
	require.NoError(t, err)

	out, err := execute(t, "render", "-i", "te", "--state", state, "-w", "96")
	require.NoError(t, err)
	row := lineWith(out, "final_norm")
	assert.Contains(t, row, "[x]")
	assert.Contains(t, row, "0.95")
	assert.Contains(t, lineWith(out, "layers_0_mlp"), "[ ]")
	assert.Contains(t, lineWith(out, "Preset"), "Custom", "saved state never carries a preset")

	// defaults remembered for the next run
	cfg, err := config.LoadFile(filepath.Join(dir, "biasdeck", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "te", cfg.Instance)
	assert.Equal(t, state, cfg.StatePath)
}

func TestApplyErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	state := filepath.Join(dir, "wf.json")

	_, err := execute(t, "apply", "Nope", "-i", "te", "--state", state)
	assert.True(t, errors.Is(err, engine.ErrUnknownPreset))

	_, err = execute(t, "apply", "-i", "te", "--state", state, "--set", "bogus=1")
	assert.Error(t, err)

	_, err = execute(t, "apply", "-i", "te", "--state", state, "--set", "final_norm")
	assert.Error(t, err)

	_, err = execute(t, "apply", "-i", "te-inspect", "--state", state)
	assert.Error(t, err)

	_, statErr := os.Stat(state)
	assert.True(t, os.IsNotExist(statErr), "failed applies write nothing")
}

func TestRenderInspector(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	payload := filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"ablation":{"layers_20_mlp":{"score":64,"channels":{"gate":2.5}}},"layers":{"layers_20":{"magnitude":3}}}`), 0600))

	out, err := execute(t, "render", "-i", "te-inspect", "--analysis", payload)
	require.NoError(t, err)
	assert.Contains(t, out, "layers_20_mlp")
	assert.Contains(t, out, "gate 2.5")
}

func TestParseEdits(t *testing.T) {
	got, err := parseEdits([]string{"a=0.5", " b = -1 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 0.5, "b": -1}, got)

	for _, bad := range []string{"a", "=1", "a=x"} {
		_, err := parseEdits([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestInspectName(t *testing.T) {
	assert.Equal(t, "dit-inspect", inspectName("dit"))
	assert.Equal(t, "te-inspect", inspectName("te"))
	assert.Equal(t, "te-inspect", inspectName("vae"))
	assert.Equal(t, "dit-inspect", inspectName("dit-inspect"))
}

func TestWatchPrintsExistingPayload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	payload := filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"blocks":{"layers_3_mlp":{"score":41}}}`), 0600))

	out, err := execute(t, "watch", "-i", "te-inspect", "--payload", payload, "-n", "1", "--clear=false")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis #1")
	assert.Contains(t, out, "layers_3_mlp")
}

func TestWatchNeedsPayload(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := execute(t, "watch", "-i", "te")
	assert.Error(t, err)
}
