package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posecap/internal/editor"
	"posecap/internal/pose"
	"posecap/internal/rig"
	"posecap/internal/sink"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	body, err := rig.Build(rig.DefaultDefinition(), nil)
	require.NoError(t, err)

	opts := editor.DefaultOptions()
	opts.Width, opts.Height, opts.Antialias = 40, 30, 1
	return Config{
		OutputDir: t.TempDir(),
		Format:    sink.PNG,
		Template:  body,
		Options:   opts,
		Bodies:    1,
		Workers:   2,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	poses := []pose.Pose{
		{Name: "rest"},
		{Name: "two up", Bodies: []pose.Body{
			{Joints: map[string][3]float64{"right_shoulder": {0, 0, 150}}},
			{Joints: map[string][3]float64{"left_shoulder": {0, 0, -150}}},
		}},
		{Name: "broken", Bodies: []pose.Body{{Joints: map[string][3]float64{"wing": {}}}}},
	}

	results := Run(context.Background(), cfg, poses)
	require.Len(t, results, 3)

	for _, r := range results[:2] {
		assert.True(t, r.Success, r.Error)
		require.Len(t, r.Images, 4, r.Name)
		for _, img := range r.Images {
			assert.FileExists(t, filepath.Join(cfg.OutputDir, r.Dir, img.Image))
		}
		assert.FileExists(t, filepath.Join(cfg.OutputDir, r.Dir, "manifest.json"))
	}
	assert.Equal(t, "two_up", results[1].Dir)
	assert.Equal(t, []string{"pose", "depth", "normal", "canny"}, []string{
		results[0].Images[0].Mode, results[0].Images[1].Mode,
		results[0].Images[2].Mode, results[0].Images[3].Mode,
	})

	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, `unknown joint "wing"`)
	assert.Empty(t, results[2].Images)
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, cfg, []pose.Pose{{Name: "a"}, {Name: "b"}})
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunBadFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Format = "gif"
	results := Run(context.Background(), cfg, []pose.Pose{{Name: "a"}})
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
}

func TestRunSameNameKeepsBothExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 4
	poses := []pose.Pose{{Name: "rest"}, {Name: "rest"}, {Name: "Rest"}}

	results := Run(context.Background(), cfg, poses)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"rest", "rest_2", "Rest_3"}, []string{results[0].Dir, results[1].Dir, results[2].Dir})

	for _, r := range results {
		require.True(t, r.Success, r.Error)
		entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, r.Dir))
		require.NoError(t, err)
		assert.Len(t, entries, 5, "%s: four images and a manifest", r.Dir)
	}
}

func TestUniqueDirs(t *testing.T) {
	got := uniqueDirs([]pose.Pose{{Name: "a"}, {Name: "a_2"}, {Name: "a"}, {Name: "a"}, {Name: ""}})
	assert.Equal(t, []string{"a", "a_2", "a_3", "a_4", "pose"}, got)
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "pose", DirName("  "))
	assert.Equal(t, "a_b_c", DirName("a/b c"))
	assert.Equal(t, "wave", DirName("wave"))
}

func TestWriteManifest(t *testing.T) {
	file := filepath.Join(t.TempDir(), "manifest.json")
	results := []Result{
		{Name: "wave", Dir: "wave", Success: true, Images: []sink.ManifestEntry{
			{Mode: "pose", Image: "pose_1.png"},
			{Mode: "depth", Image: "depth_1.png"},
		}},
		{Name: "bad", Dir: "bad", Error: "boom"},
	}
	require.NoError(t, WriteManifest(file, results))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Equal(t, []ManifestEntry{
		{Pose: "wave", Dir: "wave", Images: []string{"wave/pose_1.png", "wave/depth_1.png"}, Success: true},
		{Pose: "bad", Dir: "bad", Images: []string{}, Error: "boom"},
	}, entries)
}
