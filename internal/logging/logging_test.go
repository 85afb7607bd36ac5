package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesim/internal/env"
	"drivesim/internal/ga"
	"drivesim/internal/geom"
)

func TestLogEpisode(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "runs", "episodes.csv")
	jsonPath := filepath.Join(dir, "runs", "episodes.jsonl")

	l, err := NewLogger(csvPath, jsonPath)
	require.NoError(t, err)
	require.NoError(t, l.Init())

	stats := env.NewEpisodeStats("0123456789abcdef")
	before := env.Vehicle{Speed: 30}
	after := env.Vehicle{Pos: geom.Vec2{X: 3, Y: 4}, Speed: 40}
	stats.Observe(before, after, env.ActionBrake, 80)
	stats.End = env.EndEscaped
	require.NoError(t, l.LogEpisode(stats))

	// never-ticked episodes must still encode
	require.NoError(t, l.LogEpisode(env.NewEpisodeStats("empty")))
	l.Close()

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0123456789abcdef,1,escaped,5.00,80.00,40.00,0,0,1,0", lines[1])

	raw, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	jsonLines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, jsonLines, 2)
	var got EpisodeSummary
	require.NoError(t, json.Unmarshal([]byte(jsonLines[0]), &got))
	assert.Equal(t, "escaped", got.End)
	assert.Equal(t, 1, got.Actions["BRAKE"])
	assert.Equal(t, 5.0, got.Distance)

	require.NoError(t, json.Unmarshal([]byte(jsonLines[1]), &got))
	assert.Equal(t, 0.0, got.MinClearance)
}

func TestLogEpisodeBeforeInit(t *testing.T) {
	l, err := NewLogger(filepath.Join(t.TempDir(), "a.csv"), filepath.Join(t.TempDir(), "a.jsonl"))
	require.NoError(t, err)
	assert.NoError(t, l.LogEpisode(env.NewEpisodeStats("x")))
	l.Close()
}

func TestFormatStatus(t *testing.T) {
	line := FormatStatus(Status{Tick: 12, X: 100, Y: 325, Speed: 30, Action: env.ActionContinue, Score: 1, Recording: true})
	assert.Contains(t, line, "Tick     12")
	assert.Contains(t, line, "TOPSIS")
	assert.Contains(t, line, "CONTINUE")
	assert.True(t, strings.HasSuffix(line, " REC"))

	line = FormatStatus(Status{Hybrid: true, Paused: true})
	assert.Contains(t, line, "HYBRID")
	assert.True(t, strings.HasSuffix(line, " PAUSED"))
}

func TestLogGeneration(t *testing.T) {
	dir := t.TempDir()
	l, err := NewTrainingLogger(filepath.Join(dir, "train.csv"), filepath.Join(dir, "train.jsonl"))
	require.NoError(t, err)
	require.NoError(t, l.Init())

	pop := &ga.Population{Agents: []*ga.Agent{
		{Fitness: -1, Accuracy: 0.5},
		{Fitness: 0.5, Accuracy: 0.9},
	}}
	require.NoError(t, l.LogGeneration(3, pop))
	l.Close()

	raw, err := os.ReadFile(filepath.Join(dir, "train.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "generation,best_fitness,mean_fitness,best_accuracy,mean_accuracy", lines[0])
	assert.Equal(t, "3,0.5000,-0.2500,0.9000,0.7000", lines[1])
}
