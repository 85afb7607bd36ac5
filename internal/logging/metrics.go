package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"drivesim/internal/env"
)

var (
	episodeHeader = []string{
		"episode", "ticks", "end", "distance", "min_clearance", "mean_speed",
		"evade_left", "evade_right", "brake", "continue",
	}
	generationHeader = []string{
		"generation", "best_fitness", "mean_fitness", "best_accuracy", "mean_accuracy",
	}
)

// Logger writes one CSV row and one JSON line per logged record: finished
// episodes for live runs, generations for training
type Logger struct {
	csvPath     string
	jsonPath    string
	header      []string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	initialized bool
}

// NewLogger creates an episode logger
func NewLogger(csvPath, jsonPath string) (*Logger, error) {
	return newLogger(csvPath, jsonPath, episodeHeader)
}

// NewTrainingLogger creates a logger for GA generation summaries
func NewTrainingLogger(csvPath, jsonPath string) (*Logger, error) {
	return newLogger(csvPath, jsonPath, generationHeader)
}

func newLogger(csvPath, jsonPath string, header []string) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		header:   header,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// Init initializes the log files
func (l *Logger) Init() error {
	var err error

	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	if err := l.csvWriter.Write(l.header); err != nil {
		return err
	}
	l.csvWriter.Flush()

	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// EpisodeSummary is the logged form of env.EpisodeStats
type EpisodeSummary struct {
	Episode      string         `json:"episode"`
	Ticks        int            `json:"ticks"`
	End          string         `json:"end"`
	Distance     float64        `json:"distance"`
	MinClearance float64        `json:"min_clearance"`
	MeanSpeed    float64        `json:"mean_speed"`
	Actions      map[string]int `json:"actions"`
}

// Summarize converts episode statistics for logging. An episode that never
// observed a tick reports zero clearance instead of +Inf so it stays valid
// JSON.
func Summarize(s env.EpisodeStats) EpisodeSummary {
	clearance := s.MinClearance
	if s.Ticks == 0 {
		clearance = 0
	}
	summary := EpisodeSummary{
		Episode:      s.ID,
		Ticks:        s.Ticks,
		End:          s.End.String(),
		Distance:     s.Distance,
		MinClearance: clearance,
		MeanSpeed:    s.MeanSpeed(),
		Actions:      make(map[string]int, env.NumActions),
	}
	for _, a := range env.Actions {
		summary.Actions[a.String()] = s.Actions[a]
	}
	return summary
}

// LogEpisode appends one episode to the CSV and JSONL files and prints it
func (l *Logger) LogEpisode(stats env.EpisodeStats) error {
	if !l.initialized {
		return nil
	}
	summary := Summarize(stats)

	row := []string{
		summary.Episode,
		strconv.Itoa(summary.Ticks),
		summary.End,
		fmt.Sprintf("%.2f", summary.Distance),
		fmt.Sprintf("%.2f", summary.MinClearance),
		fmt.Sprintf("%.2f", summary.MeanSpeed),
	}
	for _, a := range env.Actions {
		row = append(row, strconv.Itoa(stats.Actions[a]))
	}
	if err := l.write(row, summary); err != nil {
		return err
	}

	fmt.Printf("Episode %s | Ticks: %5d | End: %-8s | Dist: %8.1f | Clear: %6.1f | Speed: %5.1f\n",
		shortID(summary.Episode), summary.Ticks, summary.End, summary.Distance,
		summary.MinClearance, summary.MeanSpeed)
	return nil
}

// LogAggregate prints the summary over all logged episodes
func (l *Logger) LogAggregate(agg env.AggregatedStats) {
	if agg.NumEpisodes == 0 {
		return
	}
	fmt.Printf("  [Summary] %d episodes: Avg Ticks=%.1f, Avg Dist=%.1f (std %.1f), Min Clearance=%.1f\n",
		agg.NumEpisodes, agg.TicksMean, agg.DistanceMean, agg.DistanceStd, agg.MinClearance)
	for _, a := range env.Actions {
		fmt.Printf("    %-12s %5.1f%%\n", a, 100*agg.ActionShare[a])
	}
}

func (l *Logger) write(row []string, record any) error {
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	jsonLine, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = l.jsonFile.Write(append(jsonLine, '\n'))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
