package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Seed       int64            `yaml:"seed"`
	Field      FieldConfig      `yaml:"field"`
	Vehicle    VehicleConfig    `yaml:"vehicle"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Decision   DecisionConfig   `yaml:"decision"`
	Kinematics KinematicsConfig `yaml:"kinematics"`
	Run        RunConfig        `yaml:"run"`
	Recording  RecordingConfig  `yaml:"recording"`
	Model      ModelConfig      `yaml:"model"`
	Train      TrainConfig      `yaml:"train"`
	Logging    LogConfig        `yaml:"logging"`
}

// FieldConfig bounds the randomised obstacle field
type FieldConfig struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	ObstacleCount     int     `yaml:"obstacle_count"`
	SpawnXMin         int     `yaml:"spawn_x_min"`
	SpawnXMax         int     `yaml:"spawn_x_max"`
	SpawnYMin         int     `yaml:"spawn_y_min"`
	SpawnYMax         int     `yaml:"spawn_y_max"`
	SizeMin           int     `yaml:"size_min"`
	SizeMax           int     `yaml:"size_max"`
	SpeedMin          float64 `yaml:"speed_min"` // px/s, negative moves toward the vehicle
	SpeedMax          float64 `yaml:"speed_max"`
	StaticProbability float64 `yaml:"static_probability"`
}

// VehicleConfig defines the start pose and speed limit
type VehicleConfig struct {
	StartX       float64 `yaml:"start_x"`
	StartY       float64 `yaml:"start_y"`
	StartHeading float64 `yaml:"start_heading"`
	StartSpeed   float64 `yaml:"start_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
}

// SensorConfig defines the ray fan
type SensorConfig struct {
	Rays   int     `yaml:"rays"`
	FOVDeg float64 `yaml:"fov_deg"`
	Range  float64 `yaml:"range"`
}

// FOV returns the fan width in radians
func (s SensorConfig) FOV() float64 {
	return s.FOVDeg * math.Pi / 180
}

// TelemetryConfig defines the auxiliary positioning sensors
type TelemetryConfig struct {
	GPSNoise float64 `yaml:"gps_noise"`
	IMUScale float64 `yaml:"imu_scale"`
}

// DecisionConfig defines the ranking criteria and the fusion weights
type DecisionConfig struct {
	Weights          []float64 `yaml:"weights"` // safety, speed, risk
	Impacts          []float64 `yaml:"impacts"` // +1 benefit, -1 cost
	ImminentDistance float64   `yaml:"imminent_distance"`
	RankingWeight    float64   `yaml:"ranking_weight"`
	EstimatorWeight  float64   `yaml:"estimator_weight"`
}

// KinematicsConfig defines the per-action control constants
type KinematicsConfig struct {
	TurnRate      float64 `yaml:"turn_rate"`
	EvadeAccel    float64 `yaml:"evade_accel"`
	BrakeAccel    float64 `yaml:"brake_accel"`
	CruiseAccel   float64 `yaml:"cruise_accel"`
	CoastAccel    float64 `yaml:"coast_accel"`
	ApproachAccel float64 `yaml:"approach_accel"`
	FarDistance   float64 `yaml:"far_distance"`
	NearDistance  float64 `yaml:"near_distance"`
	CenteringGain float64 `yaml:"centering_gain"`
}

// RunConfig defines the loop rate and integration step
type RunConfig struct {
	FPS int     `yaml:"fps"`
	DT  float64 `yaml:"dt"`
}

// RecordingConfig defines the dataset sink
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"` // record from the first tick
	Every   int    `yaml:"every"`
	Format  string `yaml:"format"` // csv|sqlite
	Path    string `yaml:"path"`
}

// ModelConfig locates the classifier artifact
type ModelConfig struct {
	Path string `yaml:"path"`
}

// TrainConfig defines offline classifier fitting
type TrainConfig struct {
	Model        string   `yaml:"model"` // knn|mlp
	K            int      `yaml:"k"`
	TestFraction float64  `yaml:"test_fraction"`
	MinRows      int      `yaml:"min_rows"`
	Hidden1      int      `yaml:"hidden1"`
	Hidden2      int      `yaml:"hidden2"`
	Generations  int      `yaml:"generations"`
	Workers      int      `yaml:"workers"`
	GA           GAConfig `yaml:"ga"`
	CSVPath      string   `yaml:"csv_path"`
	JSONPath     string   `yaml:"json_path"`
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population     int     `yaml:"population"`
	Elites         int     `yaml:"elites"`
	SelectionPool  int     `yaml:"selection_pool"`
	TournamentK    int     `yaml:"tournament_k"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSigma  float64 `yaml:"mutation_sigma"`
	ResetMutationP float64 `yaml:"reset_mutation_p"`
	ResetFraction  float64 `yaml:"reset_fraction"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	CSVPath     string `yaml:"csv_path"`
	JSONPath    string `yaml:"json_path"`
	StatusEvery int    `yaml:"status_every"` // ticks between console lines, 0 disables
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		Field: FieldConfig{
			SpeedMin:          -80,
			SpeedMax:          -20,
			StaticProbability: 0.4,
		},
		Telemetry: TelemetryConfig{GPSNoise: 2},
		Kinematics: KinematicsConfig{
			EvadeAccel:    -10,
			BrakeAccel:    -150,
			CruiseAccel:   50,
			CoastAccel:    0,
			ApproachAccel: -30,
			CenteringGain: 0.05,
		},
		Decision: DecisionConfig{
			RankingWeight:   0.6,
			EstimatorWeight: 0.4,
		},
		Logging: LogConfig{StatusEvery: 60},
	}
	applyDefaults(cfg)
	applyDerived(cfg, func(string, string) bool { return false })
	return cfg
}

// Load reads a YAML config file and returns a Config. Keys absent from the
// file keep their default values, including explicit zeros. Values derived
// from other keys (dt, spawn_x_max, spawn_y_max, start_y) follow the file
// unless it sets them itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDerived(cfg, func(section, key string) bool {
		fields, ok := raw[section].(map[string]any)
		if !ok {
			return false
		}
		_, ok = fields[key]
		return ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDerived fills the keys whose defaults depend on other keys. set
// reports whether the loaded file gave a key explicitly.
func applyDerived(cfg *Config, set func(section, key string) bool) {
	if !set("field", "spawn_x_max") {
		cfg.Field.SpawnXMax = int(cfg.Field.Width) + 200
	}
	if !set("field", "spawn_y_max") {
		cfg.Field.SpawnYMax = int(cfg.Field.Height) - 100
	}
	if !set("vehicle", "start_y") {
		cfg.Vehicle.StartY = cfg.Field.Height / 2
	}
	if !set("run", "dt") && cfg.Run.FPS > 0 {
		cfg.Run.DT = 1 / float64(cfg.Run.FPS)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.Field.Width == 0 {
		cfg.Field.Width = 1000
	}
	if cfg.Field.Height == 0 {
		cfg.Field.Height = 650
	}
	if cfg.Field.ObstacleCount == 0 {
		cfg.Field.ObstacleCount = 12
	}
	if cfg.Field.SpawnXMin == 0 {
		cfg.Field.SpawnXMin = 300
	}
	if cfg.Field.SpawnYMin == 0 {
		cfg.Field.SpawnYMin = 50
	}
	if cfg.Field.SizeMin == 0 {
		cfg.Field.SizeMin = 30
	}
	if cfg.Field.SizeMax == 0 {
		cfg.Field.SizeMax = 60
	}
	if cfg.Vehicle.StartX == 0 {
		cfg.Vehicle.StartX = 100
	}
	if cfg.Vehicle.StartSpeed == 0 {
		cfg.Vehicle.StartSpeed = 30
	}
	if cfg.Vehicle.MaxSpeed == 0 {
		cfg.Vehicle.MaxSpeed = 100
	}
	if cfg.Sensor.Rays == 0 {
		cfg.Sensor.Rays = 40
	}
	if cfg.Sensor.FOVDeg == 0 {
		cfg.Sensor.FOVDeg = 120
	}
	if cfg.Sensor.Range == 0 {
		cfg.Sensor.Range = 250
	}
	if cfg.Telemetry.IMUScale == 0 {
		cfg.Telemetry.IMUScale = 10
	}
	if len(cfg.Decision.Weights) == 0 {
		cfg.Decision.Weights = []float64{0.6, 0.2, 0.2}
	}
	if len(cfg.Decision.Impacts) == 0 {
		cfg.Decision.Impacts = []float64{1, 1, -1}
	}
	if cfg.Decision.ImminentDistance == 0 {
		cfg.Decision.ImminentDistance = 60
	}
	if cfg.Kinematics.TurnRate == 0 {
		cfg.Kinematics.TurnRate = 1.5
	}
	if cfg.Kinematics.FarDistance == 0 {
		cfg.Kinematics.FarDistance = 200
	}
	if cfg.Kinematics.NearDistance == 0 {
		cfg.Kinematics.NearDistance = 120
	}
	if cfg.Run.FPS == 0 {
		cfg.Run.FPS = 60
	}
	if cfg.Recording.Every == 0 {
		cfg.Recording.Every = 10
	}
	if cfg.Recording.Format == "" {
		cfg.Recording.Format = "csv"
	}
	if cfg.Recording.Path == "" {
		cfg.Recording.Path = "data/dataset.csv"
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "artifacts/model.json"
	}
	if cfg.Train.Model == "" {
		cfg.Train.Model = "knn"
	}
	if cfg.Train.K == 0 {
		cfg.Train.K = 5
	}
	if cfg.Train.TestFraction == 0 {
		cfg.Train.TestFraction = 0.2
	}
	if cfg.Train.MinRows == 0 {
		cfg.Train.MinRows = 20
	}
	if cfg.Train.Hidden1 == 0 {
		cfg.Train.Hidden1 = 16
	}
	if cfg.Train.Generations == 0 {
		cfg.Train.Generations = 200
	}
	if cfg.Train.GA.Population == 0 {
		cfg.Train.GA.Population = 120
	}
	if cfg.Train.GA.Elites == 0 {
		cfg.Train.GA.Elites = 4
	}
	if cfg.Train.GA.SelectionPool == 0 {
		cfg.Train.GA.SelectionPool = 40
	}
	if cfg.Train.GA.TournamentK == 0 {
		cfg.Train.GA.TournamentK = 3
	}
	if cfg.Train.GA.CrossoverRate == 0 {
		cfg.Train.GA.CrossoverRate = 0.7
	}
	if cfg.Train.GA.MutationRate == 0 {
		cfg.Train.GA.MutationRate = 0.1
	}
	if cfg.Train.GA.MutationSigma == 0 {
		cfg.Train.GA.MutationSigma = 0.2
	}
	if cfg.Train.GA.ResetMutationP == 0 {
		cfg.Train.GA.ResetMutationP = 0.005
	}
	if cfg.Train.CSVPath == "" {
		cfg.Train.CSVPath = "runs/train.csv"
	}
	if cfg.Train.JSONPath == "" {
		cfg.Train.JSONPath = "runs/train.jsonl"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/episodes.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/episodes.jsonl"
	}
}

// FeatureDim returns the estimator input length: one value per ray plus
// speed and acceleration
func (c *Config) FeatureDim() int {
	return c.Sensor.Rays + 2
}

// Validate rejects values the simulator cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Sensor.Rays < 1 {
		errs = append(errs, fmt.Errorf("sensor.rays must be positive, got %d", c.Sensor.Rays))
	}
	if c.Sensor.Range <= 0 {
		errs = append(errs, fmt.Errorf("sensor.range must be positive, got %v", c.Sensor.Range))
	}
	if c.Vehicle.MaxSpeed <= 0 {
		errs = append(errs, fmt.Errorf("vehicle.max_speed must be positive, got %v", c.Vehicle.MaxSpeed))
	}
	if c.Run.DT <= 0 || c.Run.FPS <= 0 {
		errs = append(errs, fmt.Errorf("run.dt and run.fps must be positive, got %v and %d", c.Run.DT, c.Run.FPS))
	}
	if len(c.Decision.Weights) != 3 || len(c.Decision.Impacts) != 3 {
		errs = append(errs, fmt.Errorf("decision needs 3 weights and 3 impacts, got %d and %d",
			len(c.Decision.Weights), len(c.Decision.Impacts)))
	} else {
		sum := 0.0
		for _, w := range c.Decision.Weights {
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			errs = append(errs, fmt.Errorf("decision.weights must sum to 1, got %v", sum))
		}
		for _, imp := range c.Decision.Impacts {
			if imp != 1 && imp != -1 {
				errs = append(errs, fmt.Errorf("decision.impacts must be +1 or -1, got %v", imp))
			}
		}
	}
	for name, w := range map[string]float64{
		"decision.ranking_weight":   c.Decision.RankingWeight,
		"decision.estimator_weight": c.Decision.EstimatorWeight,
	} {
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", name, w))
		}
	}
	if c.Field.StaticProbability < 0 || c.Field.StaticProbability > 1 {
		errs = append(errs, fmt.Errorf("field.static_probability must be in [0,1], got %v", c.Field.StaticProbability))
	}
	if c.Field.SizeMin > c.Field.SizeMax || c.Field.SpawnXMin > c.Field.SpawnXMax || c.Field.SpawnYMin > c.Field.SpawnYMax {
		errs = append(errs, errors.New("field ranges must have min <= max"))
	}
	if c.Field.SpeedMin > c.Field.SpeedMax {
		errs = append(errs, fmt.Errorf("field.speed_min %v exceeds speed_max %v", c.Field.SpeedMin, c.Field.SpeedMax))
	}
	if c.Recording.Every < 1 {
		errs = append(errs, fmt.Errorf("recording.every must be positive, got %d", c.Recording.Every))
	}
	if c.Recording.Format != "csv" && c.Recording.Format != "sqlite" {
		errs = append(errs, fmt.Errorf("recording.format must be csv or sqlite, got %q", c.Recording.Format))
	}
	if c.Train.Model != "knn" && c.Train.Model != "mlp" {
		errs = append(errs, fmt.Errorf("train.model must be knn or mlp, got %q", c.Train.Model))
	}
	if c.Train.TestFraction < 0 || c.Train.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("train.test_fraction must be in [0,1), got %v", c.Train.TestFraction))
	}
	return errors.Join(errs...)
}
