// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and HRDASH_* env vars on top.
// - Errors returned by Load wrap this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log encoding to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// LogFile, when set, tees logs into a size-rotated file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// SnapshotPath, RosterPath and SalaryPath locate the three input tables.
	SnapshotPath string `koanf:"snapshot_path"`
	RosterPath   string `koanf:"roster_path"`
	SalaryPath   string `koanf:"salary_path"`

	// ModelPath locates the trained attrition model artifact.
	ModelPath string `koanf:"model_path"`

	// ChartWidth and ChartHeight size rendered PNG charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// ChartCacheSize bounds the rendered chart LRU.
	ChartCacheSize int `koanf:"chart_cache_size"`

	// HistogramBins is the bin count of the salary distribution chart.
	HistogramBins int `koanf:"histogram_bins"`

	// TopEarners is the per-department limit of the overview earners table.
	TopEarners int `koanf:"top_earners"`

	// PrerenderWorkers renders every chart in the background after startup.
	// Zero disables warming; charts are then drawn on first request.
	PrerenderWorkers int `koanf:"prerender_workers"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogMaxSizeMB:     100,
		LogMaxBackups:    3,
		Addr:             ":8501",
		SnapshotPath:     "current_employee_snapshot.csv",
		RosterPath:       "employee.csv",
		SalaryPath:       "salary.csv",
		ModelPath:        "retention_model.json",
		ChartWidth:       960,
		ChartHeight:      480,
		ChartCacheSize:   64,
		HistogramBins:    40,
		TopEarners:       10,
		PrerenderWorkers: 2,
	}
}
