package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/series"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Countries []CountryConfig `yaml:"countries"`
	Generator Generator       `yaml:"generator"`
	Output    Output          `yaml:"output"`
	Server    Server          `yaml:"server"`
	Logging   Logging         `yaml:"logging"`
}

type CountryConfig struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	DemocracyScore  float64 `yaml:"democracy_score"`
	Classification  string  `yaml:"classification"`
	Region          string  `yaml:"region"`
	Volatility      float64 `yaml:"volatility"`
	Trend           float64 `yaml:"trend"`
	Population      float64 `yaml:"population"`
	PoliticalSystem string  `yaml:"political_system"`
}

type Generator struct {
	StartDate         string  `yaml:"start_date"` // YYYY-MM-DD, empty = year ending today
	HorizonDays       int     `yaml:"horizon_days"`
	SeasonalAmplitude float64 `yaml:"seasonal_amplitude"`
	WeekendAdjustment float64 `yaml:"weekend_adjustment"`
	WeekdayAdjustment float64 `yaml:"weekday_adjustment"`
	Seed              uint64  `yaml:"seed"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for polisent.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "polisent")
}

// DataDir returns the XDG data directory for polisent.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "polisent")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/polisent/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'polisent init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Generator: Generator{
			HorizonDays:       series.DefaultHorizonDays,
			SeasonalAmplitude: series.DefaultSeasonalAmplitude,
			WeekendAdjustment: series.DefaultWeekendAdjustment,
			WeekdayAdjustment: series.DefaultWeekdayAdjustment,
			Seed:              series.DefaultSeed,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Profiles converts the configured country table into validated profiles.
func (c *Config) Profiles() ([]country.Profile, error) {
	if len(c.Countries) == 0 {
		return nil, fmt.Errorf("no countries configured")
	}

	profiles := make([]country.Profile, 0, len(c.Countries))
	for _, cc := range c.Countries {
		classification, err := country.ParseClassification(cc.Classification)
		if err != nil {
			return nil, fmt.Errorf("country %q: %w", cc.ID, err)
		}
		region, err := country.ParseRegion(cc.Region)
		if err != nil {
			return nil, fmt.Errorf("country %q: %w", cc.ID, err)
		}

		p := country.Profile{
			ID:              cc.ID,
			Name:            cc.Name,
			DemocracyScore:  cc.DemocracyScore,
			Classification:  classification,
			Region:          region,
			VolatilityBase:  cc.Volatility,
			TrendBase:       cc.Trend,
			Population:      cc.Population,
			PoliticalSystem: cc.PoliticalSystem,
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Params converts the generator block into generation parameters.
// An empty start date means the horizon ends today.
func (c *Config) Params() (series.Params, error) {
	g := c.Generator
	p := series.Params{
		HorizonDays:       g.HorizonDays,
		SeasonalAmplitude: g.SeasonalAmplitude,
		WeekendAdjustment: g.WeekendAdjustment,
		WeekdayAdjustment: g.WeekdayAdjustment,
		Seed:              g.Seed,
	}

	if g.StartDate == "" {
		end := time.Now().UTC().Truncate(24 * time.Hour)
		p.StartDate = end.AddDate(0, 0, -(g.HorizonDays - 1))
		return p, nil
	}

	start, err := time.Parse("2006-01-02", g.StartDate)
	if err != nil {
		return series.Params{}, fmt.Errorf("parsing start_date: %w", err)
	}
	p.StartDate = start
	return p, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
