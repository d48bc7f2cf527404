// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds the initial state of the board toggles.
type Options struct {
	ShowDps          bool `yaml:"show_dps"`
	SortByProfession bool `yaml:"sort_by_profession"`
	ShowIcons        bool `yaml:"show_icons"`
}

// Greptime configures the optional GreptimeDB export sink.
type Greptime struct {
	Endpoint    string `yaml:"endpoint"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	CastTable   string `yaml:"cast_table"`
	DamageTable string `yaml:"damage_table"`
}

// ViewerConfig is the root configuration for the viewer, its fetchers and export sinks.
type ViewerConfig struct {
	Listen       string   `yaml:"listen"`
	LogLevel     string   `yaml:"log_level"`
	MsPerPixel   float64  `yaml:"ms_per_pixel"`
	RailHeight   float64  `yaml:"rail_height"`
	RailPad      float64  `yaml:"rail_pad"`
	VideoOffset  float64  `yaml:"video_offset"`
	DpsReportURL string   `yaml:"dpsreport_url"`
	SkillsURL    string   `yaml:"skills_url"`
	HTTPTimeout  string   `yaml:"http_timeout"`
	Options      Options  `yaml:"options"`
	Greptime     Greptime `yaml:"greptime"`

	// BonusSkills overrides names injected for attunement skill ids, keyed by decimal id.
	BonusSkills map[string]string `yaml:"bonus_skills"`
}

// Default returns the configuration used when no file is given.
func Default() *ViewerConfig {
	return &ViewerConfig{
		Listen:       ":8080",
		LogLevel:     "info",
		MsPerPixel:   20,
		RailHeight:   20,
		RailPad:      4,
		DpsReportURL: "https://dps.report",
		SkillsURL:    "https://api.guildwars2.com/v2/skills",
		HTTPTimeout:  "30s",
		Options:      Options{ShowIcons: true},
		Greptime: Greptime{
			Port:        4001,
			Database:    "public",
			CastTable:   "foxie_casts",
			DamageTable: "foxie_damage",
		},
	}
}

// Load reads a YAML config, validates it against the embedded CUE schema and
// applies environment overrides. An empty path yields the defaults.
func Load(configPath string) (*ViewerConfig, error) {
	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		if err := Validate(data); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ViewerConfig) applyEnv() error {
	if v := os.Getenv("FOXIE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("FOXIE_DPSREPORT_URL"); v != "" {
		c.DpsReportURL = v
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Greptime.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		c.Greptime.Database = v
	}
	if v := os.Getenv("GREPTIMEDB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GREPTIMEDB_PORT: %w", err)
		}
		c.Greptime.Port = p
	}
	return nil
}

// Timeout parses HTTPTimeout, falling back to 30s when unset.
func (c *ViewerConfig) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http_timeout: %w", err)
	}
	return d, nil
}

// BonusSkillOverrides converts BonusSkills keys to skill ids.
func (c *ViewerConfig) BonusSkillOverrides() (map[int64]string, error) {
	out := make(map[int64]string, len(c.BonusSkills))
	for k, v := range c.BonusSkills {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bonus skill id %q: %w", k, err)
		}
		out[id] = v
	}
	return out, nil
}
