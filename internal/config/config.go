// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"defense-planner/internal/court"
	"defense-planner/internal/interpolation"
	"defense-planner/internal/logger"
	"defense-planner/internal/palette"
	"defense-planner/internal/sector"
	"defense-planner/internal/spatial"
	"defense-planner/internal/storage"
)

var ErrInvalid = errors.New("invalid config")

// Config is the whole planner configuration (mirrors config.yaml).
type Config struct {
	HTTPAddr      string              `yaml:"http_addr"`
	LogLevel      string              `yaml:"log_level"`
	Court         CourtConfig         `yaml:"court"`
	Ball          BallConfig          `yaml:"ball"`
	Players       PlayersConfig       `yaml:"players"`
	SnapRadius    float64             `yaml:"snap_radius"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Formations    FormationsConfig    `yaml:"formations"`
	Sectors       map[string]Sector   `yaml:"sectors"`
	Shadow        ShadowConfig        `yaml:"shadow"`
	Render        RenderConfig        `yaml:"render"`
	Storage       StorageConfig       `yaml:"storage"`
	Kafka         KafkaConfig         `yaml:"kafka"`
}

type CourtConfig struct {
	Scale    float64 `yaml:"scale"`    // px per meter
	Width    float64 `yaml:"width"`    // m
	Length   float64 `yaml:"length"`   // m
	Overhang float64 `yaml:"overhang"` // px
}

type BallConfig struct {
	Radius float64    `yaml:"radius"` // px
	Start  [2]float64 `yaml:"start"`  // m
}

type PlayersConfig struct {
	Radius float64      `yaml:"radius"` // px
	Names  []string     `yaml:"names"`
	Start  [][2]float64 `yaml:"start"` // m, one per player
}

type InterpolationConfig struct {
	Mode         string `yaml:"mode"`
	NearestCount int    `yaml:"nearest_count"`
}

type FormationsConfig struct {
	UniqueNames bool `yaml:"unique_names"`
}

// Sector is a preset as written in YAML; Color is #rrggbb or #rrggbbaa.
type Sector struct {
	MaxRadius  float64 `yaml:"max_radius"` // m
	AngleWidth float64 `yaml:"angle_width"`
	Backwards  bool    `yaml:"backwards"`
	Color      string  `yaml:"color"`
}

type ShadowConfig struct {
	Range     float64 `yaml:"range"`
	ArcRadius float64 `yaml:"arc_radius"`
}

// RenderConfig sets the chord counts used to draw sectors. Zero outline
// segments leave outlines out of frames.
type RenderConfig struct {
	OutlineSegments int `yaml:"outline_segments"`
	MeshSegments    int `yaml:"mesh_segments"`
}

type StorageConfig struct {
	storage.Config `yaml:",inline"`
	FormationsKey  string `yaml:"formations_key"`
	TeamsKey       string `yaml:"teams_key"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the stock configuration: a regulation court, six
// defenders in their base positions and the three standard sector presets.
func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Court:    CourtConfig{Scale: court.DefaultScale, Width: 9, Length: 18, Overhang: 20},
		Ball:     BallConfig{Radius: 8, Start: [2]float64{4.5, 4.5}},
		Players: PlayersConfig{
			Radius: 10,
			Names:  []string{"D1", "D2", "D3", "D4", "D5", "D6"},
			Start: [][2]float64{
				{4.5, 15}, {2.5, 15}, {6.5, 15},
				{4.5, 16}, {2.5, 16}, {6.5, 16},
			},
		},
		SnapRadius:    interpolation.DefaultSnapRadius,
		Interpolation: InterpolationConfig{Mode: string(interpolation.ModeTriangle), NearestCount: 3},
		Sectors: map[string]Sector{
			sector.Primary:  {MaxRadius: 6, AngleWidth: 35, Color: palette.SectorGreen.Hex()},
			sector.Wide:     {MaxRadius: 2, AngleWidth: 240, Color: palette.SectorGreen.Hex()},
			sector.Backward: {MaxRadius: 1, AngleWidth: 120, Backwards: true, Color: palette.SectorGreen.Hex()},
		},
		Shadow: ShadowConfig{Range: 150, ArcRadius: 250},
		Render: RenderConfig{OutlineSegments: 16, MeshSegments: 32},
		Storage: StorageConfig{
			Config:        storage.Config{Backend: storage.KindFile, Dir: "."},
			FormationsKey: "defense_positions.json",
			TeamsKey:      "teams.json",
		},
		Kafka: KafkaConfig{Topic: "planner.events"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document leaves out.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("HTTP_ADDR", &c.HTTPAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("DATA_DIR", &c.Storage.Dir)
	str("MINIO_ENDPOINT", &c.Storage.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.MinIO.AccessKeyID)
	str("MINIO_SECRET_KEY", &c.Storage.MinIO.SecretAccessKey)
	str("MINIO_BUCKET", &c.Storage.MinIO.Bucket)
	str("KAFKA_TOPIC", &c.Kafka.Topic)

	if v, ok := lookup("STORAGE_BACKEND"); ok && v != "" {
		c.Storage.Backend = storage.Kind(v)
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("SNAP_RADIUS"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: SNAP_RADIUS %q: %v", ErrInvalid, v, err)
		}
		c.SnapRadius = r
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks every value the planner relies on.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Court.Scale <= 0 {
		fail("court.scale must be positive, got %v", c.Court.Scale)
	}
	if c.Court.Width <= 0 || c.Court.Length <= 0 {
		fail("court size must be positive, got %vx%v", c.Court.Width, c.Court.Length)
	}
	if c.Ball.Radius <= 0 {
		fail("ball.radius must be positive")
	}
	if c.Players.Radius <= 0 {
		fail("players.radius must be positive")
	}
	if len(c.Players.Start) == 0 {
		fail("players.start must list at least one player")
	}
	if len(c.Players.Names) > len(c.Players.Start) {
		fail("players.names has %d entries for %d players", len(c.Players.Names), len(c.Players.Start))
	}
	if c.SnapRadius < 0 {
		fail("snap_radius must not be negative, got %v", c.SnapRadius)
	}
	if _, err := interpolation.ParseMode(c.Interpolation.Mode); err != nil {
		fail("interpolation.mode: %v", err)
	}
	if c.Interpolation.NearestCount < 1 {
		fail("interpolation.nearest_count must be at least 1")
	}
	for _, name := range sector.PresetNames {
		if _, ok := c.Sectors[name]; !ok {
			fail("sectors.%s missing", name)
		}
	}
	if _, err := c.SectorPresets(); err != nil {
		errs = append(errs, err)
	}
	if c.Shadow.Range <= 0 || c.Shadow.ArcRadius <= 0 {
		fail("shadow range and arc_radius must be positive")
	}
	if c.Render.OutlineSegments < 0 {
		fail("render.outline_segments must not be negative, got %d", c.Render.OutlineSegments)
	}
	if c.Render.MeshSegments < 1 {
		fail("render.mesh_segments must be at least 1, got %d", c.Render.MeshSegments)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		fail("log_level: %v", err)
	}
	switch c.Storage.Backend {
	case "", storage.KindFile, storage.KindMinIO:
	default:
		fail("storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.FormationsKey == "" || c.Storage.TeamsKey == "" {
		fail("storage keys must not be empty")
	}
	return errors.Join(errs...)
}

// CourtModel returns the pixel geometry of the configured court.
func (c *Config) CourtModel() court.Court {
	return court.New(c.Court.Scale, c.Court.Width, c.Court.Length, c.Court.Overhang)
}

// BallStart is the ball's initial center in pixels.
func (c *Config) BallStart() spatial.Point {
	return c.CourtModel().ToPixels(spatial.Pt(c.Ball.Start[0], c.Ball.Start[1]))
}

// PlayerStarts are the players' initial centers in pixels.
func (c *Config) PlayerStarts() []spatial.Point {
	ct := c.CourtModel()
	out := make([]spatial.Point, len(c.Players.Start))
	for i, s := range c.Players.Start {
		out[i] = ct.ToPixels(spatial.Pt(s[0], s[1]))
	}
	return out
}

// PlayerNames pads the configured names to the roster size.
func (c *Config) PlayerNames() []string {
	out := make([]string, len(c.Players.Start))
	for i := range out {
		if i < len(c.Players.Names) {
			out[i] = c.Players.Names[i]
		} else {
			out[i] = fmt.Sprintf("D%d", i+1)
		}
	}
	return out
}

// SectorPresets converts the YAML presets, parsing colors.
func (c *Config) SectorPresets() (sector.Presets, error) {
	out := make(sector.Presets, len(c.Sectors))
	for name, s := range c.Sectors {
		col := palette.SectorGreen
		if s.Color != "" {
			parsed, err := palette.ParseHex(s.Color)
			if err != nil {
				return nil, fmt.Errorf("%w: sectors.%s.color: %v", ErrInvalid, name, err)
			}
			col = parsed
		}
		p := sector.Params{MaxRadiusMeters: s.MaxRadius, AngleWidth: s.AngleWidth, Backwards: s.Backwards, Color: col}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: sectors.%s: %v", ErrInvalid, name, err)
		}
		out[name] = p
	}
	return out, nil
}

// ShadowParams sizes block shadows for the configured player marker.
func (c *Config) ShadowParams() sector.ShadowParams {
	return sector.ShadowParams{Range: c.Shadow.Range, ArcRadius: c.Shadow.ArcRadius, PlayerRadius: c.Players.Radius}
}

func (c *Config) Mode() interpolation.Mode {
	m, _ := interpolation.ParseMode(c.Interpolation.Mode)
	return m
}
