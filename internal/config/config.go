package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultAPIURL is used when neither the environment nor the config file
// names a backend.
const DefaultAPIURL = "http://localhost:8081"

// Variant names.
const (
	VariantClassic = "classic"
	VariantPaged   = "paged"
)

// Config is the persistent application configuration
type Config struct {
	// Backend base URL. Environment variables take precedence.
	APIURL string `json:"api_url,omitempty"`

	// Variant selects one of Variants (or a built-in preset).
	Variant string `json:"variant"`

	// Variants overrides or adds presets by name.
	Variants map[string]Variant `json:"variants,omitempty"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// HTTP timeout for API calls, in seconds.
	TimeoutSec int `json:"timeout_sec"`
}

// Variant is the set of recognized dashboard options.
type Variant struct {
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	RadiusMin   float64   `json:"radius_min"`
	RadiusMax   float64   `json:"radius_max"`
	Palette     [3]string `json:"palette"` // bearish, neutral, bullish
	Background  string    `json:"background"`
	IdleOpacity float64   `json:"idle_opacity"`
	Paginate    bool      `json:"paginate"`
	PageSize    int       `json:"page_size"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Mouse      bool `json:"mouse"`
	ShowLegend bool `json:"show_legend"`
	ShowStats  bool `json:"show_stats"`
	FrameRate  int  `json:"frame_rate"`
}

// Classic is the 700x400 dashboard with an unpaginated, scrolling feed.
func Classic() Variant {
	return Variant{
		Width:       700,
		Height:      400,
		RadiusMin:   30,
		RadiusMax:   80,
		Palette:     [3]string{"#ff3333", "#121212", "#52d769"},
		Background:  "#0a0a0a",
		IdleOpacity: 0.9,
		Paginate:    false,
		PageSize:    5,
	}
}

// Paged is the larger dashboard with five articles per feed page.
func Paged() Variant {
	return Variant{
		Width:       800,
		Height:      500,
		RadiusMin:   20,
		RadiusMax:   80,
		Palette:     [3]string{"#ef4444", "#374151", "#22c55e"},
		Background:  "#111827",
		IdleOpacity: 0.85,
		Paginate:    true,
		PageSize:    5,
	}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Variant: VariantPaged,
		UI: UIConfig{
			Mouse:      true,
			ShowLegend: true,
			ShowStats:  true,
			FrameRate:  60,
		},
		TimeoutSec: 30,
	}
}

// Dir is the ChainPulse data directory, ~/.chainpulse unless
// CHAINPULSE_HOME is set.
func Dir() string {
	if d := getEnv("CHAINPULSE_HOME", ""); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chainpulse")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// DBPath is the snapshot database.
func DBPath() string {
	return filepath.Join(Dir(), "chainpulse.db")
}

// EventLogPath is the JSONL event log.
func EventLogPath() string {
	return filepath.Join(Dir(), "chainpulse.events.jsonl")
}

// Load reads .env, then the config file at ConfigPath, then applies
// environment overrides. A missing file yields defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load without the .env step, reading the file at path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = ResolveAPIURL(c.APIURL)
	c.Variant = getEnv("CHAINPULSE_VARIANT", c.Variant)
	c.TimeoutSec = getEnvAsInt("CHAINPULSE_TIMEOUT_SEC", c.TimeoutSec)
	c.UI.Mouse = getEnvAsBool("CHAINPULSE_MOUSE", c.UI.Mouse)
}

// ResolveAPIURL picks the backend URL: CHAINPULSE_API_URL, then
// NEXT_PUBLIC_BACKEND_URL, then fromFile, then DefaultAPIURL.
func ResolveAPIURL(fromFile string) string {
	for _, v := range []string{
		getEnv("CHAINPULSE_API_URL", ""),
		getEnv("NEXT_PUBLIC_BACKEND_URL", ""),
		fromFile,
	} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return DefaultAPIURL
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VariantNames lists every known variant, sorted.
func (c *Config) VariantNames() []string {
	names := map[string]bool{VariantClassic: true, VariantPaged: true}
	for n := range c.Variants {
		names[n] = true
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the named variant. File entries replace built-in presets.
func (c *Config) Lookup(name string) (Variant, error) {
	if v, ok := c.Variants[name]; ok {
		return v, nil
	}
	switch name {
	case VariantClassic:
		return Classic(), nil
	case VariantPaged:
		return Paged(), nil
	}
	return Variant{}, fmt.Errorf("unknown variant %q (known: %s)", name, strings.Join(c.VariantNames(), ", "))
}

// Active returns the selected variant.
func (c *Config) Active() (Variant, error) {
	return c.Lookup(c.Variant)
}

// Validate checks the selected variant and every configured one.
func (c *Config) Validate() error {
	if c.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive, got %d", c.TimeoutSec)
	}
	if c.UI.FrameRate <= 0 {
		return fmt.Errorf("ui.frame_rate must be positive, got %d", c.UI.FrameRate)
	}
	if _, err := c.Active(); err != nil {
		return err
	}
	for name, v := range c.Variants {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variant %s: %w", name, err)
		}
	}
	return nil
}

// Validate rejects non-positive sizes, inverted radius ranges and
// unparseable colors.
func (v Variant) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %gx%g", v.Width, v.Height)
	}
	if v.RadiusMin <= 0 || v.RadiusMax < v.RadiusMin {
		return fmt.Errorf("radius range [%g,%g] invalid", v.RadiusMin, v.RadiusMax)
	}
	if v.IdleOpacity < 0 || v.IdleOpacity > 1 {
		return fmt.Errorf("idle_opacity %g outside [0,1]", v.IdleOpacity)
	}
	if v.Paginate && v.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive when paginating, got %d", v.PageSize)
	}
	for _, hex := range append(v.Palette[:], v.Background) {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("color %q: %w", hex, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
