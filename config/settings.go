package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dagbay/level-design/editor"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const envPrefix = "LEVELDESIGN"

type WindowSettings struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type HUDSettings struct {
	FontSize float64 `mapstructure:"font_size"`
}

type LogSettings struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Settings are the editor preferences that do not come from the command line.
type Settings struct {
	Window    WindowSettings      `mapstructure:"window"`
	TargetFPS int                 `mapstructure:"target_fps"`
	Palette   string              `mapstructure:"palette"`
	AssetsDir string              `mapstructure:"assets_dir"`
	OutputDir string              `mapstructure:"output_dir"`
	Prefill   bool                `mapstructure:"prefill"`
	HUD       HUDSettings         `mapstructure:"hud"`
	Keys      map[string][]string `mapstructure:"keys"`
	Log       LogSettings         `mapstructure:"log"`
}

// DefaultKeys maps every action to its default key names.
var DefaultKeys = map[editor.Action][]string{
	editor.ActionAdvanceLayer: {"W"},
	editor.ActionRetreatLayer: {"Q"},
	editor.ActionNextSheet:    {"Digit2"},
	editor.ActionPrevSheet:    {"Digit1"},
	editor.ActionSelectNext:   {"ArrowUp"},
	editor.ActionSelectPrev:   {"ArrowDown"},
	editor.ActionToggleHUD:    {"H"},
	editor.ActionSave:         {"A"},
	editor.ActionQuit:         {"Escape"},
	editor.ActionPan:          {"AltLeft"},
	editor.ActionRecenter:     {"Home"},
	editor.ActionCopyLayer:    {"C"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.width", 1600)
	v.SetDefault("window.height", 896)
	v.SetDefault("window.title", "Level Design")
	v.SetDefault("target_fps", 60)
	v.SetDefault("palette", "palette.yaml")
	v.SetDefault("assets_dir", "assets")
	v.SetDefault("output_dir", ".")
	v.SetDefault("prefill", false)
	v.SetDefault("hud.font_size", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	for action, keys := range DefaultKeys {
		v.SetDefault("keys."+action.String(), keys)
	}
}

// LoadEnv loads .env style files into the process environment. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// LoadSettings reads the settings file at path from fsys, then applies
// LEVELDESIGN_* environment overrides. A missing file yields the defaults.
func LoadSettings(fsys afero.Fs, path string) (*Settings, error) {
	v := viper.New()
	v.SetFs(fsys)
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if exists {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: decode settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", s.Window.Width, s.Window.Height)
	}
	if s.TargetFPS <= 0 {
		return fmt.Errorf("config: target_fps must be positive, got %d", s.TargetFPS)
	}
	if s.HUD.FontSize <= 0 {
		return fmt.Errorf("config: hud.font_size must be positive")
	}
	_, err := s.Keymap()
	return err
}

// Keymap resolves the keys section into actions. Every action keeps its
// default binding unless the section overrides it.
func (s *Settings) Keymap() (map[editor.Action][]string, error) {
	out := make(map[editor.Action][]string, len(DefaultKeys))
	for _, a := range editor.Actions() {
		keys, ok := DefaultKeys[a]
		if !ok {
			return nil, fmt.Errorf("config: no default key for %s", a)
		}
		out[a] = keys
	}
	for name, keys := range s.Keys {
		a, ok := editor.ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("config: unknown action %q in keys", name)
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("config: action %q has no keys", name)
		}
		out[a] = keys
	}
	return out, nil
}
