package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"example.com/charnotes/pkg/logs"
	"github.com/caarlos0/env/v11"
	"github.com/gdamore/tcell/v2"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	appName             = "charnotes"
	defaultLogLevel     = "info"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
	defaultLogFile      = "charnotes.log"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Keybinding represents a single key combination.
type Keybinding struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

// Config holds user configuration values.
type Config struct {
	Store   StoreConfig       `toml:"store"`
	Logging LoggingConfig     `toml:"logging"`
	Keys    map[string]string `toml:"keymap"`

	// Keymap is Keys parsed and merged over DefaultKeymap.
	Keymap map[string]Keybinding `toml:"-"`
}

type StoreConfig struct {
	Path string `toml:"path" env:"CHARNOTES_DB"`
}

// LoggingConfig controls the JSON log. Setting Enabled without File logs
// to charnotes.log in the working directory.
type LoggingConfig struct {
	Enabled   bool   `toml:"enabled" env:"CHARNOTES_LOG"`
	File      string `toml:"file" env:"CHARNOTES_LOG_FILE"`
	Level     string `toml:"level" env:"CHARNOTES_LOG_LEVEL"`
	MaxSizeMB int    `toml:"max_size_mb" env:"CHARNOTES_LOG_MAX_SIZE_MB"`
	MaxFiles  int    `toml:"max_files" env:"CHARNOTES_LOG_MAX_FILES"`
}

// Default returns a Config with default paths and key mappings.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: DefaultStorePath()},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
		Keys:   map[string]string{},
		Keymap: DefaultKeymap(),
	}
}

// DefaultKeymap provides builtin command bindings.
func DefaultKeymap() map[string]Keybinding {
	return map[string]Keybinding{
		"quit":   mustParse("Ctrl+Q"),
		"reload": mustParse("Ctrl+L"),
	}
}

// DefaultStorePath is $XDG_DATA_HOME/charnotes/notes.db, falling back to
// ~/.local/share/charnotes/notes.db, then ./notes.db.
func DefaultStorePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "notes.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "notes.db"
	}
	return filepath.Join(home, ".local", "share", appName, "notes.db")
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

// Load reads the TOML file at path over the defaults, then applies
// CHARNOTES_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var file Config
			if err := toml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
			}
			cfg.merge(file)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads DefaultPath.
func LoadDefault() (*Config, error) {
	return Load(DefaultPath())
}

func (c *Config) merge(file Config) {
	if file.Store.Path != "" {
		c.Store.Path = file.Store.Path
	}
	if file.Logging.Enabled {
		c.Logging.Enabled = true
	}
	if file.Logging.File != "" {
		c.Logging.File = file.Logging.File
	}
	if file.Logging.Level != "" {
		c.Logging.Level = file.Logging.Level
	}
	if file.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = file.Logging.MaxSizeMB
	}
	if file.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = file.Logging.MaxFiles
	}
	for cmd, binding := range file.Keys {
		c.Keys[cmd] = binding
	}
}

// Validate checks the log settings and rebuilds Keymap from Keys.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("%w: store path is empty", ErrInvalidConfig)
	}
	if _, err := logs.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	if c.Logging.Enabled && strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = filepath.Join(".", defaultLogFile)
	}
	keymap := DefaultKeymap()
	cmds := make([]string, 0, len(c.Keys))
	for cmd := range c.Keys {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	for _, cmd := range cmds {
		if _, ok := keymap[cmd]; !ok {
			return fmt.Errorf("%w: unknown command %q in keymap", ErrInvalidConfig, cmd)
		}
		kb, err := ParseKeybinding(c.Keys[cmd])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		keymap[cmd] = kb
	}
	c.Keymap = keymap
	return nil
}

// LogOptions converts the logging section for logs.New.
func (c *Config) LogOptions() logs.Options {
	return logs.Options{
		File:      c.Logging.File,
		Level:     c.Logging.Level,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
}

// ParseKeybinding converts a textual key description like "Ctrl+S" into a
// Keybinding. Currently only Ctrl+<letter> is supported.
func ParseKeybinding(s string) (Keybinding, error) {
	parts := strings.Split(s, "+")
	if len(parts) != 2 {
		return Keybinding{}, errors.New("invalid keybinding: " + s)
	}
	if !strings.EqualFold(strings.TrimSpace(parts[0]), "ctrl") {
		return Keybinding{}, errors.New("invalid modifier in keybinding: " + s)
	}
	r := []rune(strings.ToLower(strings.TrimSpace(parts[1])))
	if len(r) != 1 || r[0] < 'a' || r[0] > 'z' {
		return Keybinding{}, errors.New("invalid key in keybinding: " + s)
	}
	// Ctrl+H, Ctrl+I and Ctrl+M arrive as Backspace, Tab and Enter.
	if strings.ContainsRune("him", r[0]) {
		return Keybinding{}, errors.New("keybinding collides with an editing key: " + s)
	}
	return Keybinding{Key: tcell.KeyRune, Rune: r[0], Mod: tcell.ModCtrl}, nil
}

func mustParse(s string) Keybinding {
	kb, _ := ParseKeybinding(s)
	return kb
}

// Matches returns true if the binding matches the provided event.
// Terminals report Ctrl+<letter> either as a rune with ModCtrl or as the
// dedicated control key, so both forms match.
func (k Keybinding) Matches(ev *tcell.EventKey) bool {
	if k.Key == ev.Key() && k.Rune == ev.Rune() && k.Mod == ev.Modifiers() {
		return true
	}
	if k.Key == tcell.KeyRune && k.Mod == tcell.ModCtrl && k.Rune >= 'a' && k.Rune <= 'z' {
		return ev.Key() == tcell.KeyCtrlA+tcell.Key(k.Rune-'a')
	}
	return false
}
