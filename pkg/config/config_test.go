package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
)

func TestParseKeybinding(t *testing.T) {
	kb, err := ParseKeybinding("Ctrl+X")
	require.NoError(t, err)
	require.True(t, kb.Matches(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModCtrl)), "rune form")
	require.True(t, kb.Matches(tcell.NewEventKey(tcell.KeyCtrlX, 0, 0)), "control key form")
	require.False(t, kb.Matches(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0)))
}

func TestParseKeybinding_Invalid(t *testing.T) {
	for _, s := range []string{"Ctrl+", "Alt+X", "Ctrl+1", "X"} {
		_, err := ParseKeybinding(s)
		require.Errorf(t, err, "expected error for %q", s)
	}
}

func TestParseKeybinding_RejectsEditingKeyAliases(t *testing.T) {
	for _, s := range []string{"Ctrl+H", "Ctrl+I", "Ctrl+M", "ctrl+m"} {
		_, err := ParseKeybinding(s)
		require.Errorf(t, err, "expected %q to be rejected", s)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keymap]\nreload = \"Ctrl+M\"\n"), 0o644))
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)

	// the defaults never fire on Enter, Tab or Backspace
	for _, kb := range DefaultKeymap() {
		for _, k := range []tcell.Key{tcell.KeyEnter, tcell.KeyTab, tcell.KeyBackspace} {
			require.False(t, kb.Matches(tcell.NewEventKey(k, 0, 0)))
		}
	}
}

func TestLoad_LogSwitchDefaultsFile(t *testing.T) {
	t.Setenv("CHARNOTES_LOG_FILE", "")
	os.Unsetenv("CHARNOTES_LOG_FILE")
	t.Setenv("CHARNOTES_LOG", "1")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.True(t, cfg.Logging.Enabled)
	require.Equal(t, "charnotes.log", cfg.LogOptions().File)

	t.Setenv("CHARNOTES_LOG_FILE", "/var/log/notes.log")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, "/var/log/notes.log", cfg.LogOptions().File)

	t.Setenv("CHARNOTES_LOG_FILE", "")
	os.Unsetenv("CHARNOTES_LOG_FILE")
	t.Setenv("CHARNOTES_LOG", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Empty(t, cfg.LogOptions().File)
}

func TestLoad_LogSwitchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nenabled = true\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "charnotes.log", cfg.LogOptions().File)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data", "charnotes", "notes.db"), cfg.Store.Path)
	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, cfg.Keymap["quit"].Matches(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0)))
	require.True(t, cfg.Keymap["reload"].Matches(tcell.NewEventKey(tcell.KeyCtrlL, 0, 0)))
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := []byte(`
[store]
path = "/tmp/file.db"

[logging]
level = "debug"
max_files = 2

[keymap]
quit = "Ctrl+X"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("CHARNOTES_DB", "/tmp/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/env.db", cfg.Store.Path)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 2, cfg.Logging.MaxFiles)
	require.Equal(t, 10, cfg.Logging.MaxSizeMB)

	ev := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModCtrl)
	require.True(t, cfg.Keymap["quit"].Matches(ev), "expected remapped quit to Ctrl+X")
	require.True(t, cfg.Keymap["reload"].Matches(tcell.NewEventKey(tcell.KeyCtrlL, 0, 0)))

	opts := cfg.LogOptions()
	require.Equal(t, "debug", opts.Level)
	require.Equal(t, 2, opts.MaxFiles)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad toml":        "[store\npath=",
		"unknown command": "[keymap]\nfly = \"Ctrl+F\"\n",
		"bad binding":     "[keymap]\nquit = \"Meta+Q\"\n",
		"bad level":       "[logging]\nlevel = \"chatty\"\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path)
		require.ErrorIsf(t, err, ErrInvalidConfig, "case %s", name)
	}
}

func TestLoad_EnvLevelValidated(t *testing.T) {
	t.Setenv("CHARNOTES_LOG_LEVEL", "nope")
	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
