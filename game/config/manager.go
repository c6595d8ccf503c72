package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the ruleset preferred as the default when present.
const DefaultConfigID = "classic"

const ext = ".json"

// Manager handles ruleset loading and caching
type Manager struct {
	fs        afero.Fs
	configDir string
	defaultID string
	defaultC  *engine.GameConfig
	configs   map[string]*engine.GameConfig
	mu        sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a configuration manager reading rulesets from configDir
// on fsys. The directory may be missing or empty; the built-in ruleset is
// used as the default then.
func NewManager(fsys afero.Fs, configDir string) (*Manager, error) {
	if info, err := fsys.Stat(configDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	}

	m := &Manager{
		fs:        fsys,
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	return m, nil
}

// configID strips the extension and rejects anything that is not a plain file name.
func configID(name string) (string, error) {
	id := strings.TrimSuffix(name, ext)
	if id == "" || id != filepath.Base(id) || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	return id, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, err := configID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	config, err := m.read(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another reader may have won the race
	if cached, exists := m.configs[id]; exists {
		return cached, nil
	}
	m.configs[id] = config
	return config, nil
}

func (m *Manager) read(id string) (*engine.GameConfig, error) {
	data, err := afero.ReadFile(m.fs, filepath.Join(m.configDir, id+ext))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, id, err)
	}
	return config, nil
}

// ListConfigs returns information about all valid configurations on disk
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := afero.ReadDir(m.fs, m.configDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*service.ConfigInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ext)
		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:        entry.Name(),
			ConfigID:        id,
			Name:            config.Name,
			Description:     config.Description,
			BoardLength:     config.BoardLength,
			BoardHeight:     config.BoardHeight,
			StartZoneHeight: config.StartZoneHeight,
			WarpPerTurn:     config.WarpPerTurn,
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration and its ID
func (m *Manager) GetDefault() (string, *engine.GameConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultC
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}
	id, _ := configID(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID, m.defaultC = id, config
	return nil
}

// RefreshCache drops cached configurations so the next load reads the disk again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic.json, then the first valid file, then the
// built-in ruleset, which is then also served as "classic".
func (m *Manager) loadDefaultConfig() error {
	id, config := DefaultConfigID, (*engine.GameConfig)(nil)
	builtin := false

	loaded, err := m.LoadConfig(DefaultConfigID)
	switch {
	case err == nil:
		config = loaded
	case errors.Is(err, ErrConfigNotFound), errors.Is(err, ErrInvalidConfig):
		configs, listErr := m.ListConfigs()
		if listErr != nil {
			return listErr
		}
		if len(configs) > 0 {
			id = configs[0].ConfigID
			config, err = m.LoadConfig(id)
			if err != nil {
				return err
			}
		} else {
			config = engine.DefaultGameConfig()
			builtin = true
		}
	default:
		return err
	}

	m.mu.Lock()
	m.defaultID, m.defaultC = id, config
	if builtin {
		m.configs[id] = config
	}
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a configuration and writes it to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	id, err := configID(name)
	if err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := m.fs.MkdirAll(m.configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(m.fs, filepath.Join(m.configDir, id+ext), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
