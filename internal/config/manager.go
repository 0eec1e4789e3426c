package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager owns a config.json on disk and keeps an in-memory copy in sync.
type Manager struct {
	path     string
	mu       sync.RWMutex
	cfg      Config
	debounce time.Duration
}

type managerOptions struct {
	configDir string
	debounce  time.Duration
}

type ManagerOption func(*managerOptions)

// WithConfigDir places config.json under dir instead of the default location.
func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		o.configDir = dir
	}
}

func NewManager(opts ...ManagerOption) (*Manager, error) {
	options := managerOptions{debounce: 300 * time.Millisecond}
	for _, opt := range opts {
		opt(&options)
	}

	configDir := options.configDir
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configDir = filepath.Join(home, ".stocksage")
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, "config.json")
	cfg, err := loadOrCreateConfig(path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path:     path,
		cfg:      cfg,
		debounce: options.debounce,
	}, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string { return m.path }

// UpdateFromJSON replaces the in-memory config from a JSON document and
// persists it.
func (m *Manager) UpdateFromJSON(data string) error {
	var cfg Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return fmt.Errorf("parse config update: %w", err)
	}

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	return writeConfigFile(m.path, cfg)
}

// Watch reloads the config whenever the file changes on disk, invoking
// onChange with the fresh copy. It returns once the watcher is installed;
// watching stops when ctx is cancelled.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.path || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(m.debounce, func() {
					cfg, err := readConfigFile(m.path)
					if err != nil {
						log.Printf("Failed to reload config: %v", err)
						return
					}
					m.mu.Lock()
					m.cfg = cfg
					m.mu.Unlock()
					if onChange != nil {
						onChange(cfg)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config watcher error: %v", err)
			}
		}
	}()

	return nil
}

func loadOrCreateConfig(path string) (Config, error) {
	if _, err := os.Stat(path); err == nil {
		return readConfigFile(path)
	}
	cfg := *DefaultConfig()
	if err := writeConfigFile(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func writeConfigFile(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
