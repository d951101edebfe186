// Package config loads and watches the YAML config file that drives the
// sessiond service.
package config

import (
	"os"
	"path/filepath"

	"github.com/df-mc/atomic"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Unmarshal decodes a raw config map into a typed struct. Durations and IPs
// may be given as strings.
func Unmarshal(cfg map[string]any, v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToIPHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(cfg)
}

type OnChange func(data map[string]any)

type Config interface {
	Read() (map[string]any, error)
	Close() error
}

type fileConfig struct {
	path     string
	onChange OnChange
	logger   *zap.Logger
	data     *atomic.Value[map[string]any]
	watcher  *fsnotify.Watcher
}

// New reads the config file at path. If onChange is not nil the file is
// watched and reloads are delivered through the callback.
func New(path string, onChange OnChange, logger *zap.Logger) (Config, error) {
	cfg := &fileConfig{
		path:     path,
		onChange: onChange,
		logger:   logger,
		data:     atomic.NewValue[map[string]any](nil),
	}

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.data.Store(data)

	if onChange != nil {
		if err := cfg.watch(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func readConfigFile(path string) (map[string]any, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if err := yaml.Unmarshal(bb, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *fileConfig) Read() (map[string]any, error) {
	data := c.data.Load()
	if data == nil {
		return readConfigFile(c.path)
	}
	return data, nil
}

func (c *fileConfig) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = w

	// editors replace files instead of writing them in place,
	// so the parent directory is watched
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		_ = w.Close()
		return err
	}

	go c.watchLoop()
	return nil
}

func (c *fileConfig) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(c.path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			data, err := readConfigFile(c.path)
			if err != nil {
				c.logger.Error("failed to reload config",
					zap.Error(err),
					zap.String("config", c.path),
				)
				continue
			}

			c.logger.Info("config changed",
				zap.String("config", c.path),
			)

			c.data.Store(data)
			c.onChange(data)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("error while watching config",
				zap.Error(err),
			)
		}
	}
}

func (c *fileConfig) Close() error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}
