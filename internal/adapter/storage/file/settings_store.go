package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// SettingsStore keeps the current simulation settings in one line-format
// file and the station defaults in another.
type SettingsStore struct {
	fs           afero.Fs
	settingsFile string
	defaultsFile string
	base         config.Simulation
	log          *zap.Logger
}

var _ ports.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore returns a store over fs. base fills in whatever neither
// file provides.
func NewSettingsStore(fs afero.Fs, cfg config.StorageConfig, base config.Simulation, log *zap.Logger) *SettingsStore {
	return &SettingsStore{
		fs:           fs,
		settingsFile: cfg.SettingsFile,
		defaultsFile: cfg.DefaultsFile,
		base:         base,
		log:          log,
	}
}

// Load reads the current settings, falling back to the defaults file and
// then to base when a file does not exist.
func (s *SettingsStore) Load(ctx context.Context) (config.Simulation, error) {
	defaults, err := s.Defaults(ctx)
	if err != nil {
		return s.base, err
	}

	out, found, err := s.read(s.settingsFile, defaults)
	if err != nil {
		return defaults, err
	}
	if !found {
		s.log.Info("No saved settings, using defaults", zap.String("file", s.settingsFile))
	}
	return out, nil
}

// Defaults reads the defaults file over base.
func (s *SettingsStore) Defaults(ctx context.Context) (config.Simulation, error) {
	out, _, err := s.read(s.defaultsFile, s.base)
	return out, err
}

func (s *SettingsStore) Save(ctx context.Context, settings config.Simulation) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.write(s.settingsFile, settings)
}

func (s *SettingsStore) read(path string, base config.Simulation) (config.Simulation, bool, error) {
	if path == "" {
		return base, false, nil
	}
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return base, false, nil
	}
	if err != nil {
		return base, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := config.UnmarshalLines(bytes.NewReader(data), base)
	if err != nil {
		return base, false, fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return base, false, fmt.Errorf("%s: %w", path, err)
	}
	return out, true, nil
}

// write replaces path through a temporary file so readers never see a
// half-written settings file.
func (s *SettingsStore) write(path string, settings config.Simulation) error {
	if path == "" {
		return errors.New("no settings file configured")
	}
	var buf bytes.Buffer
	if err := config.MarshalLines(&buf, settings); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
