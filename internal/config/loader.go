package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dario.cat/mergo"
	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
	"gopkg.in/yaml.v3"
)

// BuiltinDefaults returns the fetch defaults applied beneath a file's own
// defaults section.
func BuiltinDefaults() models.Defaults {
	return models.Defaults{
		Timeout:   DefaultTimeoutMillis,
		Retries:   models.IntPtr(DefaultRetries),
		UserAgent: DefaultUserAgent,
	}
}

// LoadMonitorsFile reads, expands, decodes, defaults and validates a monitor
// config file.
func LoadMonitorsFile(path string) (*MonitorsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, checkerrors.NewConfigFileNotFound(path)
		}
		return nil, common.WrapError(err, fmt.Sprintf("failed to read config file %s", path))
	}
	return ParseMonitorsFile(path, data)
}

// ParseMonitorsFile is LoadMonitorsFile over already-read content; path is
// only used in error messages.
func ParseMonitorsFile(path string, data []byte) (*MonitorsFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, checkerrors.NewConfigYAMLParse(path, err)
	}

	if problems := normalizeNode(&doc, ""); len(problems) > 0 {
		return nil, checkerrors.NewConfigValidation(path, problems)
	}

	file := &MonitorsFile{}
	if doc.Kind != 0 {
		if err := doc.Decode(file); err != nil {
			var typeErr *yaml.TypeError
			if errors.As(err, &typeErr) {
				return nil, checkerrors.NewConfigValidation(path, typeErr.Errors)
			}
			return nil, checkerrors.NewConfigYAMLParse(path, err)
		}
	}

	if err := applyDefaults(file); err != nil {
		return nil, common.WrapError(err, "failed to apply config defaults")
	}

	if err := ValidateMonitorsFile(path, file); err != nil {
		return nil, err
	}
	return file, nil
}

// applyDefaults merges the built-in defaults under the file defaults, then
// the file defaults under every monitor. Values already set win, including
// an explicit retries: 0.
func applyDefaults(file *MonitorsFile) error {
	if err := mergo.Merge(&file.Defaults, BuiltinDefaults(), mergo.WithoutDereference); err != nil {
		return err
	}

	for i := range file.Monitors {
		m := &file.Monitors[i]
		settings := models.Defaults{Timeout: m.Timeout, Retries: m.Retries}
		if err := mergo.Merge(&settings, file.Defaults, mergo.WithoutDereference); err != nil {
			return err
		}
		m.Timeout = settings.Timeout
		if settings.Retries != nil {
			m.Retries = models.IntPtr(*settings.Retries)
		}
	}
	return nil
}
