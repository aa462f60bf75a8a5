package config

import (
	"path/filepath"
	"strings"

	"github.com/aleister1102/pagewatch/internal/models"
)

// CSVOutputConfig configures the CSV history sink.
type CSVOutputConfig struct {
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty" validate:"omitempty,dive,historycolumn"`
}

// ParquetOutputConfig enables the Parquet history sink.
type ParquetOutputConfig struct {
	Path string `json:"path" yaml:"path" validate:"required"`
}

// StateOutputConfig configures where monitor state is persisted.
type StateOutputConfig struct {
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,statebackend"`
}

// OutputConfig groups the optional output section of a monitor config.
type OutputConfig struct {
	CSV     *CSVOutputConfig     `json:"csv,omitempty" yaml:"csv,omitempty" validate:"omitempty"`
	Parquet *ParquetOutputConfig `json:"parquet,omitempty" yaml:"parquet,omitempty" validate:"omitempty"`
	State   *StateOutputConfig   `json:"state,omitempty" yaml:"state,omitempty" validate:"omitempty"`
}

// MonitorsFile is one monitor configuration file.
type MonitorsFile struct {
	Version  int              `json:"version,omitempty" yaml:"version,omitempty"`
	Defaults models.Defaults  `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Monitors []models.Monitor `json:"monitors" yaml:"monitors" validate:"required,min=1,dive"`
	Output   OutputConfig     `json:"output,omitempty" yaml:"output,omitempty"`
}

// OutputPaths are the resolved storage locations of one configuration.
type OutputPaths struct {
	StatePath    string
	StateBackend string
	CSVPath      string
	CSVColumns   []string
	ParquetPath  string
}

// ConfigName derives the configuration name from its file path: the base
// name without a .yaml or .yml extension.
func ConfigName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".yaml", ".yml"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

// ResolveOutputPaths fills in every output location the file leaves unset.
// State goes to <dataDir>/<name>-state.json (or .db for sqlite), history to
// <dataDir>/<name>-history.csv. Parquet is only written when configured.
func (f *MonitorsFile) ResolveOutputPaths(configName string, storage StorageConfig) OutputPaths {
	dataDir := storage.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	paths := OutputPaths{StateBackend: storage.StateBackend}
	if paths.StateBackend == "" {
		paths.StateBackend = DefaultStateBackend
	}

	if st := f.Output.State; st != nil {
		paths.StatePath = st.Path
		if st.Backend != "" {
			paths.StateBackend = st.Backend
		}
	}
	if paths.StatePath == "" {
		ext := ".json"
		if paths.StateBackend == "sqlite" {
			ext = ".db"
		}
		paths.StatePath = filepath.Join(dataDir, configName+"-state"+ext)
	}

	if c := f.Output.CSV; c != nil {
		paths.CSVPath = c.Path
		paths.CSVColumns = c.Columns
	}
	if paths.CSVPath == "" {
		paths.CSVPath = filepath.Join(dataDir, configName+"-history.csv")
	}

	if p := f.Output.Parquet; p != nil {
		paths.ParquetPath = p.Path
	}
	return paths
}
