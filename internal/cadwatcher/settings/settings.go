// Package settings persists the converter's tool paths.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// Defaults used when the settings file or one of its keys is absent.
const (
	DefaultExecutable = "blender"
	DefaultScriptName = "cadwatcher_batch.py"
	DefaultExportDir  = "exports"
)

// Settings mirrors the on-disk JSON document.
type Settings struct {
	BlenderPath  string `json:"blender_path"`
	ScriptPath   string `json:"temp_blender_script"`
	ExportFolder string `json:"export_folder"`
}

// Defaults returns the documented default settings.
func Defaults() Settings {
	return Settings{
		BlenderPath:  DefaultExecutable,
		ScriptPath:   filepath.Join(os.TempDir(), DefaultScriptName),
		ExportFolder: DefaultExportDir,
	}
}

// Store reads and writes Settings at a fixed path.
// Relative paths inside the document resolve against the file's directory.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings, filling absent keys with defaults.
// A missing file is not an error.
func (s *Store) Load() (Settings, error) {
	def := Defaults()
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return def, errors.Wrapf(err, "could not read settings %s", s.path)
	}

	var st Settings
	if err := json.Unmarshal(b, &st); err != nil {
		return def, errors.Wrapf(err, "invalid settings file %s", s.path)
	}
	if st.BlenderPath == "" {
		st.BlenderPath = def.BlenderPath
	}
	if st.ScriptPath == "" {
		st.ScriptPath = def.ScriptPath
	}
	if st.ExportFolder == "" {
		st.ExportFolder = def.ExportFolder
	}
	return st, nil
}

// Save writes st and makes sure the export folder exists.
func (s *Store) Save(st Settings) error {
	if err := os.MkdirAll(s.resolve(st.ExportFolder), 0755); err != nil {
		return errors.Wrap(err, "could not create export folder")
	}
	b, err := json.MarshalIndent(st, "", "    ")
	if err != nil {
		return errors.Wrap(err, "could not encode settings")
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "could not create settings directory")
		}
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return errors.Wrapf(err, "could not write settings %s", s.path)
	}
	return nil
}

// Snapshot resolves st into the immutable configuration a run works from.
func (s *Store) Snapshot(st Settings) domain.ToolConfiguration {
	return domain.ToolConfiguration{
		Executable: s.resolveExecutable(st.BlenderPath),
		ScriptPath: s.resolve(st.ScriptPath),
		ExportDir:  s.resolve(st.ExportFolder),
	}
}

func (s *Store) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(s.path), p)
}

// resolveExecutable leaves bare command names alone so they are looked up on PATH.
func (s *Store) resolveExecutable(p string) string {
	if filepath.Base(p) == p {
		return p
	}
	return s.resolve(p)
}
