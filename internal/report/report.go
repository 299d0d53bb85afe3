// Package report escribe el resumen YAML de una corrida de seed.
package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialseed/internal/bootstrap"
)

// Report resumen de una corrida. Los targets que no corrieron quedan nil.
type Report struct {
	RunID     string                    `yaml:"run_id"`
	Generated time.Time                 `yaml:"generated"`
	Driver    string                    `yaml:"driver"`
	DSN       string                    `yaml:"dsn"` // enmascarado
	Messages  *bootstrap.MessagesResult `yaml:"messages,omitempty"`
	Admin     *bootstrap.AdminResult    `yaml:"admin,omitempty"`
	Status    *bootstrap.Status         `yaml:"status,omitempty"`
	Errors    []string                  `yaml:"errors,omitempty"`
}

// Write serializa r y lo escribe en path de forma atómica.
func Write(path string, r *Report) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := atomicWriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Read carga un reporte previo.
func Read(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", path, err)
	}
	return &r, nil
}

// atomicWriteFile: write tmp → Sync → Close → Chmod → Rename.
// Si rename falla (Windows con destino bloqueado) intenta remove+rename.
func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
