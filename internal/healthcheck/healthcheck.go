package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/limits"
)

// ComponentStatus represents the health of one thing nllfacts depends on.
type ComponentStatus struct {
	Name   string
	Detail string // path or value that was checked
	Status string // "ready", "missing", "disabled", "unsupported", "error"
	Error  string
}

// OK reports whether the component does not block an aggregate run.
func (s ComponentStatus) OK() bool {
	return s.Status != "error" && s.Status != "missing"
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string
	EffectiveScope string // "global", "project" or "" for defaults
	WorkDir        ComponentStatus
	CacheDir       ComponentStatus
	MemoryLimits   ComponentStatus
}

// Healthy reports whether every component is usable.
func (r *HealthCheckResult) Healthy() bool {
	return r.WorkDir.OK() && r.CacheDir.OK() && r.MemoryLimits.OK()
}

// Check performs a health check against the given config.
// effectivePath is the config file actually in use (may be empty).
func Check(cfg *config.Config, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
		WorkDir:        checkWorkDir(cfg.WorkDir),
		CacheDir:       checkCacheDir(cfg.CacheDir),
		MemoryLimits:   checkMemoryLimits(cfg),
	}, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".nllfacts")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkWorkDir(dir string) ComponentStatus {
	status := ComponentStatus{Name: "work directory", Detail: dir}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		status.Status = "missing"
		status.Error = "directory does not exist; pass crate directories explicitly or create it"
	case err != nil:
		status.Status = "error"
		status.Error = err.Error()
	case !info.IsDir():
		status.Status = "error"
		status.Error = "not a directory"
	default:
		status.Status = "ready"
	}
	return status
}

// checkCacheDir verifies the cache directory can be created and written.
func checkCacheDir(dir string) ComponentStatus {
	status := ComponentStatus{Name: "cache directory", Detail: dir}
	if dir == "" {
		status.Status = "disabled"
		return status
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		status.Status = "error"
		status.Error = fmt.Sprintf("not writable: %v", err)
		return status
	}
	f.Close()
	os.Remove(f.Name())

	status.Status = "ready"
	return status
}

func checkMemoryLimits(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "memory limits"}

	soft, hard, err := cfg.MemoryLimits()
	if err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	if soft == 0 && hard == 0 {
		status.Status = "disabled"
		return status
	}
	status.Detail = fmt.Sprintf("soft %s, hard %s", formatLimit(soft), formatLimit(hard))

	if !limits.Supported() {
		status.Status = "unsupported"
		status.Error = limits.ErrUnsupported.Error()
		return status
	}
	status.Status = "ready"
	return status
}

func formatLimit(n uint64) string {
	if n == 0 {
		return "unlimited"
	}
	return humanize.IBytes(n)
}
