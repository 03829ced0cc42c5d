package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Category subdirectories of the public asset root
const (
	CategoryHeroes = "heroes"
	CategoryItems  = "items"
	CategoryPowers = "powers"
)

// CopyStats counts what a copy pass did
type CopyStats struct {
	Copied  int
	Skipped int
	Failed  int
}

// CopyFiles copies each file into dstDir, skipping files that already exist
// there with the same size. Individual copy failures are logged and counted,
// never returned.
func CopyFiles(files []string, dstDir string) (CopyStats, error) {
	var stats CopyStats
	if len(files) == 0 {
		return stats, nil
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create asset dir: %w", err)
	}

	for _, src := range files {
		dst := filepath.Join(dstDir, filepath.Base(src))
		copied, err := CopyIfChanged(src, dst)
		switch {
		case err != nil:
			stats.Failed++
			assetsLog.Warn().Err(err).Str("src", src).Msg("failed to copy asset")
		case copied:
			stats.Copied++
		default:
			stats.Skipped++
		}
	}
	return stats, nil
}

// CopyIfChanged copies src to dst unless dst exists with the same size. It
// reports whether a copy happened.
func CopyIfChanged(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.Size() == srcInfo.Size() {
		return false, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".asset-*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return false, err
	}
	return true, nil
}
