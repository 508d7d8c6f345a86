package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the filesystem Store used in local mode. Prefixes become
// subdirectories of the root.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{root: root}
}

// LatestCSV picks the CSV with the newest modification time under
// root/prefix.
func (d *Dir) LatestCSV(_ context.Context, prefix string) (string, []byte, error) {
	dir := filepath.Join(d.root, prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var (
		latestName string
		latestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestName = e.Name()
		}
	}

	if latestName == "" {
		return "", nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, latestName))
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", latestName, err)
	}
	return latestName, data, nil
}

// Put writes data to root/prefix/name, creating the directory as needed.
func (d *Dir) Put(_ context.Context, prefix, name string, data []byte) error {
	dir := filepath.Join(d.root, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("💾 Saved %s\n", path)
	return nil
}
