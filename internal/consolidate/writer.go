package consolidate

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"csvwizard/internal/config"
)

// Download writes the pretty-printed result to dir under name and returns
// the written path. An empty name uses [config.DefaultDownloadName].
func (c *Client) Download(dir, name string) (string, error) {
	data, err := c.pretty()
	if err != nil {
		return "", err
	}
	if name == "" {
		name = config.DefaultDownloadName
	}
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	fullPath := filepath.Join(dir, name)

	// Write to a temp file in the same directory, then rename over the target.
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to write consolidated data: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write consolidated data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write consolidated data: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write consolidated data: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write consolidated data: %w", err)
	}

	c.logger.Info("Consolidated data saved", zap.String("path", fullPath))
	return fullPath, nil
}
