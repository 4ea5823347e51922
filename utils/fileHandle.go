package utils

import (
	"os"
	"path/filepath"
)

// SaveArtifact writes data to destDir/filename, creating the directory if
// needed, and returns the full path
func SaveArtifact(destDir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	filePath := filepath.Join(destDir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", err
	}

	return filePath, nil
}

// RemoveFileIfExists deletes a file, ignoring the case where it is already gone
func RemoveFileIfExists(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
