package storage

import (
	"os"
)

// Exists checks if the given file or folder for a path exists
func Exists(path string) bool {
	if path == "" {
		return false
	}

	_, err := os.Stat(path)
	return err == nil
}

// Read reads data from a file
func Read(name string) ([]byte, error) {
	return os.ReadFile(name)
}
