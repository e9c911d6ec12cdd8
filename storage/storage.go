package storage

import (
	"io"
	"os"
)

// Storage is the artifact store for exported backup snapshots.
type Storage interface {
	Upload(file io.Reader, filename string) (string, error)
	Download(filename string) (*os.File, error)
	Delete(filename string) error
	Exists(filePath string) (bool, error)
}
