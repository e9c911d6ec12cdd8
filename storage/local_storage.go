package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// LocalStorage keeps snapshot artifacts on the local filesystem under a
// base directory. Intended for development and single-node deployments.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) resolve(name string) string {
	return filepath.Join(s.basePath, name)
}

func (s *LocalStorage) Upload(artifact io.Reader, name string) (string, error) {
	path := s.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	written, err := io.Copy(out, artifact)
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"artifact": name, "bytes": written}).Info("Artifact stored locally")
	return path, nil
}

func (s *LocalStorage) Download(name string) (*os.File, error) {
	return os.Open(s.resolve(name))
}

func (s *LocalStorage) Delete(name string) error {
	logrus.Infof("Removing local artifact: %s", name)
	return os.Remove(s.resolve(name))
}

func (s *LocalStorage) Exists(name string) (bool, error) {
	_, err := os.Stat(s.resolve(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
