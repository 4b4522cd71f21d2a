package filesystem

import (
	"canvas-templates/core"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a filesystem token store rooted at basePath.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) tokenPath() string {
	return filepath.Join(s.basePath, core.TokenKey)
}

func (s *fsStore) Load(ctx context.Context) (string, error) {
	filePath := s.tokenPath()
	log := logrus.WithField("file_path", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", core.ErrTokenNotFound
		}
		log.WithError(err).Error("Failed to read token file")
		return "", err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", core.ErrTokenNotFound
	}
	return token, nil
}

// Save writes the token through a temporary file so a crash never leaves a
// truncated token behind.
func (s *fsStore) Save(ctx context.Context, token string) error {
	filePath := s.tokenPath()
	log := logrus.WithField("file_path", filePath)

	tmp, err := os.CreateTemp(s.basePath, core.TokenKey+".*")
	if err != nil {
		log.WithError(err).Error("Failed to create temporary token file")
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		log.WithError(err).Error("Failed to write token file")
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		log.WithError(err).Error("Failed to replace token file")
		return err
	}

	log.Debug("Token saved")
	return nil
}

func (s *fsStore) Clear(ctx context.Context) error {
	filePath := s.tokenPath()
	err := os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithField("file_path", filePath).WithError(err).Error("Failed to delete token file")
		return err
	}
	return nil
}
