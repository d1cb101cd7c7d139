package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resto-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageService хранит изображения позиций меню на локальном диске.
type ImageService interface {
	SaveImage(data []byte, originalName string) (string, error)
	ImagePath(fileName string) (string, error)
	DeleteImage(fileName string) error
}

type imageService struct {
	dir    string
	logger *zap.Logger
}

var _ ImageService = (*imageService)(nil)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func NewImageService(dir string, logger *zap.Logger) (ImageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &imageService{dir: dir, logger: logger.Named("image_service")}, nil
}

func (s *imageService) SaveImage(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", models.ErrBadRequest)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", models.ErrBadRequest, ext)
	}
	fileName := uuid.New().String() + ext
	fullPath := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	s.logger.Debug("Изображение сохранено", zap.String("file", fileName), zap.Int("size", len(data)))
	return fileName, nil
}

// ImagePath возвращает абсолютный путь файла, не выпуская за пределы каталога.
func (s *imageService) ImagePath(fileName string) (string, error) {
	clean := filepath.Base(fileName)
	if clean != fileName || clean == "." || clean == "" {
		return "", models.ErrBadRequest
	}
	fullPath := filepath.Join(s.dir, clean)
	if _, err := os.Stat(fullPath); err != nil {
		return "", models.ErrNotFound
	}
	return fullPath, nil
}

func (s *imageService) DeleteImage(fileName string) error {
	fullPath, err := s.ImagePath(fileName)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}
