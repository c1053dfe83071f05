// Package catalog содержит бизнес-логику каталога услуг: публичную
// витрину с кешированием и административные операции над записями.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/devrathore/csc-portal/internal/models"
)

// ErrServiceNotFound возвращается, когда услуга с указанным ID отсутствует.
var ErrServiceNotFound = errors.New("service not found")

// Ключ и время жизни кеша публичной витрины.
const (
	activeServicesCacheKey = "services:active"
	activeServicesCacheTTL = 5 * time.Minute
)

// ServiceRepository определяет методы для работы с каталогом в хранилище.
type ServiceRepository interface {
	// CreateService добавляет новую услугу и возвращает её ID.
	CreateService(ctx context.Context, svc models.Service) (string, error)
	// UpdateService обновляет услугу по ID, возвращает число изменённых строк.
	UpdateService(ctx context.Context, svc models.Service, id string) (int, error)
	// RemoveService удаляет услугу по ID, возвращает число удалённых строк.
	RemoveService(ctx context.Context, id string) (int, error)
	// ReadService возвращает услугу по ID.
	ReadService(ctx context.Context, id string) (*models.Service, error)
	// ListActiveServices возвращает активные услуги витрины.
	ListActiveServices(ctx context.Context) ([]*models.Service, error)
	// ListAllServices возвращает все услуги, включая неактивные.
	ListAllServices(ctx context.Context) ([]*models.Service, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику каталога услуг.
type Service struct {
	repo  ServiceRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ServiceRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListActive возвращает публичную витрину: только активные услуги.
// Результат кешируется, кеш сбрасывается административными операциями.
func (s *Service) ListActive(ctx context.Context) ([]*models.Service, error) {
	var cached []*models.Service
	found, err := s.cache.Get(activeServicesCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read services cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	result, err := s.repo.ListActiveServices(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(activeServicesCacheKey, result, activeServicesCacheTTL); err != nil {
		s.log.Warn("failed to cache services", slog.Any("err", err))
	}
	return result, nil
}

// Read возвращает услугу по ID. Неактивные услуги тоже доступны:
// они остаются целями уже оформленных заказов.
func (s *Service) Read(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.ReadService(ctx, id)
	if err != nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

// ListAll возвращает весь каталог для администратора.
func (s *Service) ListAll(ctx context.Context) ([]*models.Service, error) {
	return s.repo.ListAllServices(ctx)
}

// Create добавляет услугу каталога и сбрасывает кеш витрины.
func (s *Service) Create(ctx context.Context, req models.DummyService) (string, error) {
	id, err := s.repo.CreateService(ctx, serviceFromRequest(req))
	if err != nil {
		return "", err
	}
	s.invalidateShowcase()
	s.log.Info("created service", slog.String("id", id))
	return id, nil
}

// Update обновляет услугу каталога и сбрасывает кеш витрины.
func (s *Service) Update(ctx context.Context, id string, req models.DummyService) error {
	count, err := s.repo.UpdateService(ctx, serviceFromRequest(req), id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrServiceNotFound
	}
	s.invalidateShowcase()
	s.log.Info("updated service", slog.String("id", id))
	return nil
}

// Remove жёстко удаляет услугу каталога. Существующие заказы хранят
// денормализованное название и не затрагиваются.
func (s *Service) Remove(ctx context.Context, id string) error {
	count, err := s.repo.RemoveService(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrServiceNotFound
	}
	s.invalidateShowcase()
	s.log.Info("removed service", slog.String("id", id))
	return nil
}

func (s *Service) invalidateShowcase() {
	if err := s.cache.Invalidate(activeServicesCacheKey); err != nil {
		s.log.Warn("failed to invalidate services cache", slog.Any("err", err))
	}
}

func serviceFromRequest(req models.DummyService) models.Service {
	var processing *string
	if trimmed := strings.TrimSpace(req.ProcessingTime); trimmed != "" {
		processing = &trimmed
	}
	return models.Service{
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		Icon:              strings.TrimSpace(req.Icon),
		Category:          strings.TrimSpace(req.Category),
		IsActive:          req.IsActive,
		Price:             req.Price,
		ProcessingTime:    processing,
		DocumentsRequired: ParseDocumentsRequired(req.DocumentsRequiredText),
	}
}

// ParseDocumentsRequired нормализует текстовый блок «требуемые
// документы»: по одному названию на строку, пустые строки и краевые
// пробелы отбрасываются, порядок сохраняется.
func ParseDocumentsRequired(text string) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
