package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"warehouse-picking-backend/internal/domains/settings/model"
	"warehouse-picking-backend/internal/domains/settings/repository"
	"warehouse-picking-backend/pkg/cache"
	"warehouse-picking-backend/pkg/logger"
)

const cacheTTL = 5 * time.Minute

type SettingsService interface {
	GetAPIConfig(ctx context.Context) (*model.APIConfig, error)
	UpdateAPIConfig(ctx context.Context, cfg model.APIConfig) error
	// StampSync records the outcome of a sync run on the api_config document.
	StampSync(ctx context.Context, at time.Time, status string) error

	GetNotifierConfig(ctx context.Context) (*model.NotifierConfig, error)
	UpdateNotifierConfig(ctx context.Context, cfg model.NotifierConfig) error

	// EnsureDefaults seeds both singletons on first boot.
	EnsureDefaults(ctx context.Context) error
}

// settingsService is a read-through cache over the settings rows. The cache
// only absorbs the hot reads (every sync tick, every report send); the
// database row stays the source of truth.
type settingsService struct {
	repo  repository.SettingsRepository
	cache cache.Cache
}

func NewSettingsService(repo repository.SettingsRepository, c cache.Cache) SettingsService {
	return &settingsService{repo: repo, cache: c}
}

func cacheKey(name string) string {
	return "settings:" + name
}

func (s *settingsService) load(ctx context.Context, name string, out interface{}) error {
	if cached, err := s.cache.Get(ctx, cacheKey(name)); err == nil {
		if err := json.Unmarshal([]byte(cached), out); err == nil {
			return nil
		}
		// Unreadable cache entry: fall through to the database.
	}

	raw, err := s.repo.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", name, err)
	}

	if err := s.cache.Set(ctx, cacheKey(name), string(raw), cacheTTL); err != nil {
		logger.Error("failed to cache setting", err)
	}
	return nil
}

func (s *settingsService) store(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", name, err)
	}
	if err := s.repo.Upsert(ctx, name, raw); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey(name)); err != nil {
		logger.Error("failed to invalidate setting cache", err)
	}
	return nil
}

// =====================================================
// API CONFIG
// =====================================================

func (s *settingsService) GetAPIConfig(ctx context.Context) (*model.APIConfig, error) {
	var cfg model.APIConfig
	if err := s.load(ctx, model.NameAPIConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *settingsService) UpdateAPIConfig(ctx context.Context, cfg model.APIConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Keep the stamped sync metadata; the update payload does not carry it.
	if current, err := s.GetAPIConfig(ctx); err == nil {
		cfg.LastSyncAt = current.LastSyncAt
		cfg.LastSyncStatus = current.LastSyncStatus
	}

	return s.store(ctx, model.NameAPIConfig, cfg)
}

func (s *settingsService) StampSync(ctx context.Context, at time.Time, status string) error {
	cfg, err := s.GetAPIConfig(ctx)
	if err != nil {
		return err
	}
	cfg.LastSyncAt = &at
	cfg.LastSyncStatus = status
	return s.store(ctx, model.NameAPIConfig, *cfg)
}

// =====================================================
// NOTIFIER CONFIG
// =====================================================

func (s *settingsService) GetNotifierConfig(ctx context.Context) (*model.NotifierConfig, error) {
	var cfg model.NotifierConfig
	if err := s.load(ctx, model.NameNotifierConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *settingsService) UpdateNotifierConfig(ctx context.Context, cfg model.NotifierConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.store(ctx, model.NameNotifierConfig, cfg)
}

// =====================================================
// BOOTSTRAP
// =====================================================

func (s *settingsService) EnsureDefaults(ctx context.Context) error {
	if _, err := s.GetAPIConfig(ctx); errors.Is(err, model.ErrSettingNotFound) {
		if err := s.store(ctx, model.NameAPIConfig, model.DefaultAPIConfig()); err != nil {
			return err
		}
		logger.Info("seeded default api config", nil)
	} else if err != nil {
		return err
	}

	if _, err := s.GetNotifierConfig(ctx); errors.Is(err, model.ErrSettingNotFound) {
		if err := s.store(ctx, model.NameNotifierConfig, model.DefaultNotifierConfig()); err != nil {
			return err
		}
		logger.Info("seeded default notifier config", nil)
	} else if err != nil {
		return err
	}

	return nil
}
