package db

import (
	"context"
	"errors"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const alertBatchSize = 100

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// FindBySourceID returns the most recent alert derived from a content item.
func (r *AlertRepository) FindBySourceID(ctx context.Context, sourceID string) (*domain.Alert, error) {
	var model alertModel
	err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	alert := mapAlertToDomain(model)
	return &alert, nil
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.CreatedAt = model.CreatedAt.UTC()
	return nil
}

// Update rewrites every column of an existing alert.
func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(*alert)
	result := r.db.WithContext(ctx).Model(&alertModel{ID: model.ID}).Select("*").Omit("id").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BulkInsert stores alerts in batches and skips ids that already exist. The
// returned count only includes inserted rows.
func (r *AlertRepository) BulkInsert(ctx context.Context, alerts []domain.Alert) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}
	models := make([]alertModel, 0, len(alerts))
	for _, alert := range alerts {
		models = append(models, mapAlertToModel(alert))
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&models, alertBatchSize)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *AlertRepository) ListAll(ctx context.Context, newestFirst bool) ([]domain.Alert, error) {
	order := "created_at ASC, id ASC"
	if newestFirst {
		order = "created_at DESC, id ASC"
	}
	var models []alertModel
	if err := r.db.WithContext(ctx).Order(order).Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) DeleteAll(ctx context.Context) (int, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&alertModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// DeduplicateByTitle collapses alerts sharing a title into the most recently
// seen one, inside a single transaction.
func (r *AlertRepository) DeduplicateByTitle(ctx context.Context) (domain.DedupResult, error) {
	var result domain.DedupResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []alertModel
		if err := tx.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
			return err
		}

		groups := domain.PlanTitleDedup(mapAlertsToDomain(models))
		for _, group := range groups {
			if err := tx.Model(&alertModel{}).
				Where("id = ?", group.Keep.ID).
				Update("trigger_count", group.Keep.TriggerCount).Error; err != nil {
				return err
			}
			deleted := tx.Where("id IN ?", group.Delete).Delete(&alertModel{})
			if deleted.Error != nil {
				return deleted.Error
			}
			result.Deleted += int(deleted.RowsAffected)
		}
		result.GroupsProcessed = len(groups)

		var remaining int64
		if err := tx.Model(&alertModel{}).Count(&remaining).Error; err != nil {
			return err
		}
		result.Remaining = int(remaining)
		return nil
	})
	if err != nil {
		return domain.DedupResult{}, err
	}
	return result, nil
}

func (r *AlertRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.db)
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, mapAlertToDomain(model))
	}
	return alerts
}

func mapAlertToDomain(model alertModel) domain.Alert {
	return domain.Alert{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		Type:          domain.AlertType(model.Type),
		Enabled:       model.Enabled,
		Icon:          model.Icon,
		Config:        decodeMap(model.Config),
		CreatedAt:     model.CreatedAt.UTC(),
		LastTriggered: utcPtr(model.LastTriggered),
		TriggerCount:  model.TriggerCount,
		Priority:      domain.Priority(model.Priority),
		SourceTitle:   model.SourceTitle,
		SourceID:      model.SourceID,
		Keywords:      decodeStrings(model.Keywords),
		Metadata:      decodeMap(model.Metadata),
	}
}

func mapAlertToModel(alert domain.Alert) alertModel {
	return alertModel{
		ID:            alert.ID,
		Title:         alert.Title,
		Description:   alert.Description,
		Type:          string(alert.Type),
		Enabled:       alert.Enabled,
		Icon:          alert.Icon,
		Config:        encodeMap(alert.Config),
		CreatedAt:     alert.CreatedAt.UTC(),
		LastTriggered: utcPtr(alert.LastTriggered),
		TriggerCount:  alert.TriggerCount,
		Priority:      string(alert.Priority),
		SourceTitle:   alert.SourceTitle,
		SourceID:      alert.SourceID,
		Keywords:      encodeStrings(alert.Keywords),
		Metadata:      encodeMap(alert.Metadata),
	}
}
