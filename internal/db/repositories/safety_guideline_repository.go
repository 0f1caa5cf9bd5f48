package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// priorityOrder sorts by urgency rather than by label
const priorityOrder = `CASE priority
	WHEN 'critical' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0 END DESC`

// SafetyGuidelineRepository manages safety guidelines with GORM
type SafetyGuidelineRepository struct {
	base
}

func NewSafetyGuidelineRepository(db *gorm.DB, changes ChangePublisher) *SafetyGuidelineRepository {
	return &SafetyGuidelineRepository{base{db: db, changes: changes}}
}

// List returns guidelines matching filters, most urgent first then by title
func (r *SafetyGuidelineRepository) List(ctx context.Context, filters dtos.GuidelineFilters) ([]gormModels.SafetyGuideline, error) {
	var guidelines []gormModels.SafetyGuideline

	q := r.db.WithContext(ctx)
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}

	err := q.Order(priorityOrder).Order("title ASC").Find(&guidelines).Error
	if err != nil {
		return nil, storeError("list", "safety guidelines", "", err)
	}
	return guidelines, nil
}

func (r *SafetyGuidelineRepository) GetByID(ctx context.Context, id string) (*gormModels.SafetyGuideline, error) {
	var g gormModels.SafetyGuideline
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, storeError("fetch", "safety guideline", id, err)
	}
	return &g, nil
}

func (r *SafetyGuidelineRepository) Create(ctx context.Context, in dtos.GuidelineInput) (*gormModels.SafetyGuideline, error) {
	actor, err := authorize(ctx, auth.ActionManageSafetyGuidelines)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	author := actor.UserID()
	g := gormModels.SafetyGuideline{
		Title:       in.Title,
		Content:     in.Content,
		Category:    in.Category,
		Priority:    in.Priority,
		DocumentURL: in.DocumentURL,
		CreatedBy:   &author,
	}
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, storeError("create", "safety guideline", "", err)
	}

	r.emit(ctx, constants.TableSafetyGuidelines, realtime.EventInsert, &g, nil)
	return &g, nil
}

func (r *SafetyGuidelineRepository) Update(ctx context.Context, id string, patch dtos.GuidelinePatch) (*gormModels.SafetyGuideline, error) {
	if _, err := authorize(ctx, auth.ActionManageSafetyGuidelines); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var before, after gormModels.SafetyGuideline
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.Category != nil {
			updates["category"] = *patch.Category
		}
		if patch.Priority != nil {
			updates["priority"] = *patch.Priority
		}
		if patch.DocumentURL != nil {
			updates["document_url"] = *patch.DocumentURL
		}
		if len(updates) > 0 {
			if err := tx.Model(&gormModels.SafetyGuideline{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return nil, storeError("update", "safety guideline", id, err)
	}

	r.emit(ctx, constants.TableSafetyGuidelines, realtime.EventUpdate, &after, &before)
	return &after, nil
}

func (r *SafetyGuidelineRepository) Delete(ctx context.Context, id string) (string, error) {
	if _, err := authorize(ctx, auth.ActionManageSafetyGuidelines); err != nil {
		return "", err
	}

	var g gormModels.SafetyGuideline
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&g).Error; err != nil {
			return err
		}
		return tx.Delete(&gormModels.SafetyGuideline{}, "id = ?", id).Error
	})
	if err != nil {
		return "", storeError("delete", "safety guideline", id, err)
	}

	r.emit(ctx, constants.TableSafetyGuidelines, realtime.EventDelete, nil, &g)
	return id, nil
}
