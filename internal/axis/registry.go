// Package axis manages the analytical axes and their values.
package axis

import (
	"context"
	"strings"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Registry is the system of record for axes and axis values.
type Registry struct {
	db *gorm.DB
}

// NewRegistry returns a Registry that stores axes in db.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// AxisSpec describes an axis to register.
type AxisSpec struct {
	Code        string `json:"code" example:"PROJECT"`
	Label       string `json:"label" example:"Project"`
	Order       uint   `json:"order" example:"1"`
	Required    bool   `json:"required" example:"false"`
	Description string `json:"description" example:"Customer projects"`
}

// ValueSpec describes an axis value to add.
type ValueSpec struct {
	Code     string     `json:"code" example:"WEB_RELAUNCH"`
	Label    string     `json:"label" example:"Website Relaunch"`
	ParentID *uuid.UUID `json:"parentId" example:"e9a9c2a1-1b0c-4f5e-9a0e-0c6f1c2a2d5b"`
}

// RegisterAxis creates a new active axis.
func (r *Registry) RegisterAxis(ctx context.Context, spec AxisSpec) (models.Axis, error) {
	axis := models.Axis{
		Code:        models.NormalizeAxisCode(spec.Code),
		Label:       strings.TrimSpace(spec.Label),
		Order:       spec.Order,
		Required:    spec.Required,
		Active:      true,
		Description: spec.Description,
	}

	if !models.ValidAxisCode(axis.Code) {
		return models.Axis{}, models.ErrAxisCodeInvalid
	}

	if axis.Label == "" {
		return models.Axis{}, models.ErrAxisLabelEmpty
	}

	if axis.Order < 1 || axis.Order > models.MaxActiveAxes {
		return models.Axis{}, models.ErrAxisOrderInvalid
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCapacity(tx, uuid.Nil); err != nil {
			return err
		}

		return tx.Create(&axis).Error
	})
	if err != nil {
		return models.Axis{}, err
	}

	log.Info().Str("axis", axis.Code).Uint("order", axis.Order).Msg("registered axis")
	return axis, nil
}

// checkCapacity returns ErrAxisLimitReached if activating another axis would
// exceed the active axis limit. The axis with the given id is not counted.
func checkCapacity(tx *gorm.DB, except uuid.UUID) error {
	var active int64
	err := tx.Model(&models.Axis{}).Where("active = ? AND id <> ?", true, except).Count(&active).Error
	if err != nil {
		return err
	}

	if active >= models.MaxActiveAxes {
		return models.ErrAxisLimitReached
	}

	return nil
}

// Axis returns the axis with the given ID.
func (r *Registry) Axis(ctx context.Context, id uuid.UUID) (models.Axis, error) {
	var axis models.Axis
	err := r.db.WithContext(ctx).First(&axis, "id = ?", id).Error
	return axis, err
}

// AxisByCode returns the axis with the given code.
func (r *Registry) AxisByCode(ctx context.Context, code string) (models.Axis, error) {
	var axis models.Axis
	err := r.db.WithContext(ctx).First(&axis, "code = ?", models.NormalizeAxisCode(code)).Error
	return axis, err
}

// Axes returns all axes ordered by their order.
func (r *Registry) Axes(ctx context.Context) ([]models.Axis, error) {
	var axes []models.Axis
	err := r.db.WithContext(ctx).Order("active DESC, axis_order ASC, code ASC").Find(&axes).Error
	return axes, err
}

// ActiveAxes returns the active axes ordered by their order.
func (r *Registry) ActiveAxes(ctx context.Context) ([]models.Axis, error) {
	var axes []models.Axis
	err := r.db.WithContext(ctx).Where(&models.Axis{Active: true}).Order("axis_order ASC").Find(&axes).Error
	return axes, err
}

// DeactivateAxis deactivates an axis. Required axes cannot be deactivated.
func (r *Registry) DeactivateAxis(ctx context.Context, id uuid.UUID) (models.Axis, error) {
	axis, err := r.Axis(ctx, id)
	if err != nil {
		return models.Axis{}, err
	}

	if axis.Required {
		return models.Axis{}, models.ErrAxisRequired
	}

	if !axis.Active {
		return axis, nil
	}

	axis.Active = false
	err = r.db.WithContext(ctx).Model(&axis).Select("Active").Updates(&axis).Error
	if err != nil {
		return models.Axis{}, err
	}

	log.Info().Str("axis", axis.Code).Msg("deactivated axis")
	return axis, nil
}

// ActivateAxis activates an inactive axis again.
//
// The axis keeps its order, which must not be used by another active axis.
func (r *Registry) ActivateAxis(ctx context.Context, id uuid.UUID) (models.Axis, error) {
	var axis models.Axis

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&axis, "id = ?", id).Error
		if err != nil {
			return err
		}

		if axis.Active {
			return nil
		}

		if err := checkCapacity(tx, axis.ID); err != nil {
			return err
		}

		axis.Active = true
		return tx.Model(&axis).Select("Active").Updates(&axis).Error
	})
	if err != nil {
		return models.Axis{}, err
	}

	return axis, nil
}

// ReorderAxes swaps the order of two active axes.
//
// The swap happens in a single transaction. The first axis is parked on
// order 0 so that the unique order index never sees a duplicate.
func (r *Registry) ReorderAxes(ctx context.Context, idA, idB uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a, b models.Axis
		if err := tx.First(&a, "id = ?", idA).Error; err != nil {
			return err
		}

		if err := tx.First(&b, "id = ?", idB).Error; err != nil {
			return err
		}

		if !a.Active || !b.Active {
			return models.ErrAxisInactive
		}

		orderA, orderB := a.Order, b.Order

		for _, step := range []struct {
			axis  *models.Axis
			order uint
		}{
			{&a, 0},
			{&b, orderA},
			{&a, orderB},
		} {
			step.axis.Order = step.order
			if err := tx.Model(step.axis).Select("Order").Updates(step.axis).Error; err != nil {
				return err
			}
		}

		log.Info().Str("a", a.Code).Str("b", b.Code).Msg("swapped axis order")
		return nil
	})
}

// AddValue adds a value to an active axis.
func (r *Registry) AddValue(ctx context.Context, axisID uuid.UUID, spec ValueSpec) (models.AxisValue, error) {
	value := models.AxisValue{
		AxisID:   axisID,
		Code:     strings.TrimSpace(spec.Code),
		Label:    spec.Label,
		ParentID: spec.ParentID,
		Active:   true,
	}

	if value.Code == "" {
		return models.AxisValue{}, models.ErrValueCodeInvalid
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var axis models.Axis
		if err := tx.First(&axis, "id = ?", axisID).Error; err != nil {
			return err
		}

		if !axis.Active {
			return models.ErrAxisInactive
		}

		if value.ParentID != nil {
			var parent models.AxisValue
			if err := tx.First(&parent, "id = ?", *value.ParentID).Error; err != nil {
				return err
			}

			if parent.AxisID != axisID {
				return models.ErrValueParentMismatch
			}
			value.Level = parent.Level + 1
		}

		return tx.Create(&value).Error
	})
	if err != nil {
		return models.AxisValue{}, err
	}

	return value, nil
}

// Value returns the axis value with the given ID.
func (r *Registry) Value(ctx context.Context, id uuid.UUID) (models.AxisValue, error) {
	var value models.AxisValue
	err := r.db.WithContext(ctx).First(&value, "id = ?", id).Error
	return value, err
}

// ValueByCode returns the value with the given code on the axis with the given code.
func (r *Registry) ValueByCode(ctx context.Context, axisCode, valueCode string) (models.AxisValue, error) {
	var value models.AxisValue
	err := r.db.WithContext(ctx).
		Joins("JOIN axes ON axes.id = axis_values.axis_id AND axes.deleted_at IS NULL").
		Where("axes.code = ? AND axis_values.code = ?", models.NormalizeAxisCode(axisCode), strings.TrimSpace(valueCode)).
		First(&value).Error
	return value, err
}

// Values returns all values of an axis ordered by level and code.
func (r *Registry) Values(ctx context.Context, axisID uuid.UUID) ([]models.AxisValue, error) {
	var values []models.AxisValue
	err := r.db.WithContext(ctx).Where(&models.AxisValue{AxisID: axisID}).Order("level ASC, code ASC").Find(&values).Error
	return values, err
}

// DeactivateValue deactivates an axis value. It stays available for
// historical tagged entries.
func (r *Registry) DeactivateValue(ctx context.Context, id uuid.UUID) (models.AxisValue, error) {
	value, err := r.Value(ctx, id)
	if err != nil {
		return models.AxisValue{}, err
	}

	value.Active = false
	err = r.db.WithContext(ctx).Model(&value).Select("Active").Updates(&value).Error
	return value, err
}

// DeleteValue deletes an axis value that has never been used.
// Values that have been used are deactivated instead. The returned bool
// reports if the value was deleted.
func (r *Registry) DeleteValue(ctx context.Context, id uuid.UUID) (bool, error) {
	value, err := r.Value(ctx, id)
	if err != nil {
		return false, err
	}

	if value.UsageCount > 0 {
		_, err := r.DeactivateValue(ctx, id)
		return false, err
	}

	var children int64
	err = r.db.WithContext(ctx).Model(&models.AxisValue{}).Where("parent_id = ?", id).Count(&children).Error
	if err != nil {
		return false, err
	}

	if children > 0 {
		_, err := r.DeactivateValue(ctx, id)
		return false, err
	}

	err = r.db.WithContext(ctx).Delete(&value).Error
	if err != nil {
		return false, err
	}

	return true, nil
}

// IncrementUsage increments the usage count of the values by one per
// occurrence. It must be called in the transaction that creates the tags.
func IncrementUsage(tx *gorm.DB, valueIDs ...uuid.UUID) error {
	for _, id := range valueIDs {
		err := tx.Model(&models.AxisValue{}).Where("id = ?", id).UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
		if err != nil {
			return err
		}
	}

	return nil
}
