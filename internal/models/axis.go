package models

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxActiveAxes is the number of analytical axes that can be active at the same time.
const MaxActiveAxes = 4

var axisCodePattern = regexp.MustCompile(`^[A-Z0-9_]{2,20}$`)

// Axis is an analytical dimension, e.g. Project, Client or Cost Center.
//
// Axes are independent of the chart of accounts. A ledger entry can be tagged
// with one value per active axis.
type Axis struct {
	DefaultModel
	Code        string `json:"code" gorm:"uniqueIndex" example:"PROJECT"`
	Label       string `json:"label" example:"Project"`
	Order       uint   `json:"order" gorm:"column:axis_order;index:axis_active_order,unique,where:active = true" example:"1"` // Position of the axis, 1 to 4
	Required    bool   `json:"required" example:"false"`                                                                      // Entries must be tagged on required axes
	Active      bool   `json:"active" gorm:"index:axis_active_order,unique,where:active = true" example:"true"`
	Description string `json:"description" example:"Customer projects"`
}

// ValidAxisCode reports if the code is a valid axis code.
func ValidAxisCode(code string) bool {
	return axisCodePattern.MatchString(code)
}

// NormalizeAxisCode trims and upper-cases an axis code.
func NormalizeAxisCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (a *Axis) BeforeSave(_ *gorm.DB) error {
	a.Code = NormalizeAxisCode(a.Code)
	a.Label = strings.TrimSpace(a.Label)
	a.Description = strings.TrimSpace(a.Description)

	if !ValidAxisCode(a.Code) {
		return ErrAxisCodeInvalid
	}

	return nil
}

func (Axis) Self() string {
	return "Axis"
}

// Export returns all axes.
func (Axis) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[Axis](db)
}

// AxisValue is a value on an analytical axis, e.g. the project "Website Relaunch".
//
// Values form a hierarchy through ParentID. Values that have been used for
// tagging are deactivated, never deleted.
type AxisValue struct {
	DefaultModel
	AxisID     uuid.UUID  `json:"axisId" gorm:"uniqueIndex:axis_value_code"`
	Axis       Axis       `json:"-"`
	Code       string     `json:"code" gorm:"uniqueIndex:axis_value_code" example:"WEB_RELAUNCH"`
	Label      string     `json:"label" example:"Website Relaunch"`
	ParentID   *uuid.UUID `json:"parentId" example:"e9a9c2a1-1b0c-4f5e-9a0e-0c6f1c2a2d5b"`
	Level      uint       `json:"level" example:"0"` // Depth in the value hierarchy, 0 for root values
	UsageCount uint64     `json:"usageCount" example:"17"`
	Active     bool       `json:"active" example:"true"`
}

func (v *AxisValue) BeforeSave(_ *gorm.DB) error {
	v.Code = strings.TrimSpace(v.Code)
	v.Label = strings.TrimSpace(v.Label)

	if v.Code == "" {
		return ErrValueCodeInvalid
	}

	return nil
}

func (AxisValue) Self() string {
	return "Axis Value"
}

// Export returns all axis values.
func (AxisValue) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[AxisValue](db)
}
