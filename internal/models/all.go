package models

import (
	"context"
	"encoding/json"
	"reflect"

	"gorm.io/gorm"
)

// Exporter is implemented by every resource that is part of a full export.
type Exporter interface {
	Self() string
	Export(db *gorm.DB) (json.RawMessage, error)
}

// Registry lists all exportable models so that operations that affect every
// model do not need to enumerate them again.
var Registry = []Exporter{
	Axis{},
	AxisValue{},
	LedgerEntry{},
	TaggedEntry{},
	AllocationRule{},
	AllocationExecution{},
	BudgetLine{},
	BudgetAlert{},
}

// export returns all instances of a model, including soft-deleted ones, as JSON.
func export[T any](db *gorm.DB) (json.RawMessage, error) {
	var resources []T
	err := db.Unscoped().Find(&resources).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&resources)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// Export returns the export of every model in the Registry, keyed by the
// name of the model type.
func Export(ctx context.Context, db *gorm.DB) (map[string]json.RawMessage, error) {
	resources := make(map[string]json.RawMessage, len(Registry))

	for _, model := range Registry {
		b, err := model.Export(db.WithContext(ctx))
		if err != nil {
			return nil, err
		}

		resources[reflect.TypeOf(model).Name()] = b
	}

	return resources, nil
}
