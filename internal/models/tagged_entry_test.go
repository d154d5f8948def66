package models_test

import (
	"testing"
	"time"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestTaggedEntryValidation() {
	axisID := uuid.New()

	tests := []struct {
		name  string
		entry models.TaggedEntry
		err   error
	}{
		{
			"Empty reference",
			models.TaggedEntry{Amount: decimal.NewFromInt(1)},
			models.ErrTagEntryRefEmpty,
		},
		{
			"Duplicate axis",
			models.TaggedEntry{EntryRef: "JE-1", Assignments: []models.TagAssignment{
				{AxisID: axisID, AxisCode: "CC", ValueCode: "DEV"},
				{AxisID: axisID, AxisCode: "CC", ValueCode: "OPS"},
			}},
			models.ErrTagAxisDuplicate,
		},
		{
			"Too many axes",
			models.TaggedEntry{EntryRef: "JE-1", Assignments: []models.TagAssignment{
				{AxisID: uuid.New()}, {AxisID: uuid.New()}, {AxisID: uuid.New()}, {AxisID: uuid.New()}, {AxisID: uuid.New()},
			}},
			models.ErrTagTooManyAxes,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := suite.db.Create(&tt.entry).Error
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestTaggedEntryValue() {
	entry := models.TaggedEntry{
		EntryRef: "JE-1",
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.NewFromInt(-850),
		Assignments: []models.TagAssignment{
			{AxisID: uuid.New(), AxisCode: "CC", ValueID: uuid.New(), ValueCode: "DEV"},
		},
	}
	require.Nil(suite.T(), suite.db.Create(&entry).Error)

	var loaded models.TaggedEntry
	require.Nil(suite.T(), suite.db.Preload("Assignments").First(&loaded, entry.ID).Error)

	value, ok := loaded.Value("CC")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "DEV", value)

	_, ok = loaded.Value("PROJECT")
	assert.False(suite.T(), ok)
	assert.True(suite.T(), decimal.NewFromInt(-850).Equal(loaded.Amount))
}
