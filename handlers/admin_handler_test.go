package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDayRangeFilterEmpty(t *testing.T) {
	got, err := dayRangeFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDayRangeFilterBothBounds(t *testing.T) {
	got, err := dayRangeFilter("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$gte": "2026-01-01", "$lte": "2026-01-31"}, got)
}

func TestDayRangeFilterSingleBound(t *testing.T) {
	got, err := dayRangeFilter("2026-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$gte": "2026-01-01"}, got)

	got, err = dayRangeFilter("", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$lte": "2026-01-31"}, got)
}

func TestDayRangeFilterRejectsMalformedDates(t *testing.T) {
	_, err := dayRangeFilter("01/02/2026", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from")

	_, err = dayRangeFilter("", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to")
}
