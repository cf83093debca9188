package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeBatch(t *testing.T) {
	b, err := NormalizeBatch(nil)
	require.NoError(t, err)
	assert.Equal(t, "", b)

	b, err = NormalizeBatch(strPtr("  LOT-7 "))
	require.NoError(t, err)
	assert.Equal(t, "LOT-7", b)

	_, err = NormalizeBatch(strPtr("   "))
	assert.Error(t, err)

	assert.Nil(t, BatchPointer(""))
	assert.Equal(t, "LOT-7", *BatchPointer("LOT-7"))
}

func TestNewInventoryRecord(t *testing.T) {
	slot := Slot{ProductID: uuid.New(), LocationID: uuid.New()}

	rec, err := NewInventoryRecord(uuid.New(), slot, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Quantity)
	assert.Nil(t, rec.Batch())
	assert.Equal(t, slot, rec.Slot())

	_, err = NewInventoryRecord(uuid.New(), slot, 0)
	assert.ErrorContains(t, err, "greater than zero")
}

func TestSlot_SameStorage(t *testing.T) {
	loc := uuid.New()
	a := Slot{ProductID: uuid.New(), LocationID: loc}
	b := Slot{ProductID: a.ProductID, LocationID: loc, BatchNumber: "B1"}

	assert.False(t, a.SameStorage(b), "null batch and named batch are distinct")
	b.BatchNumber = ""
	assert.True(t, a.SameStorage(b))
}

func TestNewLocation(t *testing.T) {
	l, err := NewLocation(uuid.New(), "wh-1", LocationDetails{Name: "Main", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "WH-1", l.Code)

	_, err = NewLocation(uuid.New(), "wh-1", LocationDetails{Name: " "})
	assert.Error(t, err)
}

func TestSlot_Before(t *testing.T) {
	product := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	low := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	high := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	a := Slot{ProductID: product, LocationID: low}
	b := Slot{ProductID: product, LocationID: high}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))

	batched := Slot{ProductID: product, LocationID: low, BatchNumber: "B-1"}
	assert.True(t, a.Before(batched), "the unbatched slot sorts first")
	assert.False(t, a.Before(a))
}
