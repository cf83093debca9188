package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("normalizes strain and vendor", func(t *testing.T) {
		nilVendor := uuid.Nil
		p, err := NewProduct(tenantID, "sku-1", ProductDetails{
			Name:           "Blue Dream",
			StrainType:     "hybrid",
			VendorID:       &nilVendor,
			WholesalePrice: decimal.NewFromInt(4),
			RetailPrice:    decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		assert.Equal(t, "SKU-1", p.Code)
		assert.Equal(t, StrainHybrid, p.StrainType)
		assert.Nil(t, p.VendorID)
		assert.True(t, decimal.NewFromInt(6).Equal(p.Margin()))
	})

	t.Run("rejects unknown strain", func(t *testing.T) {
		_, err := NewProduct(tenantID, "SKU-2", ProductDetails{Name: "x", StrainType: "RUDERALIS"})
		assert.ErrorContains(t, err, "Strain type")
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		_, err := NewProduct(tenantID, "SKU-3", ProductDetails{Name: "x", RetailPrice: decimal.NewFromInt(-1)})
		assert.ErrorContains(t, err, "negative")
	})
}

func TestNewProductImage(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()

	img, err := NewProductImage(tenantID, productID, "../../front.PNG", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "front.PNG", img.FileName)
	assert.Contains(t, img.StorageKey, productID.String())
	assert.Contains(t, img.StorageKey, ".png")

	_, err = NewProductImage(tenantID, productID, "doc.pdf", "application/pdf")
	assert.Error(t, err)
}

func TestPickPrimary(t *testing.T) {
	images := []ProductImage{{}, {}, {}}
	for i := range images {
		images[i].ID = uuid.New()
	}
	images[0].IsPrimary = true

	assert.True(t, PickPrimary(images, images[2].ID))
	assert.False(t, images[0].IsPrimary)
	assert.True(t, images[2].IsPrimary)

	assert.False(t, PickPrimary(images, uuid.New()))
	assert.True(t, images[2].IsPrimary)
}
