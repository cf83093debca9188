package catalog

import (
	"fmt"
	"path"
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxImagesPerProduct bounds how many images a product can own
const MaxImagesPerProduct = 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductImage is an image stored in object storage and attached to a product
type ProductImage struct {
	shared.TenantEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	StorageKey  string    `gorm:"type:varchar(500);not null" json:"storageKey"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	ContentType string    `gorm:"type:varchar(100);not null" json:"contentType"`
	IsPrimary   bool      `gorm:"not null;default:false" json:"isPrimary"`
	SortOrder   int       `gorm:"not null;default:0" json:"sortOrder"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates an image record and derives its storage key
func NewProductImage(tenantID, productID uuid.UUID, fileName, contentType string) (*ProductImage, error) {
	fileName = strings.TrimSpace(path.Base(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, shared.InvalidInput("File name is required")
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, shared.InvalidInput("Unsupported image content type")
	}
	img := &ProductImage{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    productID,
		FileName:     fileName,
		ContentType:  strings.ToLower(contentType),
	}
	img.StorageKey = fmt.Sprintf("tenants/%s/products/%s/%s%s", tenantID, productID, img.ID, ext)
	return img, nil
}

// PickPrimary marks the image with primaryID as primary and clears the flag
// on every other image. It returns false when no image matches.
func PickPrimary(images []ProductImage, primaryID uuid.UUID) bool {
	found := false
	for i := range images {
		if images[i].ID == primaryID {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range images {
		images[i].IsPrimary = images[i].ID == primaryID
	}
	return true
}
