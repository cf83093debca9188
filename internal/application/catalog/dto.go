package catalog

import (
	"time"

	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=2000"`
	VendorID       *uuid.UUID       `json:"vendorId"`
	Category       string           `json:"category" binding:"max=100"`
	StrainType     string           `json:"strainType" binding:"omitempty,oneof=INDICA SATIVA HYBRID CBD indica sativa hybrid cbd"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	RetailPrice    *decimal.Decimal `json:"retailPrice"`
	IsActive       *bool            `json:"isActive"`
}

// UpdateProductRequest represents a request to update a product. Absent
// fields keep their current value; an explicit null vendorId is not
// distinguishable from absence, so ClearVendor detaches the vendor.
type UpdateProductRequest struct {
	Code           *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	VendorID       *uuid.UUID       `json:"vendorId"`
	ClearVendor    bool             `json:"clearVendor"`
	Category       *string          `json:"category" binding:"omitempty,max=100"`
	StrainType     *string          `json:"strainType"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	RetailPrice    *decimal.Decimal `json:"retailPrice"`
	IsActive       *bool            `json:"isActive"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID              `json:"id"`
	TenantID       uuid.UUID              `json:"tenantId"`
	Code           string                 `json:"code"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	VendorID       *uuid.UUID             `json:"vendorId,omitempty"`
	Category       string                 `json:"category"`
	StrainType     string                 `json:"strainType"`
	WholesalePrice decimal.Decimal        `json:"wholesalePrice"`
	RetailPrice    decimal.Decimal        `json:"retailPrice"`
	Margin         decimal.Decimal        `json:"margin"`
	IsActive       bool                   `json:"isActive"`
	Images         []ProductImageResponse `json:"images"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := make([]ProductImageResponse, 0, len(p.Images))
	for i := range p.Images {
		images = append(images, ToProductImageResponse(&p.Images[i]))
	}
	return ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		VendorID:       p.VendorID,
		Category:       p.Category,
		StrainType:     string(p.StrainType),
		WholesalePrice: p.WholesalePrice,
		RetailPrice:    p.RetailPrice,
		Margin:         p.Margin(),
		IsActive:       p.IsActive,
		Images:         images,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// =============================================================================
// Product image DTOs
// =============================================================================

// CreateProductImageRequest asks for an upload slot for a new image
type CreateProductImageRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required,max=100"`
	IsPrimary   bool   `json:"isPrimary"`
}

// ProductImageResponse represents an image in API responses. DownloadURL is
// only filled when the caller asked for signed links.
type ProductImageResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"productId"`
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	IsPrimary   bool       `json:"isPrimary"`
	SortOrder   int        `json:"sortOrder"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToProductImageResponse converts a domain ProductImage to ProductImageResponse
func ToProductImageResponse(img *catalog.ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ID:          img.ID,
		ProductID:   img.ProductID,
		FileName:    img.FileName,
		ContentType: img.ContentType,
		IsPrimary:   img.IsPrimary,
		SortOrder:   img.SortOrder,
		CreatedAt:   img.CreatedAt,
	}
}

// ImageUploadResponse is returned when an upload slot is reserved
type ImageUploadResponse struct {
	Image     ProductImageResponse `json:"image"`
	UploadURL string               `json:"uploadUrl"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func decimalOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
