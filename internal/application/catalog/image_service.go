package catalog

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/catalog"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStorage is the object store holding product image bytes. Clients
// upload and download directly through presigned URLs.
type ImageStorage interface {
	// PresignUpload returns a URL accepting a PUT of the object and its expiry
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error)

	// PresignDownload returns a URL serving the object and its expiry
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)

	Remove(ctx context.Context, key string) error
}

// ErrStorageDisabled is returned by image operations that need object storage
// when none is configured.
var ErrStorageDisabled = shared.NewDomainError(shared.CodeInvalidInput, "Object storage is not configured")

// ImageServiceConfig holds URL lifetimes for the image service
type ImageServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// ImageService manages the images attached to products
type ImageService struct {
	productRepo catalog.ProductRepository
	imageRepo   catalog.ProductImageRepository
	scope       uow.TransactionScope
	storage     ImageStorage
	config      ImageServiceConfig
	logger      *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(
	productRepo catalog.ProductRepository,
	imageRepo catalog.ProductImageRepository,
	scope uow.TransactionScope,
	storage ImageStorage,
	config ImageServiceConfig,
	logger *zap.Logger,
) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{
		productRepo: productRepo,
		imageRepo:   imageRepo,
		scope:       scope,
		storage:     storage,
		config:      config,
		logger:      logger,
	}
}

// List returns the product's images, primary first. With signed set, each
// image carries a temporary download URL.
func (s *ImageService) List(ctx context.Context, tenantID, productID uuid.UUID, signed bool) ([]ProductImageResponse, error) {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	images, err := s.imageRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	out := make([]ProductImageResponse, 0, len(images))
	for i := range images {
		resp := ToProductImageResponse(&images[i])
		if signed && s.storage != nil {
			url, expiresAt, err := s.storage.PresignDownload(ctx, images[i].StorageKey, s.config.DownloadURLExpiry)
			if err != nil {
				return nil, err
			}
			resp.DownloadURL = url
			resp.ExpiresAt = &expiresAt
		}
		out = append(out, resp)
	}
	return out, nil
}

// Create registers a new image for the product and returns a presigned URL
// the client uploads the bytes to. The first image of a product becomes its
// primary image.
func (s *ImageService) Create(ctx context.Context, tenantID, productID uuid.UUID, req CreateProductImageRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	image, err := catalog.NewProductImage(tenantID, productID, req.FileName, req.ContentType)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		existing, err := repos.ProductImages().FindByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if len(existing) >= catalog.MaxImagesPerProduct {
			return shared.InvalidInput("Product already has the maximum number of images").
				WithDetails(map[string]any{"max": catalog.MaxImagesPerProduct})
		}

		image.SortOrder = len(existing)
		image.IsPrimary = len(existing) == 0
		if err := repos.ProductImages().Create(ctx, tenantID, image); err != nil {
			return err
		}
		if !req.IsPrimary || image.IsPrimary {
			return nil
		}

		all := append(existing, *image)
		catalog.PickPrimary(all, image.ID)
		image.IsPrimary = true
		return repos.ProductImages().SaveAll(ctx, tenantID, all)
	})
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.PresignUpload(ctx, image.StorageKey, image.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, err
	}

	return &ImageUploadResponse{
		Image:     ToProductImageResponse(image),
		UploadURL: url,
		ExpiresAt: expiresAt,
	}, nil
}

// SetPrimary makes imageID the product's only primary image
func (s *ImageService) SetPrimary(ctx context.Context, tenantID, productID, imageID uuid.UUID) ([]ProductImageResponse, error) {
	var images []catalog.ProductImage
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		images, err = repos.ProductImages().FindByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if !catalog.PickPrimary(images, imageID) {
			return shared.NotFound("Product image")
		}
		return repos.ProductImages().SaveAll(ctx, tenantID, images)
	})
	if err != nil {
		return nil, err
	}

	out := make([]ProductImageResponse, 0, len(images))
	for i := range images {
		out = append(out, ToProductImageResponse(&images[i]))
	}
	return out, nil
}

// Delete removes an image. When the primary image goes, the next image in
// sort order is promoted.
func (s *ImageService) Delete(ctx context.Context, tenantID, productID, imageID uuid.UUID) error {
	var storageKey string
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		image, err := repos.ProductImages().FindByIDForTenant(ctx, tenantID, imageID)
		if err != nil {
			return err
		}
		if image.ProductID != productID {
			return shared.NotFound("Product image")
		}
		if err := repos.ProductImages().DeleteForTenant(ctx, tenantID, imageID); err != nil {
			return err
		}
		storageKey = image.StorageKey

		if !image.IsPrimary {
			return nil
		}
		rest, err := repos.ProductImages().FindByProduct(ctx, tenantID, productID)
		if err != nil || len(rest) == 0 {
			return err
		}
		next := rest[0]
		for _, img := range rest[1:] {
			if img.SortOrder < next.SortOrder {
				next = img
			}
		}
		catalog.PickPrimary(rest, next.ID)
		return repos.ProductImages().SaveAll(ctx, tenantID, rest)
	})
	if err != nil {
		return err
	}

	if s.storage != nil {
		if err := s.storage.Remove(ctx, storageKey); err != nil {
			s.logger.Warn("failed to remove product image object",
				zap.String("storage_key", storageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}
