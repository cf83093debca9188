package handler

import (
	"strconv"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product and product image endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

var productFilters = listFilters{
	strings: []string{"category", "strainType"},
	ids:     []string{"vendorId"},
	bools:   []string{"isActive"},
	ranges:  []string{"retailPrice", "wholesalePrice"},
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        search query string false "Search code, name and category"
// @Param        category query string false "Category"
// @Param        strainType query string false "Strain type" Enums(INDICA, SATIVA, HYBRID, CBD)
// @Param        vendorId query string false "Vendor ID" format(uuid)
// @Param        isActive query bool false "Active flag"
// @Param        retailPriceMin query number false "Minimum retail price"
// @Param        retailPriceMax query number false "Maximum retail price"
// @Param        sort query string false "Sort key"
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, productFilters)
	if !ok {
		return
	}

	page, err := h.productService.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), session.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Products with stock or sale lines cannot be deleted; details carry inventoryCount and saleItemsCount
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListImages godoc
// @ID           listProductImages
// @Summary      List product images
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        signed query bool false "Include temporary download URLs"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductImageResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/images [get]
func (h *ProductHandler) ListImages(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	signed, _ := strconv.ParseBool(c.Query("signed"))

	images, err := h.imageService.List(c.Request.Context(), session.TenantID, productID, signed)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// CreateImage godoc
// @ID           createProductImage
// @Summary      Reserve an image upload
// @Description  Registers the image and returns a presigned URL to PUT the bytes to
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.CreateProductImageRequest true "Image metadata"
// @Success      201 {object} dto.Response{data=catalogapp.ImageUploadResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/images [post]
func (h *ProductHandler) CreateImage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.CreateProductImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.imageService.Create(c.Request.Context(), session.TenantID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}

// SetPrimaryImage godoc
// @ID           setPrimaryProductImage
// @Summary      Set the primary image
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductImageResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/images/{imageId}/primary [put]
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.parseID(c, "imageId")
	if !ok {
		return
	}

	images, err := h.imageService.SetPrimary(c.Request.Context(), session.TenantID, productID, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// DeleteImage godoc
// @ID           deleteProductImage
// @Summary      Delete a product image
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/images/{imageId} [delete]
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.parseID(c, "imageId")
	if !ok {
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), session.TenantID, productID, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
