package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxImageSize = 10 << 20

// parseProductFilter reads the listing query string. Bad values are reported
// per field rather than silently ignored.
func parseProductFilter(ctx *gin.Context) (services.ProductFilter, map[string]string) {
	filter := services.ProductFilter{Search: ctx.Query("search")}
	fieldErrors := map[string]string{}

	parseDecimal := func(name string) *decimal.Decimal {
		raw := ctx.Query(name)
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			fieldErrors[name] = "must be a non-negative number"
			return nil
		}
		return &d
	}
	filter.MinPrice = parseDecimal("min_price")
	filter.MaxPrice = parseDecimal("max_price")

	if raw := ctx.Query("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			fieldErrors["rating"] = "must be between 0 and 5"
		} else {
			filter.MinRating = &rating
		}
	}

	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "12"))

	if len(fieldErrors) > 0 {
		return filter, fieldErrors
	}
	return filter, nil
}

func listProducts(ctx *gin.Context, categorySlug string) {
	filter, fieldErrors := parseProductFilter(ctx)
	if fieldErrors != nil {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": fieldErrors})
		return
	}
	filter.CategorySlug = categorySlug

	listing, err := services.ListProducts(initializers.DB, filter)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"category":   listing.Category,
		"categories": listing.Categories,
		"products":   listing.Products,
		"priceRange": gin.H{"min": listing.MinPrice, "max": listing.MaxPrice},
		"metadata": gin.H{
			"total":       listing.Total,
			"currentPage": listing.Page,
			"limit":       listing.Limit,
			"hasPrevPage": listing.Page > 1,
			"hasNextPage": int64(listing.Page*listing.Limit) < listing.Total,
		},
	})
}

func GetProducts(ctx *gin.Context) {
	listProducts(ctx, "")
}

func GetCategoryProducts(ctx *gin.Context) {
	listProducts(ctx, ctx.Param("slug"))
}

func GetProduct(ctx *gin.Context) {
	detail, err := services.GetProductDetail(initializers.DB, ctx.Param("slug"), currentUserID(ctx))
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"product":         detail.Product,
		"relatedProducts": detail.Related,
		"userRating":      detail.UserRating,
	})
}

func CreateCategory(ctx *gin.Context) {
	var input models.CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendValidationError(ctx, err)
		return
	}

	category, err := services.CreateCategory(initializers.DB, input)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"category": category})
}

func DeleteCategory(ctx *gin.Context) {
	if err := services.DeleteCategory(initializers.DB, ctx.Param("slug")); err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Category deleted successfully."})
}

func CreateProduct(ctx *gin.Context) {
	var input models.ProductInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if input.Price.IsNegative() {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": gin.H{"price": "must not be negative"}})
		return
	}

	product, err := services.CreateProduct(initializers.DB, input)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"product": product})
}

func UpdateProduct(ctx *gin.Context) {
	var input models.ProductUpdate
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if input.Price != nil && input.Price.IsNegative() {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": gin.H{"price": "must not be negative"}})
		return
	}

	product, err := services.UpdateProduct(initializers.DB, ctx.Param("slug"), input)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"product": product})
}

// UploadProductImage stores the "image" form file and makes it the product photo.
func UploadProductImage(ctx *gin.Context) {
	if initializers.Images == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "No image uploaded")
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusBadRequest, "Image is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Printf("Error opening file %s: %v", file.Filename, err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid image")
		return
	}
	defer f.Close()

	product, err := services.AttachProductImage(ctx.Request.Context(), initializers.DB, initializers.Images,
		ctx.Param("slug"), file.Filename, file.Header.Get("Content-Type"), f)
	if err != nil {
		handleServiceError(ctx, err, "/")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Image uploaded", "product": product})
}
