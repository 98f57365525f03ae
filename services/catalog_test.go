package services_test

import (
	"testing"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/Kariqs/amexan-shop/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func slugs(products []models.ProductView) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Category, models.Category) {
	t.Helper()
	books := createCategory(t, db, "Books", "books")
	garden := createCategory(t, db, "Garden Tools", "garden")
	createProduct(t, db, books, "Cheap Novel", "cheap-novel", "9.99", 5)
	createProduct(t, db, books, "Cookbook", "cookbook", "20.00", 5)
	createProduct(t, db, books, "Atlas", "atlas", "35.50", 5)
	createProduct(t, db, books, "Encyclopedia", "encyclopedia", "50.00", 5)
	createProduct(t, db, books, "Rare Print", "rare-print", "50.01", 5)
	createProduct(t, db, garden, "Spade", "spade", "25.00", 5)
	hidden := createProduct(t, db, garden, "Hidden Rake", "hidden-rake", "30.00", 5)
	require.NoError(t, db.Model(&hidden).Update("available", false).Error)
	return books, garden
}

func TestListProductsPriceRange(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)

	minPrice, maxPrice := decimal.NewFromInt(20), decimal.NewFromInt(50)
	listing, err := services.ListProducts(db, services.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"cookbook", "atlas", "encyclopedia", "spade"}, slugs(listing.Products))
	for _, p := range listing.Products {
		assert.True(t, p.Price.GreaterThanOrEqual(minPrice) && p.Price.LessThanOrEqual(maxPrice), p.Slug)
		assert.True(t, p.Available)
	}
	assert.EqualValues(t, 4, listing.Total)
}

func TestListProductsCategoryBounds(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)

	minPrice := decimal.NewFromInt(30)
	listing, err := services.ListProducts(db, services.ProductFilter{CategorySlug: "books", MinPrice: &minPrice})
	require.NoError(t, err)

	require.NotNil(t, listing.Category)
	assert.Equal(t, "books", listing.Category.Slug)
	assert.ElementsMatch(t, []string{"atlas", "encyclopedia", "rare-print"}, slugs(listing.Products))
	// Bounds describe the category before the price filter applies.
	require.True(t, listing.MinPrice.Valid)
	assert.Equal(t, "9.99", listing.MinPrice.Decimal.StringFixed(2))
	assert.Equal(t, "50.01", listing.MaxPrice.Decimal.StringFixed(2))
	assert.Len(t, listing.Categories, 2)

	_, err = services.ListProducts(db, services.ProductFilter{CategorySlug: "missing"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListProductsSearch(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)
	require.NoError(t, db.Model(&models.Product{}).Where("slug = ?", "atlas").
		Update("description", "Maps of every COOKING region").Error)

	listing, err := services.ListProducts(db, services.ProductFilter{Search: "cook"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cookbook", "atlas"}, slugs(listing.Products))

	// Category names match too, but only available products are returned.
	listing, err = services.ListProducts(db, services.ProductFilter{Search: "GARDEN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"spade"}, slugs(listing.Products))

	// Search is OR-combined internally but ANDed with the other filters.
	maxPrice := decimal.NewFromInt(10)
	listing, err = services.ListProducts(db, services.ProductFilter{Search: "cook", MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Empty(t, listing.Products)
}

func TestListProductsSearchMatchesWildcardsLiterally(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)

	for _, term := range []string{"_", "%", "!", "50%"} {
		listing, err := services.ListProducts(db, services.ProductFilter{Search: term})
		require.NoError(t, err)
		assert.Empty(t, listing.Products, term)
	}

	require.NoError(t, db.Model(&models.Product{}).Where("slug = ?", "spade").
		Update("description", "Now 50% off_season! Steel blade").Error)
	for _, term := range []string{"50%", "_SEASON", "off_season!", "%"} {
		listing, err := services.ListProducts(db, services.ProductFilter{Search: term})
		require.NoError(t, err)
		assert.Equal(t, []string{"spade"}, slugs(listing.Products), term)
	}
}

func TestListProductsMinRating(t *testing.T) {
	db := getTestDB(t)
	books, _ := seedCatalog(t, db)
	ann := createUser(t, db, "ann")
	ben := createUser(t, db, "ben")

	var cookbook, atlas models.Product
	require.NoError(t, db.Where("slug = ?", "cookbook").First(&cookbook).Error)
	require.NoError(t, db.Where("slug = ?", "atlas").First(&atlas).Error)
	require.NoError(t, db.Create(&[]models.Rating{
		{ProductID: cookbook.ID, UserID: ann.ID, Rating: 5},
		{ProductID: cookbook.ID, UserID: ben.ID, Rating: 4},
		{ProductID: atlas.ID, UserID: ann.ID, Rating: 2},
	}).Error)

	minRating := 4.0
	listing, err := services.ListProducts(db, services.ProductFilter{CategorySlug: books.Slug, MinRating: &minRating})
	require.NoError(t, err)
	require.Equal(t, []string{"cookbook"}, slugs(listing.Products))
	assert.InDelta(t, 4.5, *listing.Products[0].AverageRating, 1e-9)
}

func TestListProductsPagination(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)

	listing, err := services.ListProducts(db, services.ProductFilter{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 6, listing.Total)
	assert.Len(t, listing.Products, 2)
	assert.Equal(t, 2, listing.Page)
}

func TestProductDetail(t *testing.T) {
	db := getTestDB(t)
	seedCatalog(t, db)

	detail, err := services.GetProductDetail(db, "atlas", 0)
	require.NoError(t, err)
	assert.Equal(t, "Atlas", detail.Product.Name)
	assert.Nil(t, detail.Product.AverageRating)
	assert.Nil(t, detail.UserRating)
	assert.Len(t, detail.Related, 4)
	for _, p := range detail.Related {
		assert.NotEqual(t, "atlas", p.Slug)
		assert.Equal(t, detail.Product.CategoryID, p.CategoryID)
	}

	_, err = services.GetProductDetail(db, "hidden-rake", 0)
	assert.ErrorIs(t, err, services.ErrNotFound)

	featured, err := services.FeaturedProducts(db)
	require.NoError(t, err)
	assert.Len(t, featured, 6)
}
