package services

import (
	"database/sql"
	"strings"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	featuredCount   = 8
	relatedCount    = 4
)

type ProductFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    *float64
	Search       string
	Page         int
	Limit        int
}

type ProductListing struct {
	Category   *models.Category     `json:"category"`
	Categories []models.Category    `json:"categories"`
	Products   []models.ProductView `json:"products"`
	MinPrice   decimal.NullDecimal  `json:"minPrice"`
	MaxPrice   decimal.NullDecimal  `json:"maxPrice"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

type ProductDetail struct {
	Product    models.ProductView `json:"product"`
	Related    []models.Product   `json:"relatedProducts"`
	UserRating *models.Rating     `json:"userRating"`
}

// likeEscaper makes a search term match literally inside a LIKE pattern. '!'
// is the escape character because backslash needs quoting in MySQL literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func availableProducts(tx *gorm.DB) *gorm.DB {
	return tx.Where("products.available = ?", true)
}

func inCategory(categoryID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("products.category_id = ?", categoryID)
	}
}

// ListProducts filters the available products. The price bounds reported back
// cover the category selection only, before the price, rating and search
// filters narrow it down.
func ListProducts(db *gorm.DB, f ProductFilter) (*ProductListing, error) {
	categories, err := Categories(db)
	if err != nil {
		return nil, err
	}
	listing := &ProductListing{Categories: categories}

	scopes := []func(*gorm.DB) *gorm.DB{availableProducts}
	if f.CategorySlug != "" {
		var category models.Category
		if err := db.Where("slug = ?", f.CategorySlug).First(&category).Error; err != nil {
			return nil, notFound(err, "category")
		}
		listing.Category = &category
		scopes = append(scopes, inCategory(category.ID))
	}

	var bounds struct {
		MinPrice decimal.NullDecimal
		MaxPrice decimal.NullDecimal
	}
	if err := db.Model(&models.Product{}).Scopes(scopes...).
		Select("MIN(products.price) AS min_price, MAX(products.price) AS max_price").
		Scan(&bounds).Error; err != nil {
		return nil, err
	}
	listing.MinPrice, listing.MaxPrice = bounds.MinPrice, bounds.MaxPrice

	if f.MinPrice != nil {
		minPrice := *f.MinPrice
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB { return tx.Where("products.price >= ?", minPrice) })
	}
	if f.MaxPrice != nil {
		maxPrice := *f.MaxPrice
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB { return tx.Where("products.price <= ?", maxPrice) })
	}
	if f.MinRating != nil {
		minRating := *f.MinRating
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("products.id IN (?)", db.Model(&models.Rating{}).
				Select("product_id").
				Group("product_id").
				Having("AVG(rating) >= ?", minRating))
		})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("(LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!' OR products.category_id IN (?))",
				pattern, pattern,
				db.Model(&models.Category{}).Select("id").Where("LOWER(name) LIKE ? ESCAPE '!'", pattern))
		})
	}

	listing.Page, listing.Limit = normalizePage(f.Page, f.Limit)
	if err := db.Model(&models.Product{}).Scopes(scopes...).Count(&listing.Total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	if err := db.Scopes(scopes...).
		Preload("Category").
		Order("products.created_at DESC, products.id DESC").
		Limit(listing.Limit).
		Offset((listing.Page - 1) * listing.Limit).
		Find(&products).Error; err != nil {
		return nil, err
	}

	listing.Products, err = withRatings(db, products)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// FeaturedProducts returns the newest available products for the home page.
func FeaturedProducts(db *gorm.DB) ([]models.ProductView, error) {
	var products []models.Product
	if err := db.Scopes(availableProducts).
		Order("products.created_at DESC, products.id DESC").
		Limit(featuredCount).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return withRatings(db, products)
}

func Categories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Order("name").Find(&categories).Error
	return categories, err
}

// GetProductDetail loads an available product by slug. userID may be 0 for
// anonymous visitors, in which case UserRating stays nil.
func GetProductDetail(db *gorm.DB, slug string, userID uint) (*ProductDetail, error) {
	var product models.Product
	if err := db.Scopes(availableProducts).Preload("Category").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}

	avg, err := AverageRating(db, product.ID)
	if err != nil {
		return nil, err
	}
	detail := &ProductDetail{Product: models.ProductView{Product: product, AverageRating: avg}}

	if err := db.Scopes(availableProducts, inCategory(product.CategoryID)).
		Where("products.id <> ?", product.ID).
		Order("products.created_at DESC").
		Limit(relatedCount).
		Find(&detail.Related).Error; err != nil {
		return nil, err
	}

	if userID != 0 {
		var rating models.Rating
		err := db.Where("product_id = ? AND user_id = ?", product.ID, userID).First(&rating).Error
		switch {
		case err == nil:
			detail.UserRating = &rating
		case !isRecordNotFound(err):
			return nil, err
		}
	}
	return detail, nil
}

// AverageRating is the mean of all ratings for the product, or nil when it has none.
func AverageRating(db *gorm.DB, productID uint) (*float64, error) {
	var avg sql.NullFloat64
	if err := db.Model(&models.Rating{}).
		Select("AVG(rating)").
		Where("product_id = ?", productID).
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func withRatings(db *gorm.DB, products []models.Product) ([]models.ProductView, error) {
	views := make([]models.ProductView, 0, len(products))
	if len(products) == 0 {
		return views, nil
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	var rows []struct {
		ProductID uint
		Average   float64
	}
	if err := db.Model(&models.Rating{}).
		Select("product_id, AVG(rating) AS average").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	averages := make(map[uint]float64, len(rows))
	for _, r := range rows {
		averages[r.ProductID] = r.Average
	}

	for _, p := range products {
		view := models.ProductView{Product: p}
		if avg, ok := averages[p.ID]; ok {
			view.AverageRating = &avg
		}
		views = append(views, view)
	}
	return views, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
