package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

func duplicateSlug(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlug
	}
	return err
}

func CreateCategory(db *gorm.DB, in models.CategoryInput) (*models.Category, error) {
	category := models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, duplicateSlug(err)
	}
	return &category, nil
}

// DeleteCategory removes a category together with its products, their ratings
// and any cart lines holding them. Categories whose products appear on an
// order are kept so order history stays intact.
func DeleteCategory(db *gorm.DB, slug string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("slug = ?", slug).First(&category).Error; err != nil {
			return notFound(err, "category")
		}

		productIDs := tx.Model(&models.Product{}).Select("id").Where("category_id = ?", category.ID)

		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id IN (?)", productIDs).Count(&ordered).Error; err != nil {
			return err
		}
		if ordered > 0 {
			return ErrCategoryInUse
		}

		if err := tx.Where("product_id IN (?)", productIDs).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id IN (?)", productIDs).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

func CreateProduct(db *gorm.DB, in models.ProductInput) (*models.Product, error) {
	var category models.Category
	if err := db.First(&category, in.CategoryID).Error; err != nil {
		return nil, notFound(err, "category")
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	product := models.Product{
		Name:        in.Name,
		Slug:        in.Slug,
		CategoryID:  category.ID,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Available:   true,
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Available != nil {
		product.Available = *in.Available
	}
	if err := db.Create(&product).Error; err != nil {
		return nil, duplicateSlug(err)
	}
	product.Category = &category
	return &product, nil
}

func UpdateProduct(db *gorm.DB, slug string, in models.ProductUpdate) (*models.Product, error) {
	var product models.Product
	if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative")
		}
		updates["price"] = in.Price.Round(2)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("stock must not be negative")
		}
		updates["stock"] = *in.Stock
	}
	if in.Available != nil {
		updates["available"] = *in.Available
	}
	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Preload("Category").First(&product, product.ID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// AttachProductImage uploads the image under a dated key and stores its URL
// on the product.
func AttachProductImage(ctx context.Context, db *gorm.DB, store ImageStore, slug, filename, contentType string, body io.Reader) (*models.Product, error) {
	var product models.Product
	if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}

	key := fmt.Sprintf("products/%s/%s-%s",
		time.Now().UTC().Format("2006/01/02"),
		uuid.NewString(),
		sanitizeFilename(filename),
	)
	url, err := store.Upload(ctx, key, body, contentType)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&product).Update("image", url).Error; err != nil {
		return nil, err
	}
	product.Image = url
	return &product, nil
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}
