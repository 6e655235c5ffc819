package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const qrCodeSize = 256

type ProductController struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	blobs      services.BlobStore
	siteURL    string
}

func NewProductController(products *repositories.ProductRepository, categories *repositories.CategoryRepository, blobs services.BlobStore, siteURL string) *ProductController {
	return &ProductController{
		products:   products,
		categories: categories,
		blobs:      blobs,
		siteURL:    strings.TrimRight(siteURL, "/"),
	}
}

func productFilter(c echo.Context) models.ProductFilter {
	return models.ProductFilter{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Tags:     utils.ParseTags(c.QueryParam("tags")),
		MinPrice: queryFloat(c, "minPrice"),
		MaxPrice: queryFloat(c, "maxPrice"),
		Active:   queryBool(c, "isActive"),
		Sort:     c.QueryParam("sort"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}
}

func (pc *ProductController) list(c echo.Context, f models.ProductFilter) error {
	products, total, err := pc.products.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	count := len(products)
	return c.JSON(http.StatusOK, models.Response{
		Success:    true,
		Count:      &count,
		Pagination: repositories.Paginate(f.Page, f.Limit, total),
		Data:       products,
	})
}

// GetProducts lists products with filters, sorting and pagination.
func (pc *ProductController) GetProducts(c echo.Context) error {
	return pc.list(c, productFilter(c))
}

func (pc *ProductController) GetProductsByCategory(c echo.Context) error {
	f := productFilter(c)
	f.Category = c.Param("categoryId")
	if _, err := primitive.ObjectIDFromHex(f.Category); err != nil {
		return err
	}
	return pc.list(c, f)
}

func (pc *ProductController) GetProduct(c echo.Context) error {
	product, err := pc.products.FindByIDOrSlug(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(product))
}

// qrCode renders and stores a QR code pointing at the product page.
func (pc *ProductController) qrCode(ctx context.Context, slug string) (string, error) {
	png, err := utils.QRCodePNG(pc.siteURL+"/product/"+slug, qrCodeSize)
	if err != nil {
		return "", err
	}
	return pc.blobs.Put(ctx, services.NewKey("products/qrcodes", slug+".png"), png, "image/png")
}

func (pc *ProductController) checkCategory(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidInput("Invalid category")
	}
	ok, err := pc.categories.Exists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, apperr.NotFound("Category not found with id of %s", raw)
	}
	return id, nil
}

func (pc *ProductController) CreateProduct(c echo.Context) error {
	var req models.ProductInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	category, err := pc.checkCategory(ctx, req.Category)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := &models.Product{
		Name:           name,
		Slug:           utils.Slugify(name),
		Description:    req.Description,
		Price:          req.Price,
		DiscountPrice:  req.DiscountPrice,
		Category:       category,
		Images:         req.Images,
		Brand:          req.Brand,
		Stock:          req.Stock,
		SKU:            strings.TrimSpace(req.SKU),
		Variants:       req.Variants,
		Specifications: req.Specifications,
		Tags:           req.Tags,
		RatingsAverage: req.RatingsAverage,
		QRCode:         req.QRCode,
		IsActive:       active,
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	if product.Specifications == nil {
		product.Specifications = models.Specifications{}
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	if product.QRCode == "" {
		url, err := pc.qrCode(ctx, product.Slug)
		if err != nil {
			logger.Warn().Err(err).Str("product", product.Slug).Msg("could not generate product QR code")
		}
		product.QRCode = url
	}

	if err := pc.products.Create(ctx, product); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(product))
}

// productPatch holds the fields an update may change.
type productPatch struct {
	Name           *string                `json:"name" validate:"omitempty,max=100"`
	Description    *string                `json:"description" validate:"omitempty,max=2000"`
	Price          *float64               `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice  *float64               `json:"discountPrice" validate:"omitempty,gte=0"`
	Category       *string                `json:"category"`
	Images         []string               `json:"images"`
	Brand          *string                `json:"brand"`
	Stock          *int                   `json:"stock" validate:"omitempty,gte=0"`
	SKU            *string                `json:"sku"`
	Variants       []models.Variant       `json:"variants"`
	Specifications *models.Specifications `json:"specifications"`
	Tags           []string               `json:"tags"`
	RatingsAverage *float64               `json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	QRCode         *string                `json:"qrCode"`
	IsActive       *bool                  `json:"isActive"`
}

func (pc *ProductController) UpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req productPatch
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		set["name"] = name
		set["slug"] = utils.Slugify(name)
	}
	if req.Category != nil {
		category, err := pc.checkCategory(ctx, *req.Category)
		if err != nil {
			return err
		}
		set["category"] = category
	}
	setIf(set, "description", req.Description)
	setIf(set, "price", req.Price)
	setIf(set, "discountPrice", req.DiscountPrice)
	setIf(set, "brand", req.Brand)
	setIf(set, "stock", req.Stock)
	setIf(set, "sku", req.SKU)
	setIf(set, "specifications", req.Specifications)
	setIf(set, "ratingsAverage", req.RatingsAverage)
	setIf(set, "qrCode", req.QRCode)
	setIf(set, "isActive", req.IsActive)
	if req.Images != nil {
		set["images"] = req.Images
	}
	if req.Variants != nil {
		set["variants"] = req.Variants
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if len(set) == 0 {
		return apperr.InvalidInput("Nothing to update")
	}

	product, err := pc.products.Update(ctx, id, set)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(product))
}

func (pc *ProductController) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := pc.products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{}))
}

func setIf[T any](set bson.M, field string, v *T) {
	if v != nil {
		set[field] = *v
	}
}
