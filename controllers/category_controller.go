package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson"
)

const categoryIconWidth = 256

type CategoryController struct {
	categories *repositories.CategoryRepository
	blobs      services.BlobStore
}

func NewCategoryController(categories *repositories.CategoryRepository, blobs services.BlobStore) *CategoryController {
	return &CategoryController{categories: categories, blobs: blobs}
}

// GetCategories lists approved, active categories.
func (cc *CategoryController) GetCategories(c echo.Context) error {
	categories, err := cc.categories.ListPublic(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(categories, len(categories)))
}

func (cc *CategoryController) GetAdminCategories(c echo.Context) error {
	categories, err := cc.categories.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(categories, len(categories)))
}

// GetCategory accepts an id or a slug.
func (cc *CategoryController) GetCategory(c echo.Context) error {
	category, err := cc.categories.FindByIDOrSlug(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(category))
}

// CreateCategory approves admin submissions and queues user submissions.
func (cc *CategoryController) CreateCategory(c echo.Context) error {
	creator, err := middleware.CurrentCreator(c)
	if err != nil {
		return err
	}
	var req models.CategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	parent, err := optionalID(req.Parent)
	if err != nil {
		return err
	}
	if parent != nil {
		ok, err := cc.categories.Exists(ctx, *parent)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Category not found with id of %s", parent.Hex())
		}
	}

	image, imageKey, err := uploadImage(c, cc.blobs, "icon", "categories", categoryIconWidth)
	if err != nil {
		return err
	}

	status := models.CategoryStatusPending
	if creator.Kind == models.CreatorAdmin {
		status = models.CategoryStatusApproved
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	name := strings.TrimSpace(req.Name)
	category := &models.Category{
		Name:         name,
		Slug:         utils.Slugify(name),
		Description:  strings.TrimSpace(req.Description),
		Image:        image,
		ImageKey:     imageKey,
		Parent:       parent,
		Status:       status,
		CreatorID:    &creator.ID,
		CreatorModel: creator.Kind,
		IsActive:     active,
	}
	if err := cc.categories.Create(ctx, category); err != nil {
		removeBlobs(ctx, cc.blobs, imageKey)
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(category))
}

func (cc *CategoryController) UpdateCategory(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.CategoryInput
	if err := c.Bind(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	ctx := c.Request().Context()

	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) > 50 {
			return apperr.InvalidInput("name cannot be more than 50 characters")
		}
		set["name"] = name
		set["slug"] = utils.Slugify(name)
	}
	if req.Description != "" {
		set["description"] = strings.TrimSpace(req.Description)
	}
	if req.Parent != "" {
		parent, err := optionalID(req.Parent)
		if err != nil {
			return err
		}
		if *parent == id {
			return apperr.InvalidOperation("A category cannot be its own parent")
		}
		set["parent"] = parent
	}
	if req.Status != "" {
		if req.Status != models.CategoryStatusPending && req.Status != models.CategoryStatusApproved && req.Status != models.CategoryStatusRejected {
			return apperr.InvalidInput("Invalid status")
		}
		set["status"] = req.Status
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}

	image, imageKey, err := uploadImage(c, cc.blobs, "icon", "categories", categoryIconWidth)
	if err != nil {
		return err
	}
	if image != "" {
		set["image"] = image
		set["imageKey"] = imageKey
	}
	if len(set) == 0 {
		return apperr.InvalidInput("Nothing to update")
	}

	category, err := cc.categories.Update(ctx, id, set)
	if err != nil {
		removeBlobs(ctx, cc.blobs, imageKey)
		return err
	}
	return c.JSON(http.StatusOK, models.OK(category))
}

type categoryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (cc *CategoryController) UpdateCategoryStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req categoryStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := cc.categories.Update(c.Request().Context(), id, bson.M{"status": req.Status})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(category))
}

func (cc *CategoryController) DeleteCategory(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	category, err := cc.categories.FindByIDOrSlug(ctx, id.Hex())
	if err != nil {
		return err
	}
	if err := cc.categories.Delete(ctx, id); err != nil {
		return err
	}
	removeBlobs(ctx, cc.blobs, category.ImageKey)
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{}))
}
