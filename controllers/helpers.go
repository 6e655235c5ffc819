package controllers

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// paramID parses a path parameter. Malformed ids surface as
// primitive.ErrInvalidHex, which the error handler renders as 404.
func paramID(c echo.Context, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param(name))
}

// bind decodes the request body into req and runs the validator on it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	return c.Validate(req)
}

func queryBool(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloat(c echo.Context, name string) *float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.QueryParam(name))
	return v
}

// optionalID parses a form or JSON id that may be blank.
func optionalID(raw string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.InvalidInput("Invalid id %s", raw)
	}
	return &id, nil
}

// uploadImage reads an optional image field, resizes it and stores it.
// It returns empty strings when the field is absent.
func uploadImage(c echo.Context, store services.BlobStore, field, folder string, width int) (string, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", "", nil
	}
	file, err := utils.ReadUpload(header, "image", utils.MaxImageSize)
	if err != nil {
		return "", "", apperr.InvalidInput("%s", err.Error())
	}
	data, err := utils.ResizeJPEG(file.Data, width)
	if err != nil {
		return "", "", apperr.InvalidInput("Could not process image")
	}
	key := services.NewKey(folder, "image.jpg")
	url, err := store.Put(c.Request().Context(), key, data, "image/jpeg")
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	return url, key, nil
}

// removeBlobs deletes stored objects without failing the request.
func removeBlobs(ctx context.Context, store services.BlobStore, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("blob delete failed")
		}
	}
}
