package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
)

type createdProperty struct {
	*models.Property
	Images []models.PropertyImage `json:"property_images"`
}

// ListProperties serves the public catalogue. Without a status filter only
// active listings are shown.
func ListProperties(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := helpers.ParsePropertyFilters(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		if c.Query("status") == "" {
			filters.Status = models.StatusActive
		}

		properties, err := p.ListProperties(c.Request.Context(), filters)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(properties, len(properties)))
	}
}

func GetProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "property")
		if !ok {
			return
		}

		property, err := p.GetProperty(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if property == nil {
			c.JSON(http.StatusNotFound, helpers.ErrorResponse("property not found"))
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(property, ""))
	}
}

func ListMyProperties(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		properties, err := p.ListMyProperties(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(properties, len(properties)))
	}
}

func ListAllPropertiesAdmin(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		properties, err := p.ListAllPropertiesAdmin(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(properties, len(properties)))
	}
}

// CreateProperty accepts either a JSON body or a multipart form with the
// listing as JSON in "data" and files in "images".
func CreateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if !claims.CanSell() {
			respondError(c, fmt.Errorf("%w: only sellers can create listings", services.ErrForbidden))
			return
		}

		var input models.PropertyInput
		var files []*multipart.FileHeader

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			form, err := c.MultipartForm()
			if err != nil {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
				return
			}
			data := form.Value["data"]
			if len(data) == 0 {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse("missing data field"))
				return
			}
			if err := json.Unmarshal([]byte(data[0]), &input); err != nil {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(fmt.Sprintf("invalid data field: %v", err)))
				return
			}
			files = form.File["images"]
		} else if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		created, err := p.CreateProperty(c.Request.Context(), claims.UserID, &input)
		if err != nil {
			respondError(c, err)
			return
		}

		images := uploadImages(c, p, created.Id, nil, files)
		c.JSON(http.StatusCreated, helpers.SuccessResponse(createdProperty{Property: created, Images: images}, services.NoticePropertyCreated))
	}
}

// uploadImages opens the form files and hands them to the upload loop after
// the listing's existing images. Files that cannot be opened are skipped like
// failed uploads.
func uploadImages(c *gin.Context, p *services.PropertyService, propertyId uuid.UUID, existing []models.PropertyImage, headers []*multipart.FileHeader) []models.PropertyImage {
	if len(headers) == 0 {
		return []models.PropertyImage{}
	}

	files := make([]services.ImageFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			_ = c.Error(fmt.Errorf("failed to open %s: %v", h.Filename, err))
			continue
		}
		defer f.Close()
		files = append(files, services.ImageFile{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        f,
		})
	}
	return p.UploadPropertyImages(c.Request.Context(), propertyId, existing, files)
}

// loadManaged fetches the listing named by :id and checks that the caller may
// change it.
func loadManaged(c *gin.Context, p *services.PropertyService) (*models.PropertyWithImages, bool) {
	claims, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c, "id", "property")
	if !ok {
		return nil, false
	}

	property, err := p.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if property == nil {
		c.JSON(http.StatusNotFound, helpers.ErrorResponse("property not found"))
		return nil, false
	}
	if !claims.CanManage(property.SellerId) {
		respondError(c, fmt.Errorf("%w: you can only manage your own listings", services.ErrForbidden))
		return nil, false
	}
	return property, true
}

func UpdateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := loadManaged(c, p)
		if !ok {
			return
		}

		var update models.PropertyUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		updated, err := p.UpdateProperty(c.Request.Context(), property.Id, &update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(updated, services.NoticePropertyUpdated))
	}
}

func DeleteProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := loadManaged(c, p)
		if !ok {
			return
		}

		if err := p.DeleteProperty(c.Request.Context(), property.Id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, services.NoticePropertyDeleted))
	}
}

// AddPropertyImages appends uploaded files after the listing's highest
// display order.
func AddPropertyImages(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := loadManaged(c, p)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		headers := form.File["images"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("no images provided"))
			return
		}

		images := uploadImages(c, p, property.Id, property.Images, headers)
		if len(images) == 0 {
			c.JSON(http.StatusInternalServerError, helpers.NoticeResponse(services.NoticeImageAddError, "no image could be uploaded"))
			return
		}
		c.JSON(http.StatusCreated, helpers.ListResponse(images, len(images)))
	}
}

func DeletePropertyImage(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, ok := loadManaged(c, p)
		if !ok {
			return
		}
		imageID, ok := pathID(c, "imageId", "image")
		if !ok {
			return
		}

		found := false
		for _, img := range property.Images {
			if img.Id == imageID {
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, helpers.ErrorResponse("image not found"))
			return
		}

		if err := p.DeletePropertyImage(c.Request.Context(), imageID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, services.NoticeImageDeleted))
	}
}
