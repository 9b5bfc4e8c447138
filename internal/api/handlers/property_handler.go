package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/services"
	"homznspace/backend/internal/storage"
	"homznspace/backend/internal/store"
)

const multipartMemory = 32 << 20

// PropertyHandler serves the property catalogue and /areas.
type PropertyHandler struct {
	propertyService services.IPropertyService
	maxUploadBytes  int64
}

func NewPropertyHandler(propertyService services.IPropertyService, maxUploadBytes int64) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService, maxUploadBytes: maxUploadBytes}
}

// List handles GET /api/properties?city=&area=&type=&status=&featured=&listingType=
func (h *PropertyHandler) List(c *gin.Context) {
	filter := store.PropertyFilter{
		City:        c.Query("city"),
		Area:        c.Query("area"),
		Type:        c.Query("type"),
		Possession:  c.Query("status"),
		Featured:    c.Query("featured") == "true",
		ListingType: c.Query("listingType"),
	}
	properties, err := h.propertyService.List(c.Request.Context(), filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// Get handles GET /api/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	prop, err := h.propertyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// ListMine handles GET /api/properties/my-listings
func (h *PropertyHandler) ListMine(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	properties, err := h.propertyService.ListMine(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// Create handles POST /api/properties (multipart: data + images/video/brochure)
func (h *PropertyHandler) Create(c *gin.Context) {
	input, uploads, err := h.readPropertyRequest(c)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	p, _ := middleware.GetPrincipal(c)
	prop, err := h.propertyService.Create(c.Request.Context(), p, input, uploads)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}

// Update handles PUT /api/properties/:id (multipart or JSON)
func (h *PropertyHandler) Update(c *gin.Context) {
	update, uploads, err := h.readPropertyRequest(c)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	p, _ := middleware.GetPrincipal(c)
	prop, err := h.propertyService.Update(c.Request.Context(), p, c.Param("id"), update, uploads)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// Delete handles DELETE /api/properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	if err := h.propertyService.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Property removed"})
}

// Areas handles GET /api/areas
func (h *PropertyHandler) Areas(c *gin.Context) {
	areas, err := h.propertyService.Areas(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

// readPropertyRequest accepts either a multipart form whose "data" field holds
// the JSON payload, or a plain JSON body without files.
func (h *PropertyHandler) readPropertyRequest(c *gin.Context) (models.PropertyUpdate, []services.Upload, error) {
	var payload models.PropertyUpdate
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := decodeStrict(c.Request.Body, &payload); err != nil {
			return payload, nil, err
		}
		return payload, nil, nil
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return payload, nil, apperr.Validation(fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit))
		}
		return payload, nil, apperr.Validation("malformed multipart form")
	}
	form := c.Request.MultipartForm

	if data := form.Value["data"]; len(data) > 0 && strings.TrimSpace(data[0]) != "" {
		if err := decodeStrictBytes([]byte(data[0]), &payload); err != nil {
			return payload, nil, err
		}
	}

	var uploads []services.Upload
	for _, kind := range []storage.MediaKind{storage.MediaImage, storage.MediaVideo, storage.MediaBrochure} {
		for _, fh := range form.File[string(kind)] {
			data, err := readFormFile(fh)
			if err != nil {
				return payload, nil, apperr.Validation(fmt.Sprintf("could not read %s", fh.Filename), string(kind))
			}
			uploads = append(uploads, services.Upload{Kind: kind, Filename: fh.Filename, Data: data})
		}
	}
	for field := range form.File {
		switch storage.MediaKind(field) {
		case storage.MediaImage, storage.MediaVideo, storage.MediaBrochure:
		default:
			return payload, nil, apperr.Validation(fmt.Sprintf("unexpected file field %q", field), field)
		}
	}
	return payload, uploads, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
