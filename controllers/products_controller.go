package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/catalog"
	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/dto"
	"github.com/princinho/climaquote/extract"
	"github.com/princinho/climaquote/metrics"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/storage"
	"github.com/princinho/climaquote/utils"
)

// adminFilter reads ?deleted=, ?status= and ?limit= into a store filter.
func adminFilter(c *gin.Context) (database.Filter, bool) {
	deleted, err := utils.ParseBoolQuery(c.Query("deleted"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deleted flag"})
		return database.Filter{}, false
	}
	limit := utils.ParseIntDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	return database.Filter{
		Deleted: deleted,
		Status:  strings.TrimSpace(c.Query("status")),
		Limit:   limit,
	}, true
}

// GET /admin/products?deleted=false&status=active
func (a *App) ListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := adminFilter(c)
		if !ok {
			return
		}
		products, err := a.Products.List(c.Request.Context(), f)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": products, "total": len(products)})
	}
}

func (a *App) AdminGetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func (a *App) AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto dto.CreateProductDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "details": err.Error()})
			return
		}

		now := a.now()
		product := models.Product{
			Brand:            strings.TrimSpace(dto.Brand),
			Model:            strings.TrimSpace(dto.Model),
			Type:             strings.TrimSpace(dto.Type),
			Description:      dto.Description,
			Features:         orEmpty(dto.Features),
			ImageURL:         dto.ImageURL,
			DatasheetURL:     dto.DatasheetURL,
			PricingOptions:   orEmpty(dto.PricingOptions),
			InstallationKits: orEmpty(dto.InstallationKits),
			Extras:           orEmpty(dto.Extras),
			FinancingPlans:   orEmpty(dto.FinancingPlans),
			Status:           dto.Status,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if product.Status == "" {
			product.Status = models.ProductStatusDraft
		}
		catalog.EnsureEntryIDs(&product)

		id, err := a.Products.Insert(c.Request.Context(), product)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		saved, err := a.Products.Get(c.Request.Context(), id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

func (a *App) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var dto dto.UpdateProductDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "details": err.Error()})
			return
		}

		// nested entries sent without ids still need one
		var probe models.Product
		set := database.Patch{}
		if dto.Brand != nil {
			set["brand"] = strings.TrimSpace(*dto.Brand)
		}
		if dto.Model != nil {
			set["model"] = strings.TrimSpace(*dto.Model)
		}
		if dto.Type != nil {
			set["type"] = strings.TrimSpace(*dto.Type)
		}
		if dto.Description != nil {
			set["description"] = *dto.Description
		}
		if dto.Features != nil {
			set["features"] = orEmpty(*dto.Features)
		}
		if dto.ImageURL != nil {
			set["imageUrl"] = *dto.ImageURL
		}
		if dto.DatasheetURL != nil {
			set["datasheetUrl"] = *dto.DatasheetURL
		}
		if dto.PricingOptions != nil {
			probe.PricingOptions = orEmpty(*dto.PricingOptions)
		}
		if dto.InstallationKits != nil {
			probe.InstallationKits = orEmpty(*dto.InstallationKits)
		}
		if dto.Extras != nil {
			probe.Extras = orEmpty(*dto.Extras)
		}
		catalog.EnsureEntryIDs(&probe)
		if dto.PricingOptions != nil {
			set["pricingOptions"] = probe.PricingOptions
		}
		if dto.InstallationKits != nil {
			set["installationKits"] = probe.InstallationKits
		}
		if dto.Extras != nil {
			set["extras"] = probe.Extras
		}
		if dto.FinancingPlans != nil {
			set["financingPlans"] = orEmpty(*dto.FinancingPlans)
		}
		if dto.Status != nil {
			set["status"] = *dto.Status
		}
		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
			return
		}

		if err := a.Products.Update(ctx, id, set); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		saved, err := a.Products.Get(ctx, id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// POST /admin/products/:id/duplicate stores a draft copy.
func (a *App) DuplicateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := a.Products.Get(ctx, c.Param("id"))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		id, err := a.Products.Insert(ctx, catalog.Duplicate(p, a.now()))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		copied, err := a.Products.Get(ctx, id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, copied)
	}
}

func (a *App) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Products.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (a *App) RestoreProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Products.Restore(c.Request.Context(), c.Param("id")); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /admin/products/:id/permanent removes the record and its media.
// Quotes keep their frozen copy of the product.
func (a *App) PurgeProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		p, err := a.Products.Get(ctx, id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		if err := a.Products.Delete(ctx, id); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		storage.RemoveBestEffort(ctx, a.Blobs, a.Log.With().Str("product_id", id).Logger(), p.ImageURL, p.DatasheetURL)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// Media kinds accepted by UploadProductMedia.
const (
	MediaImage     = "image"
	MediaDatasheet = "datasheet"
)

// POST /admin/products/:id/media/:kind (multipart "file")
func (a *App) UploadProductMedia() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		kind := c.Param("kind")
		if kind != MediaImage && kind != MediaDatasheet {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
			return
		}

		p, err := a.Products.Get(ctx, id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		data, contentType, err := a.Uploads.ReadFile(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if kind == MediaImage && !strings.HasPrefix(contentType, "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product image must be an image"})
			return
		}
		if kind == MediaDatasheet && contentType != "application/pdf" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "datasheet must be a PDF"})
			return
		}

		url, err := a.Blobs.Upload(ctx, "products/"+id, data, contentType)
		if err != nil {
			a.fail(c, err, http.StatusBadGateway)
			return
		}

		field, previous := "imageUrl", p.ImageURL
		if kind == MediaDatasheet {
			field, previous = "datasheetUrl", p.DatasheetURL
		}
		log := a.Log.With().Str("product_id", id).Logger()
		if err := a.Products.Update(ctx, id, database.Patch{field: url}); err != nil {
			storage.RemoveBestEffort(ctx, a.Blobs, log, url)
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		storage.RemoveBestEffort(ctx, a.Blobs, log, previous)

		c.JSON(http.StatusOK, gin.H{"url": url, "kind": kind})
	}
}

// POST /admin/products/extract (multipart "file") returns a draft for
// review. Nothing is stored.
func (a *App) ExtractProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		if fh.Size > a.Uploads.MaxBytes() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, a.Uploads.MaxBytes()))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}

		draft, err := a.Extractor.Extract(c.Request.Context(), extract.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			metrics.Extractions.WithLabelValues("error").Inc()
			a.fail(c, err, http.StatusBadGateway)
			return
		}
		metrics.Extractions.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, draft)
	}
}

// POST /admin/products/:id/collections/:collection appends a default entry.
func (a *App) AddCollectionEntry() gin.HandlerFunc {
	return a.editCollection(func(c *gin.Context, p *models.Product, collection string) (int, error) {
		if err := catalog.AppendDefault(p, collection); err != nil {
			return 0, err
		}
		return http.StatusCreated, nil
	})
}

// PATCH /admin/products/:id/collections/:collection/:index
func (a *App) EditCollectionEntry() gin.HandlerFunc {
	return a.editCollection(func(c *gin.Context, p *models.Product, collection string) (int, error) {
		i, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return 0, catalog.ErrIndexOutOfRange
		}
		var patch catalog.EntryPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			return http.StatusBadRequest, err
		}
		return http.StatusOK, catalog.EditIn(p, collection, i, patch)
	})
}

// DELETE /admin/products/:id/collections/:collection/:index
func (a *App) RemoveCollectionEntry() gin.HandlerFunc {
	return a.editCollection(func(c *gin.Context, p *models.Product, collection string) (int, error) {
		i, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return 0, catalog.ErrIndexOutOfRange
		}
		return http.StatusOK, catalog.RemoveFrom(p, collection, i)
	})
}

var collectionFields = map[string]string{
	catalog.CollectionFeatures:  "features",
	catalog.CollectionPricing:   "pricingOptions",
	catalog.CollectionKits:      "installationKits",
	catalog.CollectionExtras:    "extras",
	catalog.CollectionFinancing: "financingPlans",
}

func collectionValue(p models.Product, collection string) any {
	switch collection {
	case catalog.CollectionFeatures:
		return p.Features
	case catalog.CollectionPricing:
		return p.PricingOptions
	case catalog.CollectionKits:
		return p.InstallationKits
	case catalog.CollectionExtras:
		return p.Extras
	default:
		return p.FinancingPlans
	}
}

// editCollection loads the product, lets edit change one nested collection
// in memory and stores only that collection back.
func (a *App) editCollection(edit func(*gin.Context, *models.Product, string) (int, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		collection := c.Param("collection")
		field, ok := collectionFields[collection]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
			return
		}

		p, err := a.Products.Get(ctx, id)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		status, err := edit(c, &p, collection)
		if status == http.StatusBadRequest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "details": err.Error()})
			return
		}
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		value := collectionValue(p, collection)
		if err := a.Products.Update(ctx, id, database.Patch{field: value}); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(status, gin.H{"collection": collection, "items": value})
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
