package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/catalog"
	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/dto"
	"github.com/princinho/climaquote/i18n"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/pricing"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/utils"
)

// GET /catalog?type=split&brand=Daikin&maxPrice=1500
func (a *App) GetCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var criteria catalog.Criteria
		if err := c.ShouldBindQuery(&criteria); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters", "details": err.Error()})
			return
		}

		products, err := a.Products.List(ctx, database.Filter{Deleted: database.Bool(false)})
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		view := catalog.Load(catalog.Visible(products))
		if criteria.Type == "" {
			criteria.Type = catalog.All
		}
		if criteria.Brand == "" {
			criteria.Brand = catalog.All
		}
		if criteria.MaxPrice <= 0 {
			criteria.MaxPrice = view.Ceiling
		}

		items := view.Apply(criteria)
		c.JSON(http.StatusOK, gin.H{
			"items":        items,
			"total":        len(items),
			"catalogTotal": len(view.Products),
			"ceiling":      view.Ceiling,
			"criteria":     criteria,
			"types":        view.Types,
			"brands":       view.Brands,
			"language":     requestLanguage(c, ""),
		})
	}
}

// visibleProduct loads a product the public may configure.
func (a *App) visibleProduct(c *gin.Context, id string) (models.Product, bool) {
	p, err := a.Products.Get(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && (p.IsDeleted || p.Status != models.ProductStatusActive)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return models.Product{}, false
	}
	if err != nil {
		a.fail(c, err, http.StatusInternalServerError)
		return models.Product{}, false
	}
	return p, true
}

// GET /products/:id returns the product with its default configuration.
func (a *App) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := a.visibleProduct(c, c.Param("id"))
		if !ok {
			return
		}
		cfg := quote.Configure(p, requestLanguage(c, ""))
		c.JSON(http.StatusOK, gin.H{
			"product":   p,
			"selection": cfg.Selection(),
			"breakdown": cfg.Breakdown(),
		})
	}
}

// POST /products/:id/price prices a selection without storing anything.
func (a *App) PriceProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.PriceRequestDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, ok := a.visibleProduct(c, c.Param("id"))
		if !ok {
			return
		}

		lang := requestLanguage(c, body.Language)
		cfg := quote.Configure(p, lang)
		cfg.Apply(body.Selection)
		b := cfg.Breakdown()

		c.JSON(http.StatusOK, gin.H{
			"selection":     cfg.Selection(),
			"breakdown":     b,
			"total":         i18n.FormatMoney(b.Total, lang),
			"financingText": quote.FinancingDescription(b.Financing, lang),
			"unknownExtras": pricing.UnknownExtras(p, cfg.Selection()),
		})
	}
}

// GET /company is the public letterhead.
func (a *App) GetCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := utils.LoadCompany(c.Request.Context(), a.Company, a.now())
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
