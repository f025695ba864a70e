package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/dto"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/utils"
)

func (a *App) GetSettings() gin.HandlerFunc {
	return a.GetCompany()
}

// PUT /admin/settings replaces the company singleton.
func (a *App) UpdateSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.UpdateCompanyDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "details": err.Error()})
			return
		}

		now := a.now()
		current, err := a.Company.Get(ctx, models.CompanyInfoID)
		if errors.Is(err, database.ErrNotFound) {
			current = utils.DefaultCompany(now)
		} else if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		addresses := body.Addresses
		if addresses == nil {
			addresses = []models.NamedAddress{}
		}
		info := models.CompanyInfo{
			ID:           models.CompanyInfoID,
			Name:         strings.TrimSpace(body.Name),
			LegalName:    strings.TrimSpace(body.LegalName),
			TaxID:        strings.TrimSpace(body.TaxID),
			LogoURL:      body.LogoURL,
			PrimaryColor: body.PrimaryColor,
			Email:        strings.TrimSpace(body.Email),
			Phone:        strings.TrimSpace(body.Phone),
			Website:      strings.TrimSpace(body.Website),
			Social:       body.Social,
			Addresses:    addresses,
			LegalTerms:   body.LegalTerms,
			CreatedAt:    current.CreatedAt,
			UpdatedAt:    now,
		}
		if err := a.Company.Replace(ctx, models.CompanyInfoID, info); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
