package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/dto"
	"github.com/princinho/climaquote/i18n"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/utils"
)

// formUpload reads an optional file part through the upload validator.
func (a *App) formUpload(c *gin.Context, field string) (*quote.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	data, contentType, err := a.Uploads.ReadFile(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &quote.Upload{FileName: fh.Filename, ContentType: contentType, Data: data}, nil
}

// POST /quotes (multipart: "data" JSON, optional "identityDocument" and
// "incomeProof" files)
func (a *App) CreateQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dataStr := c.PostForm("data")
		if dataStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing data field"})
			return
		}

		var body dto.CreateQuoteDTO
		if err := json.Unmarshal([]byte(dataStr), &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "details": err.Error()})
			return
		}
		if strings.TrimSpace(body.ProductID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
			return
		}

		identity, err := a.formUpload(c, quote.KindIdentityDocument)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		income, err := a.formUpload(c, quote.KindIncomeProof)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, ok := a.visibleProduct(c, body.ProductID)
		if !ok {
			return
		}

		cfg := quote.Configure(p, requestLanguage(c, body.Language))
		cfg.Apply(body.Selection)

		res, err := a.Quotes.Submit(ctx, cfg.Confirm(), quote.Submission{
			Client:           body.Client,
			Signature:        body.Signature,
			ClientNotPresent: body.ClientNotPresent,
			AcceptedTerms:    body.AcceptedTerms,
			IdentityDocument: identity,
			IncomeProof:      income,
		})
		if err != nil {
			a.fail(c, err, http.StatusBadGateway)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// GET /sign/:id shows a pending quote to the client who received the link.
func (a *App) GetSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		q, err := a.Quotes.LoadPending(ctx, c.Param("id"))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		var terms string
		if info, err := a.Company.Get(ctx, models.CompanyInfoID); err == nil {
			terms = i18n.Resolve(info.LegalTerms, q.Language)
		}
		c.JSON(http.StatusOK, gin.H{
			"quote":      q,
			"total":      i18n.FormatMoney(q.Price, q.Language),
			"legalTerms": terms,
		})
	}
}

// POST /sign/:id completes a remote signature. A second attempt on the
// same link gets 404.
func (a *App) Sign() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignQuoteDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := a.Quotes.FinalizeRemote(c.Request.Context(), c.Param("id"), body.Signature)
		if err != nil {
			a.fail(c, err, http.StatusBadGateway)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GET /admin/quotes?status=signed&deleted=false
func (a *App) ListQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := adminFilter(c)
		if !ok {
			return
		}
		quotes, err := a.Quotes.List(c.Request.Context(), f)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": quotes, "total": len(quotes)})
	}
}

func (a *App) GetQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := a.Quotes.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// POST /admin/quotes/:id/resend emails the stored document again.
func (a *App) ResendQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		sent, err := a.Quotes.ResendNotification(c.Request.Context(), c.Param("id"))
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notificationSent": sent})
	}
}

func (a *App) DeleteQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Quotes.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (a *App) RestoreQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Quotes.Restore(c.Request.Context(), c.Param("id")); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /admin/quotes/:id/permanent drops the record and its files.
func (a *App) PurgeQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Quotes.Delete(c.Request.Context(), c.Param("id")); err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /admin/quotes/export downloads the filtered history as xlsx.
func (a *App) ExportQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := adminFilter(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		quotes, err := a.Quotes.List(ctx, f)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		info, err := utils.LoadCompany(ctx, a.Company, a.now())
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", quote.ExportFilename(info.Name, a.now())))
		if err := quote.ExportXLSX(c.Writer, quotes); err != nil {
			a.Log.Error().Err(err).Msg("export quotes")
			_ = c.Error(err)
		}
	}
}
