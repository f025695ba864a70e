package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/princinho/climaquote/catalog"
	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/extract"
	"github.com/princinho/climaquote/i18n"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/storage"
	"github.com/princinho/climaquote/utils"
)

// AuthSettings is how the operator proves they know the shared secret.
type AuthSettings struct {
	SecretHash string
	Secret     string
	JWTSecret  []byte
	TokenTTL   time.Duration
}

// App carries everything the handlers need. Nothing here is a package
// global, so tests build their own.
type App struct {
	Products  database.Collection[models.Product]
	Company   database.Collection[models.CompanyInfo]
	Quotes    *quote.Service
	Blobs     storage.BlobStore
	Extractor extract.Extractor
	Uploads   *utils.FileValidator
	Auth      AuthSettings
	Log       zerolog.Logger
	Now       func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

// requestLanguage prefers an explicit value, then ?lang=, then the
// Accept-Language header.
func requestLanguage(c *gin.Context, explicit string) string {
	if explicit != "" {
		return i18n.Normalize(explicit)
	}
	if q := c.Query("lang"); q != "" {
		return i18n.Normalize(q)
	}
	return i18n.Normalize(i18n.DetectLanguage(c.GetHeader("Accept-Language")))
}

// fail maps domain errors to status codes. Anything unrecognised is logged
// and answered with fallback and a generic message.
func (a *App) fail(c *gin.Context, err error, fallback int) {
	var ve *quote.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid data", "details": ve.Fields})
	case errors.Is(err, quote.ErrSignatureRequired),
		errors.Is(err, quote.ErrTermsNotAccepted),
		errors.Is(err, quote.ErrDocumentsRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, quote.ErrLinkInvalid):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, quote.ErrNotSigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, catalog.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, extract.ErrUnsupportedFile):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, extract.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		a.Log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		msg := "internal error"
		if fallback == http.StatusBadGateway {
			msg = "the quote could not be completed, please try again"
		}
		c.JSON(fallback, gin.H{"error": msg})
	}
}
