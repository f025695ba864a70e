package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/metrics"
	"github.com/princinho/climaquote/middleware"
)

// Register mounts the public, auth and admin routes. limiter guards the
// endpoints that write on behalf of anonymous callers.
func Register(r gin.IRouter, a *App, limiter gin.HandlerFunc) {
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": a.now()})
	})
	r.GET("/metrics", metrics.Handler())

	r.GET("/company", a.GetCompany())
	r.GET("/catalog", a.GetCatalog())
	r.GET("/products/:id", a.GetProduct())
	r.POST("/products/:id/price", a.PriceProduct())
	r.POST("/quotes", limiter, a.CreateQuote())
	r.GET("/sign/:id", a.GetSignature())
	r.POST("/sign/:id", limiter, a.Sign())

	r.POST("/auth/login", limiter, a.Login())

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.Auth.JWTSecret))
	{
		admin.GET("/products", a.ListProducts())
		admin.POST("/products", a.AddProduct())
		admin.POST("/products/extract", a.ExtractProduct())
		admin.GET("/products/:id", a.AdminGetProduct())
		admin.PATCH("/products/:id", a.UpdateProduct())
		admin.DELETE("/products/:id", a.DeleteProduct())
		admin.POST("/products/:id/restore", a.RestoreProduct())
		admin.DELETE("/products/:id/permanent", a.PurgeProduct())
		admin.POST("/products/:id/duplicate", a.DuplicateProduct())
		admin.POST("/products/:id/media/:kind", a.UploadProductMedia())
		admin.POST("/products/:id/collections/:collection", a.AddCollectionEntry())
		admin.PATCH("/products/:id/collections/:collection/:index", a.EditCollectionEntry())
		admin.DELETE("/products/:id/collections/:collection/:index", a.RemoveCollectionEntry())

		admin.GET("/settings", a.GetSettings())
		admin.PUT("/settings", a.UpdateSettings())

		admin.GET("/quotes", a.ListQuotes())
		admin.GET("/quotes/export", a.ExportQuotes())
		admin.GET("/quotes/:id", a.GetQuote())
		admin.POST("/quotes/:id/resend", a.ResendQuote())
		admin.DELETE("/quotes/:id", a.DeleteQuote())
		admin.POST("/quotes/:id/restore", a.RestoreQuote())
		admin.DELETE("/quotes/:id/permanent", a.PurgeQuote())
	}
}
