package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lending-service/internal/adapter/gin/handler"
	"lending-service/internal/adapter/gin/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Books   *handler.BookHandler
	Lending *handler.LendingHandler
	Reports *handler.ReportHandler
}

// SetupRouter configures the gin engine with all routes and middleware.
func SetupRouter(h Handlers, resolver middleware.ActorResolver, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Actor(resolver, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lending-service",
		})
	})

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		books := v1.Group("/books")
		{
			books.GET("", h.Books.ListBooks)
			books.GET("/categories", h.Books.ListCategories)
			books.GET("/:id", h.Books.GetBook)
			books.GET("/:id/consistency", h.Lending.Reconcile)
			books.POST("/:id/borrow", h.Lending.Borrow)
			books.POST("/:id/return", h.Lending.Return)

			admin := books.Group("", middleware.RequireAdmin())
			{
				admin.POST("", h.Books.CreateBook)
				admin.PUT("/:id", h.Books.UpdateBook)
				admin.DELETE("/:id", h.Books.DeleteBook)
			}
		}

		v1.GET("/loans", h.Lending.MyLoans)
		v1.GET("/reports/overview", h.Reports.Overview)
	}

	return router
}
