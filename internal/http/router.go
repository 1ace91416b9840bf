package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/http/controller"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
)

// Controllers groups the handlers mounted by InitRouter.
type Controllers struct {
	Base      *controller.Controller
	Auth      *controller.AuthController
	Product   *controller.ProductController
	Purchase  *controller.PurchaseController
	Sales     *controller.SalesController
	Dashboard *controller.DashboardController
	History   *controller.HistoryController
	Rate      *controller.RateController
	Live      *controller.LiveController
}

// InitRouter mounts every route on server. Only /ping, /auth/* and /dashboard/ws are public.
func InitRouter(server *gin.Engine, httpMiddleware *middleware.Middleware, ctrs Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.CORS())
	server.Use(middleware.Logger())

	server.GET("/ping", ctrs.Base.Ping)

	authGroup := server.Group("/auth")
	{
		authGroup.POST("/login", ctrs.Auth.Login)
		authGroup.POST("/register", ctrs.Auth.Register)
	}

	// The websocket handshake carries its token in the query string.
	server.GET("/dashboard/ws", ctrs.Live.Subscribe)

	private := server.Group("")
	private.Use(httpMiddleware.Authenticate())

	private.GET("/users/me", ctrs.Auth.Me)

	// Product endpoints
	products := private.Group("/products")
	{
		products.POST("", ctrs.Product.CreateProduct)
		products.GET("", ctrs.Product.ListProducts)
		products.POST("/purchase", ctrs.Purchase.Purchase)
		products.GET("/history", ctrs.History.List)
		products.PUT("/:id", ctrs.Product.UpdateProduct)
		products.DELETE("/:id", ctrs.Product.DeleteProduct)
	}
	private.GET("/categories", ctrs.Product.ListCategories)

	sales := private.Group("/sales")
	{
		sales.GET("/history", ctrs.Sales.History)
		sales.GET("/top-products", ctrs.Sales.TopProducts)
		sales.GET("/trend", ctrs.Sales.Trend)
		sales.GET("/by-category", ctrs.Sales.ByCategory)
		sales.POST("/reset", ctrs.Sales.Reset)
	}

	private.GET("/dashboard/products", ctrs.Dashboard.ListProducts)

	private.GET("/exchange-rate", ctrs.Rate.GetRate)
	private.PUT("/exchange-rate", ctrs.Rate.SetRate)

	return server
}
