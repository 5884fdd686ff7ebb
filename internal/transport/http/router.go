package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter собирает gin-маршрутизатор сервиса корзины.
// Все маршруты /cart требуют идентичности вызывающего.
func NewRouter(handler *CartHandler, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())

	api := router.Group("/cart")
	api.Use(IdentityMiddleware(jwtSecret))
	{
		api.POST("/open", handler.Open)
		api.GET("", handler.Get)
		api.POST("/items", handler.AddItem)
		api.PUT("/items/:itemId", handler.UpdateItem)
		api.DELETE("/items/:itemId", handler.RemoveItem)
		api.POST("/checkout", handler.Checkout)
		api.GET("/order/:orderId", handler.GetOrder)

		// Legacy-поверхность: прямой доступ к хранилищу.
		api.GET("/user-items", handler.LegacyGetUserItems)
		api.DELETE("/user-items", handler.LegacyDeleteUserItems)
	}

	return router
}
