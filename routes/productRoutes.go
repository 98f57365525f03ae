package routes

import (
	"github.com/Kariqs/amexan-shop/controllers"
	"github.com/Kariqs/amexan-shop/middlewares"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine) {
	server.GET("/products", controllers.GetProducts)
	server.GET("/category/:slug", controllers.GetCategoryProducts)
	server.GET("/product/:slug", middlewares.OptionalAuth(), controllers.GetProduct)
	server.POST("/product/:slug/rate", middlewares.RequireAuth(), controllers.RateProduct)
}
