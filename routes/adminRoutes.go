package routes

import (
	"github.com/Kariqs/amexan-shop/controllers"
	"github.com/Kariqs/amexan-shop/middlewares"
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine) {
	admin := server.Group("/admin", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.POST("/category", controllers.CreateCategory)
		admin.DELETE("/category/:slug", controllers.DeleteCategory)
		admin.POST("/product", controllers.CreateProduct)
		admin.PATCH("/product/:slug", controllers.UpdateProduct)
		admin.POST("/product/:slug/image", controllers.UploadProductImage)
		admin.GET("/order", controllers.GetOrders)
		admin.PATCH("/order/:orderId", controllers.UpdateOrderStatus)
	}
}
