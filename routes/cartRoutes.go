package routes

import (
	"github.com/Kariqs/amexan-shop/controllers"
	"github.com/Kariqs/amexan-shop/middlewares"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.RequireAuth())
	{
		cart.GET("", controllers.GetCart)
		cart.POST("/add/:productId", controllers.AddToCart)
		cart.POST("/update/:productId", controllers.UpdateCartItem)
		cart.POST("/remove/:productId", controllers.RemoveFromCart)
	}
}
