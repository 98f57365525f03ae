package routes

import (
	"github.com/Kariqs/amexan-shop/controllers"
	"github.com/Kariqs/amexan-shop/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine) {
	checkout := server.Group("/checkout", middlewares.RequireAuth())
	{
		checkout.GET("", controllers.GetCheckout)
		checkout.POST("", controllers.Checkout)
	}
}

func PaymentRoutes(server *gin.Engine) {
	payment := server.Group("/payment")
	{
		payment.GET("/process", middlewares.RequireAuth(), controllers.ProcessPayment)
		// The gateway redirects here without the user's session.
		payment.GET("/success/:orderId", controllers.PaymentSuccess)
		payment.GET("/fail/:orderId", middlewares.RequireAuth(), controllers.PaymentFail)
		payment.GET("/cancel/:orderId", middlewares.RequireAuth(), controllers.PaymentCancel)
		payment.GET("/ipn", controllers.HandlePesapalIPN)
		payment.POST("/ipn", controllers.HandlePesapalIPN)
	}
}

func ProfileRoutes(server *gin.Engine) {
	server.GET("/profile", middlewares.RequireAuth(), controllers.GetProfile)
}
