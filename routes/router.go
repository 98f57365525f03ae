package routes

import (
	"time"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/middlewares"
	"github.com/Kariqs/amexan-shop/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine with every route group registered.
func SetupRouter() *gin.Engine {
	utils.RegisterValidators()

	server := gin.New()
	server.Use(gin.Logger(), gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger())
	corsConfig := cors.Config{
		AllowOrigins:     initializers.AppConfig.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	server.Use(cors.New(corsConfig))

	DefaultRoutes(server)
	AuthRoutes(server)
	ProductRoutes(server)
	CartRoutes(server)
	OrderRoutes(server)
	PaymentRoutes(server)
	ProfileRoutes(server)
	AdminRoutes(server)
	return server
}
