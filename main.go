package main

import (
	"log"

	"github.com/Kariqs/amexan-shop/initializers"
	"github.com/Kariqs/amexan-shop/routes"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectToDB()
	initializers.SyncDatabase()
	initializers.InitServices()
}

func main() {
	server := routes.SetupRouter()
	if err := server.Run(":" + initializers.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
