package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SproutGo/config"
	"SproutGo/middleware"
	"SproutGo/routes"
	"SproutGo/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.InitLogger(); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer config.Logger.Sync()

	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
		return
	}

	if err := config.InitDB(conf); err != nil {
		log.Fatalf("failed to init database: %v", err)
		return
	}

	if err := config.InitRedis(conf); err != nil {
		log.Fatalf("failed to init redis: %v", err)
		return
	}

	openAIClient, err := services.NewOpenAIClient(conf.OpenAIAPIKey, conf.OpenAIAPIEndpoint, conf.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to init OpenAI client: %v", err)
	}

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	middleware.SetupMiddleware(r)

	chatController, chatService := routes.RegisterRoutes(r, openAIClient, conf)

	srv := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("starting server on port %s", conf.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("waiting for background work...")
	chatController.Wait()
	chatService.Wait()
	log.Println("server exited")
}
