package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallyhq/wally/api"
	"github.com/wallyhq/wally/cache/redis"
	"github.com/wallyhq/wally/mq/sqsmq"
	"github.com/wallyhq/wally/store/dynamo"
)

const (
	DynamoDBTable     = "Wally"
	SQSPurgeWallQueue = "PurgeWallQueue"
)

func main() {
	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	wallyStore, err := dynamo.NewDynamoWallyStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatalf("Failed to create dynamodb store: %v", err)
	}

	purgeWallQueue, err := sqsmq.New(ctx, devMode, os.Getenv("SQS_ENDPOINT"), SQSPurgeWallQueue)
	if err != nil {
		log.Fatalf("Failed to create SQS MQ: %v", err)
	}

	wallyCache, err := redis.NewRedisWallyCache(ctx, devMode, os.Getenv("REDIS_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to create redis cache: %v", err)
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	wallyApi := api.NewWallyAPI(wallyStore, wallyCache, purgeWallQueue, shutdownCtx)

	mux := http.NewServeMux()

	requiredOrigin := os.Getenv("ALLOWED_ORIGIN")
	if requiredOrigin == "" {
		requiredOrigin = "*"
	}
	wallyApi.RegisterRoutes(mux, requiredOrigin)

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}
	log.Printf("Starting server on host port: %s\n", hostPort)
	log.Fatal(http.ListenAndServe(":"+hostPort, mux))
}
