package api

import (
	"context"
	"net/http"

	"github.com/wallyhq/wally/api/rest"
	"github.com/wallyhq/wally/api/ws"
	"github.com/wallyhq/wally/cache"
	"github.com/wallyhq/wally/directory"
	"github.com/wallyhq/wally/mq"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/service"
	"github.com/wallyhq/wally/store"
	"github.com/wallyhq/wally/worker"
)

type WallyAPI struct {
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	shutdownCtx context.Context
}

func NewWallyAPI(
	wallyStore store.WallyStore,
	wallyCache cache.WallyCache,
	purgeWallQueue mq.MessageQueue,
	shutdownCtx context.Context,
) *WallyAPI {
	sessionRegistry := registry.New()
	wallDirectory := directory.New(wallyStore)

	moveBatcher := worker.NewMoveBatcher(wallyStore, 500)
	go moveBatcher.Run(shutdownCtx)

	purgeConsumer := worker.NewPurgeConsumer(purgeWallQueue, wallyStore, wallyCache)
	go purgeConsumer.Run(shutdownCtx)

	wsHub := ws.NewHub(wallyCache, wallDirectory, sessionRegistry, shutdownCtx)

	svc := service.NewService(
		wallyStore,
		wallyCache,
		purgeWallQueue,
		wallDirectory,
		sessionRegistry,
		moveBatcher,
		wsHub,
	)

	return &WallyAPI{
		restHandler: rest.NewHandler(svc),
		wsHandler:   ws.NewHandler(svc),
		shutdownCtx: shutdownCtx,
	}
}

func (wallyAPI *WallyAPI) RegisterRoutes(mux *http.ServeMux, requiredOrigin string) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/walls", wallyAPI.restHandler.HandleListWalls)
	mux.HandleFunc("/wall/{name}", wallyAPI.restHandler.HandleGetWall)
	mux.HandleFunc("/data/{id}", wallyAPI.restHandler.HandleGetData)

	wsUpgrader := wallyAPI.wsHandler.NewWsUpgrader(requiredOrigin)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		wallyAPI.wsHandler.ServeWS(wsUpgrader, w, r, wallyAPI.shutdownCtx)
	})
}
