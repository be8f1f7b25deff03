package ws

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"

	"github.com/wallyhq/wally/protocol"
	"github.com/wallyhq/wally/registry"
	"github.com/wallyhq/wally/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Service: svc,
	}
}

func (h *Handler) NewWsUpgrader(requiredOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if requiredOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == requiredOrigin
		},
	}
}

// ServeWS handles websocket requests from the peer. The client presents
// its durable id in the clientId query parameter. Client ids are minted
// by the client, never the server; a connection without one lands in
// the shared empty-string bucket.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	clientId := r.URL.Query().Get("clientId")
	sessionUuid, err := uuid.NewV4()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	identity := registry.Identity{SessionId: sessionUuid.String(), ClientId: clientId}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade ws connection: %v", err)
		return
	}

	sess, err := h.Service.Connect(r.Context(), identity)
	if err != nil {
		log.Printf("Failed to connect client %s: %v", clientId, err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "Failed to establish session"),
		)
		conn.Close()
		return
	}

	client := NewClient(conn, identity.SessionId,
		func(messageBytes []byte) { h.handleMessage(sess, messageBytes) },
		func() { h.Service.Disconnect(context.Background(), sess) },
	)
	h.Service.Registry.Register(identity, client)

	go client.ReadPump()
	go client.WritePump(shutdownCtx)

	// Tell the client which durable user it resolved to.
	connected, err := protocol.Encode(protocol.NewUserConnected(sess.User))
	if err != nil {
		log.Printf("Failed to encode connected message: %v", err)
		return
	}
	client.Send(connected)
}

func (h *Handler) handleMessage(sess *service.Session, messageBytes []byte) {
	msg, err := protocol.Decode(messageBytes)
	if errors.Is(err, protocol.ErrUnknownType) {
		log.Printf("Dropping message of unknown type from session %s", sess.Identity.SessionId)
		return
	}
	if err != nil {
		log.Printf("Invalid message from session %s: %v", sess.Identity.SessionId, err)
		return
	}
	h.Service.HandleMessage(context.Background(), sess, msg)
}
