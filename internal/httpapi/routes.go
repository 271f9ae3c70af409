package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/hub"
	"github.com/arenalight/arena-server/internal/ws"
)

func SetupRoutes(h *hub.Hub, verifier auth.Verifier, sessions *ws.Sessions, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/rooms", ListRooms(h))
	r.Post("/rooms/{name}/start", StartRoom(h, log))
	r.Post("/rooms/{name}/invites", InvitePlayer(h, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, verifier, sessions, log))
	return r
}
