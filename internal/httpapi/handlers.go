package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/hub"
	"github.com/arenalight/arena-server/internal/room"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRoomRequest struct {
	Name          string `json:"name"`
	MaxPlayers    int    `json:"maxPlayers"`
	MaxSpectators int    `json:"maxSpectators"`
	DurationMin   int    `json:"durationMin"`
	MinPlayers    int    `json:"minPlayers"`
	Private       bool   `json:"private"`
	Key           string `json:"key"`
}

// CreateRoom registers a new active room. A blank name gets a generated
// code; an explicit name that collides with an active room is a conflict.
func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if req.Private && req.Key == "" {
			http.Error(w, "private room requires a key", http.StatusBadRequest)
			return
		}
		if req.MaxPlayers <= 0 {
			req.MaxPlayers = h.DefaultSpec().MaxPlayers
		}

		name := req.Name
		if name == "" {
			var err error
			if name, err = freeCode(h); err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
		}

		var keyHash string
		if req.Private {
			var err error
			if keyHash, err = auth.HashKey(req.Key); err != nil {
				http.Error(w, "failed to process key", http.StatusInternalServerError)
				return
			}
		}

		hostKey := uuid.NewString()
		reply := make(chan hub.CreateReply, 1)
		h.Inbox() <- hub.CreateRoom{
			Spec: hub.Spec{
				Name:          name,
				MaxPlayers:    req.MaxPlayers,
				MaxSpectators: req.MaxSpectators,
				Duration:      time.Duration(req.DurationMin) * time.Minute,
				MinPlayers:    req.MinPlayers,
				Private:       req.Private,
				KeyHash:       keyHash,
				HostKey:       hostKey,
			},
			Reply: reply,
		}
		res := <-reply
		if errors.Is(res.Err, room.ErrNameConflict) {
			http.Error(w, "room name in use", http.StatusConflict)
			return
		}
		if res.Err != nil || res.Room == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		log.Info("room created via api", zap.String("room", name))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Name    string `json:"name"`
			HostKey string `json:"hostKey"`
		}{Name: name, HostKey: hostKey})
	}
}

type hostActionRequest struct {
	HostKey  string `json:"hostKey"`
	Identity string `json:"identity"`
}

// StartRoom lets the creator start a waiting room before
// MinPlayersToStart is reached. The host key comes from the create
// response.
func StartRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		rm := lookupRoom(h, name)
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		var req hostActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if err := rm.AuthorizeHost(req.HostKey); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		rm.Inbox() <- room.Start{}
		log.Info("room started by host", zap.String("room", name))
		w.WriteHeader(http.StatusNoContent)
	}
}

// InvitePlayer allowlists an identity for the room. While the entry is
// live the invitee joins a private room without its key.
func InvitePlayer(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		rm := lookupRoom(h, name)
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		var req hostActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if err := rm.AuthorizeHost(req.HostKey); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		h.Inbox() <- hub.Allow{Room: name, IdentityKey: req.Identity}
		log.Info("invite issued", zap.String("room", name))
		w.WriteHeader(http.StatusNoContent)
	}
}

func lookupRoom(h *hub.Hub, name string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Name: name, Reply: reply}
	return <-reply
}

// freeCode regenerates until the code is not an active room name.
func freeCode(h *hub.Hub) (string, error) {
	for {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		if lookupRoom(h, code) == nil {
			return code, nil
		}
	}
}

func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []hub.RoomInfo, 1)
		h.Inbox() <- hub.ListRooms{Reply: reply}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(<-reply)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
