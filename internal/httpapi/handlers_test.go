package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/hub"
	"github.com/arenalight/arena-server/internal/room"
	"github.com/arenalight/arena-server/internal/ws"
)

func newTestServer(t *testing.T) (*hub.Hub, http.Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Config{TickInterval: time.Hour})
	return h, SetupRoutes(h, auth.GuestVerifier{}, ws.NewSessions(), zap.NewNop())
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createRoom(t *testing.T, handler http.Handler, body string) (name, hostKey string) {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/rooms", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room status = %d, body %q", rec.Code, rec.Body.String())
	}
	var res struct {
		Name    string `json:"name"`
		HostKey string `json:"hostKey"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if res.Name == "" || res.HostKey == "" {
		t.Fatalf("create response = %+v, want a name and a host key", res)
	}
	return res.Name, res.HostKey
}

func roomView(t *testing.T, h *hub.Hub, name string) room.View {
	t.Helper()
	get := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Name: name, Reply: get}
	rm := <-get
	if rm == nil {
		t.Fatalf("room %q not registered", name)
	}
	reply := make(chan room.View, 1)
	rm.Inbox() <- room.GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return room.View{}
	}
}

func TestHostStartsWaitingRoom(t *testing.T) {
	h, handler := newTestServer(t)
	name, hostKey := createRoom(t, handler, `{"name":"arena","maxPlayers":4,"minPlayers":2}`)

	if v := roomView(t, h, name); v.Phase != room.PhaseWaiting {
		t.Fatalf("phase = %q, want waiting before host start", v.Phase)
	}

	rec := doJSON(t, handler, http.MethodPost, "/rooms/"+name+"/start", `{"hostKey":"not-the-key"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("start with wrong key status = %d, want 403", rec.Code)
	}
	if v := roomView(t, h, name); v.Phase != room.PhaseWaiting {
		t.Fatalf("wrong key must not start the room")
	}

	rec = doJSON(t, handler, http.MethodPost, "/rooms/"+name+"/start", `{"hostKey":"`+hostKey+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("host start status = %d, want 204", rec.Code)
	}
	if v := roomView(t, h, name); v.Phase != room.PhaseStarted {
		t.Fatalf("phase = %q, want started after host start", v.Phase)
	}
}

func TestStartUnknownRoomIsNotFound(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doJSON(t, handler, http.MethodPost, "/rooms/nowhere/start", `{"hostKey":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHostInviteAllowlistsIdentity(t *testing.T) {
	h, handler := newTestServer(t)
	name, hostKey := createRoom(t, handler, `{"name":"vip","maxPlayers":4,"private":true,"key":"pw"}`)

	rec := doJSON(t, handler, http.MethodPost, "/rooms/"+name+"/invites",
		`{"hostKey":"`+hostKey+`","identity":"g:friend"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("invite status = %d, body %q", rec.Code, rec.Body.String())
	}

	check := make(chan bool, 1)
	h.Inbox() <- hub.CheckAllow{Room: name, IdentityKey: "g:friend", Reply: check}
	if !<-check {
		t.Fatalf("invited identity should be allowlisted")
	}
}

func TestInviteRequiresHostKeyAndIdentity(t *testing.T) {
	h, handler := newTestServer(t)
	name, hostKey := createRoom(t, handler, `{"name":"vip","maxPlayers":4,"private":true,"key":"pw"}`)

	rec := doJSON(t, handler, http.MethodPost, "/rooms/"+name+"/invites",
		`{"hostKey":"wrong","identity":"g:friend"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("invite with wrong key status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/rooms/"+name+"/invites",
		`{"hostKey":"`+hostKey+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invite without identity status = %d, want 400", rec.Code)
	}

	check := make(chan bool, 1)
	h.Inbox() <- hub.CheckAllow{Room: name, IdentityKey: "g:friend", Reply: check}
	if <-check {
		t.Fatalf("rejected invites must not allowlist anyone")
	}
}
