package client

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/clearport/session_layer/coordinator/wire"
	"github.com/clearport/session_layer/internal/signer"
)

// fakeCoordinator is an in-process coordinator speaking the real wire
// protocol: it issues challenges, verifies challenge signatures by
// recovering the signer address, checks the envelope signature of every
// authenticated request against the announced session key, and answers
// method calls through a handler table.
type fakeCoordinator struct {
	t   *testing.T
	srv *httptest.Server

	upgrader websocket.Upgrader

	mu         sync.Mutex
	conns      []*websocket.Conn
	rejectAuth bool
	handlers   map[string]func(params json.RawMessage) (any, *wire.RPCError)
	// onRequest, when set, intercepts authenticated requests before the
	// handler table. Return true to mark the request handled.
	onRequest func(conn *websocket.Conn, req *wire.Request) bool

	dials int
}

const testJWTSecret = "fake-coordinator-secret"

func newFakeCoordinator(t *testing.T) *fakeCoordinator {
	f := &fakeCoordinator{
		t:        t,
		handlers: make(map[string]func(params json.RawMessage) (any, *wire.RPCError)),
	}
	f.handlers["ping"] = func(json.RawMessage) (any, *wire.RPCError) {
		return "pong", nil
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCoordinator) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeCoordinator) handle(method string, fn func(params json.RawMessage) (any, *wire.RPCError)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = fn
}

func (f *fakeCoordinator) setRejectAuth(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAuth = v
}

func (f *fakeCoordinator) setOnRequest(fn func(conn *websocket.Conn, req *wire.Request) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRequest = fn
}

func (f *fakeCoordinator) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

// push sends an unsolicited event on every live connection.
func (f *fakeCoordinator) push(category string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		f.t.Fatalf("push marshal: %v", err)
	}
	frame, err := wire.Encode(&wire.Push{Type: category, Payload: data})
	if err != nil {
		f.t.Fatalf("push encode: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}
}

// dropConnections force-closes every live connection without a close
// frame, simulating a network failure.
func (f *fakeCoordinator) dropConnections() {
	f.mu.Lock()
	conns := f.conns
	f.conns = nil
	f.mu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}
}

func (f *fakeCoordinator) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.dials++
	f.conns = append(f.conns, conn)
	f.mu.Unlock()

	defer conn.Close()

	var (
		holderAddr  string
		sessionAddr string
		challenge   string
		authed      bool
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := wire.Decode(data)
		if err != nil || env.Kind != wire.KindRequest {
			continue
		}
		req := env.Request

		switch req.Method {
		case methodAuthRequest:
			var params authRequestParams
			if err := json.Unmarshal(req.Params, &params); err != nil {
				f.respondErr(conn, req.ID, 400, "bad auth request")
				continue
			}
			holderAddr = params.Address
			sessionAddr = params.SessionKey
			challenge = uuid.NewString()
			f.writeJSON(conn, &wire.Push{
				Type:    pushAuthChallenge,
				Payload: mustJSON(f.t, challengePayload{Challenge: challenge}),
			})

		case methodAuthVerify:
			var params authVerifyParams
			if err := json.Unmarshal(req.Params, &params); err != nil {
				f.respondErr(conn, req.ID, 400, "bad auth verify")
				continue
			}
			f.mu.Lock()
			reject := f.rejectAuth
			f.mu.Unlock()

			sig, err := hex.DecodeString(strings.TrimPrefix(params.Signature, "0x"))
			if err != nil {
				f.respond(conn, req.ID, authResult{Success: false, Reason: "signature not hex"})
				continue
			}
			recovered, err := signer.RecoverAddress(challenge, sig)
			if reject || err != nil || recovered != holderAddr || params.Challenge != challenge {
				f.respond(conn, req.ID, authResult{Success: false, Reason: "challenge verification failed"})
				continue
			}
			authed = true
			f.respond(conn, req.ID, authResult{Success: true, Token: f.mintToken(holderAddr)})

		default:
			if !authed {
				f.respondErr(conn, req.ID, 401, "not authenticated")
				continue
			}
			// Every authenticated envelope must be signed by the
			// announced session key.
			recovered, err := wire.VerifyRequest(req)
			if err != nil || recovered != sessionAddr {
				f.respondErr(conn, req.ID, 403, "bad envelope signature")
				continue
			}

			f.mu.Lock()
			intercept := f.onRequest
			handler := f.handlers[req.Method]
			f.mu.Unlock()

			if intercept != nil && intercept(conn, req) {
				continue
			}
			if handler == nil {
				f.respondErr(conn, req.ID, 404, "unknown method: "+req.Method)
				continue
			}
			result, rpcErr := handler(req.Params)
			if rpcErr != nil {
				f.writeJSON(conn, &wire.Response{ID: req.ID, Err: rpcErr})
				continue
			}
			if result != nil {
				f.respond(conn, req.ID, result)
			}
		}
	}
}

func (f *fakeCoordinator) mintToken(subject string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		f.t.Fatalf("mint token: %v", err)
	}
	return token
}

func (f *fakeCoordinator) respond(conn *websocket.Conn, id uint64, result any) {
	f.writeJSON(conn, &wire.Response{ID: id, Result: mustJSON(f.t, result)})
}

func (f *fakeCoordinator) respondErr(conn *websocket.Conn, id uint64, code int, msg string) {
	f.writeJSON(conn, &wire.Response{ID: id, Err: &wire.RPCError{Code: code, Message: msg}})
}

func (f *fakeCoordinator) writeJSON(conn *websocket.Conn, v any) {
	data, err := wire.Encode(v)
	if err != nil {
		f.t.Errorf("encode: %v", err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
