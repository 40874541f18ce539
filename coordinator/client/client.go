// Package client implements the authenticated session client for the
// settlement coordinator.
//
// The client owns one WebSocket connection per session, performs the
// challenge-response handshake, signs every outbound call, correlates
// replies to their requests, reconnects with bounded exponential
// backoff, and fans unsolicited pushes out to subscribed listeners. The
// rest of an application only touches Connect, Call, Subscribe, and
// Disconnect.
package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/clearport/session_layer/coordinator/wire"
	"github.com/clearport/session_layer/internal/signer"
)

const (
	methodAuthRequest = "auth_request"
	methodAuthVerify  = "auth_verify"
	pushAuthChallenge = "auth_challenge"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultDialTimeout    = 10 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultPingInterval   = 25 * time.Second
	defaultSessionTTL     = time.Hour
)

// Allowance grants the session permission to move up to Amount of Asset.
type Allowance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// Config configures a Client. URL and Key are required.
type Config struct {
	// URL is the coordinator WebSocket endpoint (ws:// or wss://).
	URL string
	// Key is the holder's wallet key. It signs the handshake challenge;
	// post-handshake traffic is signed by an ephemeral session key.
	Key *signer.Key
	// AppName identifies this application in the auth request.
	AppName string
	// Scope is the requested session scope.
	Scope string
	// Application is an optional application address.
	Application string
	// Allowances are the asset allowances requested for the session.
	Allowances []Allowance
	// SessionTTL bounds the requested session expiry. Default 1h.
	SessionTTL time.Duration
	// RequestTimeout is the default deadline for a Call. Default 30s.
	RequestTimeout time.Duration
	// DialTimeout bounds the WebSocket dial. Default 10s.
	DialTimeout time.Duration
	// PingInterval is the keepalive ping period while Open. <= 0 uses
	// the default; set NoPing to disable.
	PingInterval time.Duration
	// NoPing disables the keepalive loop.
	NoPing bool
	// Backoff is the reconnection policy. Zero value uses defaults.
	Backoff BackoffConfig
	// RateLimit throttles outbound calls. Zero means unlimited.
	RateLimit rate.Limit
	// RateBurst is the limiter burst size when RateLimit is set.
	RateBurst int
	// Logger receives client logs. Defaults to a no-op logger.
	Logger zerolog.Logger
	// Metrics receives instrumentation. Nil disables it.
	Metrics *Metrics
}

// handshakeState carries the two signals the handshake waits on for one
// connection attempt.
type handshakeState struct {
	challenge chan string
	failed    chan error
}

// Client is the coordinator session client. All exported methods are
// safe for concurrent use.
type Client struct {
	cfg     Config
	log     zerolog.Logger
	metrics *Metrics
	limiter *rate.Limiter

	pend *correlator
	subs *dispatcher

	// afterFunc schedules the reconnect timer. Swapped in tests so the
	// backoff schedule is observable without wall-clock delays.
	afterFunc func(d time.Duration, f func()) *time.Timer

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	connEpoch  uint64
	hs         *handshakeState
	sessionID  string
	sessionKey *signer.Key
	token      string
	tokenExp   time.Time
	attempt    int
	reconnect  *time.Timer
	pingStop   chan struct{}

	writeMu sync.Mutex
}

// New creates a client. It does not connect.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("client: URL is required")
	}
	if cfg.Key == nil {
		return nil, signer.ErrNoKey
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.Backoff.BaseDelay <= 0 || cfg.Backoff.MaxAttempts <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}

	c := &Client{
		cfg:       cfg,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		pend:      newCorrelator(),
		subs:      newDispatcher(cfg.Logger),
		afterFunc: time.AfterFunc,
		state:     StateIdle,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	return c, nil
}

// Connect dials the coordinator and runs the authentication handshake.
// It returns once the session is Open and authenticated, or with the
// handshake failure. Valid only from Idle or Closed.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateClosed {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("client: connect from state %s", state)
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	err := c.establish(ctx)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if c.state.handshaking() {
		// Dial failure or caller cancellation with the socket still up:
		// tear down without scheduling a reconnect.
		c.teardownLocked()
		c.setStateLocked(StateClosed)
	}
	reconnecting := c.state == StateReconnecting
	c.mu.Unlock()

	if reconnecting {
		// The socket dropped mid-handshake. The connect call rejects,
		// and the reconnection policy takes over in the background.
		c.scheduleReconnect()
	}
	return err
}

// establish dials and authenticates one socket connection. Shared by
// Connect and the reconnection path.
func (c *Client) establish(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return &TransportError{Op: "dial", Err: err}
	}

	sessionKey, err := signer.Generate()
	if err != nil {
		conn.Close()
		return err
	}

	hs := &handshakeState{
		challenge: make(chan string, 1),
		failed:    make(chan error, 1),
	}

	sessionID := uuid.NewString()

	c.mu.Lock()
	c.conn = conn
	c.connEpoch++
	epoch := c.connEpoch
	c.hs = hs
	c.sessionID = sessionID
	c.sessionKey = sessionKey
	c.setStateLocked(StateAwaitingChallenge)
	c.mu.Unlock()

	c.log.Debug().
		Str("session_id", sessionID).
		Str("url", c.cfg.URL).
		Msg("socket open, starting handshake")

	go c.readLoop(conn, epoch)

	if err := c.sendAuthRequest(conn, sessionKey); err != nil {
		return err
	}

	var challenge string
	select {
	case challenge = <-hs.challenge:
	case err := <-hs.failed:
		return err
	case <-ctx.Done():
		return fmt.Errorf("client: handshake: %w", ctx.Err())
	}

	c.mu.Lock()
	c.setStateLocked(StateAuthenticating)
	c.mu.Unlock()

	return c.verifyChallenge(ctx, conn, hs, challenge)
}

type authRequestParams struct {
	Address     string      `json:"address"`
	SessionKey  string      `json:"session_key"`
	AppName     string      `json:"app_name"`
	Expire      uint64      `json:"expire"`
	Scope       string      `json:"scope"`
	Application string      `json:"application,omitempty"`
	Allowances  []Allowance `json:"allowances"`
}

type challengePayload struct {
	Challenge string `json:"challenge"`
}

type authVerifyParams struct {
	Challenge string `json:"challenge"`
	Signature string `json:"challenge_signature"`
}

type authResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// sendAuthRequest announces the holder address and the fresh session key.
// No pending entry is registered: the handshake advances on the
// challenge push, not on a reply to this request.
func (c *Client) sendAuthRequest(conn *websocket.Conn, sessionKey *signer.Key) error {
	allowances := c.cfg.Allowances
	if allowances == nil {
		allowances = []Allowance{}
	}
	params := authRequestParams{
		Address:     c.cfg.Key.Address(),
		SessionKey:  sessionKey.Address(),
		AppName:     c.cfg.AppName,
		Expire:      uint64(time.Now().Add(c.cfg.SessionTTL).Unix()),
		Scope:       c.cfg.Scope,
		Application: c.cfg.Application,
		Allowances:  allowances,
	}

	req, err := c.newRequest(c.pend.allocID(), methodAuthRequest, params)
	if err != nil {
		return err
	}
	// The wallet key signs handshake envelopes; the session key takes
	// over once the session is Open.
	if err := wire.SignRequest(req, c.cfg.Key); err != nil {
		return err
	}
	return c.writeRequest(conn, req)
}

// verifyChallenge signs the challenge with the wallet key and waits for
// the auth result.
func (c *Client) verifyChallenge(ctx context.Context, conn *websocket.Conn, hs *handshakeState, challenge string) error {
	challengeSig, err := c.cfg.Key.Sign(challenge)
	if err != nil {
		// No key or an unusable key is a fatal handshake error, never a
		// retryable one.
		c.closeTerminal()
		return err
	}

	call := c.pend.register(methodAuthVerify, c.cfg.RequestTimeout)
	req, err := c.newRequest(call.id, methodAuthVerify, authVerifyParams{
		Challenge: challenge,
		Signature: "0x" + hex.EncodeToString(challengeSig),
	})
	if err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		return err
	}
	if err := wire.SignRequest(req, c.cfg.Key); err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		return err
	}
	if err := c.writeRequest(conn, req); err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		return err
	}

	var res callResult
	select {
	case res = <-call.done:
	case err := <-hs.failed:
		c.pend.resolve(call.id, nil, ErrCancelled)
		return err
	case <-ctx.Done():
		c.pend.resolve(call.id, nil, ErrCancelled)
		return fmt.Errorf("client: handshake: %w", ctx.Err())
	}

	if res.err != nil {
		var rpcErr *wire.RPCError
		if errors.As(res.err, &rpcErr) {
			// The coordinator rejected the challenge response. Terminal:
			// bad credentials are not a network blip.
			c.closeTerminal()
			return &AuthError{Reason: rpcErr.Message}
		}
		return res.err
	}

	var result authResult
	if err := json.Unmarshal(res.result, &result); err != nil {
		c.closeTerminal()
		return fmt.Errorf("client: auth result: %w", err)
	}
	if !result.Success {
		c.closeTerminal()
		return &AuthError{Reason: result.Reason}
	}

	c.mu.Lock()
	c.hs = nil
	c.token = result.Token
	c.tokenExp = tokenExpiry(result.Token)
	c.attempt = 0
	sessionID := c.sessionID
	c.setStateLocked(StateOpen)
	c.startPingLocked(conn)
	c.mu.Unlock()

	c.log.Info().
		Str("session_id", sessionID).
		Str("address", c.cfg.Key.Address()).
		Msg("session authenticated")
	return nil
}

// closeTerminal tears the connection down into Closed without scheduling
// a reconnect. Used for handshake rejections.
func (c *Client) closeTerminal() {
	c.mu.Lock()
	c.teardownLocked()
	c.setStateLocked(StateClosed)
	c.mu.Unlock()
}

// Call issues a signed request and waits for the correlated reply, the
// default timeout, or ctx cancellation. It fails immediately with
// ErrNotAuthenticated while the session is not Open; the envelope is
// never transmitted in that case.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.CallTimeout(ctx, method, params, c.cfg.RequestTimeout)
}

// CallTimeout is Call with an explicit per-call deadline. A timeout of
// zero or less falls back to the configured default: no call is allowed
// to wait indefinitely.
func (c *Client) CallTimeout(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = c.cfg.RequestTimeout
	}

	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	conn := c.conn
	key := c.sessionKey
	c.mu.Unlock()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
	}

	start := time.Now()
	call := c.pend.register(method, timeout)

	req, err := c.newRequest(call.id, method, params)
	if err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		return nil, err
	}
	if err := wire.SignRequest(req, key); err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		return nil, err
	}
	if err := c.writeRequest(conn, req); err != nil {
		c.pend.resolve(call.id, nil, ErrCancelled)
		c.metrics.observeCall(method, "write_error", time.Since(start).Seconds())
		return nil, err
	}

	var res callResult
	select {
	case res = <-call.done:
	case <-ctx.Done():
		// Local cancellation only: the in-flight request's effects on
		// the coordinator are unaffected.
		c.pend.resolve(call.id, nil, ErrCancelled)
		res = <-call.done
	}

	outcome := "ok"
	if res.err != nil {
		outcome = outcomeLabel(res.err)
	}
	c.metrics.observeCall(method, outcome, time.Since(start).Seconds())
	return res.result, res.err
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrConnectionClosed):
		return "connection_closed"
	default:
		return "error"
	}
}

// Subscribe registers handler for pushes whose category matches exactly,
// or for all pushes via CategoryAll. The returned function removes the
// subscription and is safe to call repeatedly.
func (c *Client) Subscribe(category string, handler PushHandler) func() {
	return c.subs.subscribe(category, handler)
}

// Disconnect performs a clean client-initiated close: pending calls are
// rejected with ErrCancelled, any scheduled reconnect timer is
// cancelled, and a close frame is sent. Valid from any state; a second
// call is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateClosing)
	sessionID := c.sessionID
	hs := c.hs
	c.hs = nil
	conn := c.conn
	c.conn = nil
	c.stopPingLocked()
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	c.token = ""
	c.tokenExp = time.Time{}
	c.sessionKey = nil
	c.attempt = 0
	c.mu.Unlock()

	if hs != nil {
		select {
		case hs.failed <- ErrCancelled:
		default:
		}
	}

	c.pend.failAll(ErrCancelled)

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(defaultWriteTimeout),
		)
		c.writeMu.Unlock()
		conn.Close()
	}

	c.mu.Lock()
	c.setStateLocked(StateClosed)
	c.mu.Unlock()

	c.log.Info().Str("session_id", sessionID).Msg("session closed")
}

// readLoop is the only place inbound envelopes are processed. One bad
// envelope never terminates it: malformed input is logged and dropped.
func (c *Client) readLoop(conn *websocket.Conn, epoch uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(epoch, err)
			return
		}

		env, err := wire.Decode(data)
		if err != nil {
			c.metrics.observeProtocolError()
			c.log.Warn().Err(err).Msg("dropping malformed envelope")
			continue
		}

		switch env.Kind {
		case wire.KindResponse:
			r := env.Response
			if r.Err != nil {
				c.pend.resolve(r.ID, nil, r.Err)
			} else {
				c.pend.resolve(r.ID, r.Result, nil)
			}

		case wire.KindPush:
			c.handlePush(env.Push)

		case wire.KindRequest:
			// The coordinator does not issue requests to clients.
			c.metrics.observeProtocolError()
			c.log.Warn().Str("method", env.Request.Method).Msg("dropping unexpected inbound request")
		}
	}
}

func (c *Client) handlePush(p *wire.Push) {
	if p.Type == pushAuthChallenge {
		c.mu.Lock()
		hs := c.hs
		handshaking := c.state.handshaking()
		c.mu.Unlock()

		if handshaking && hs != nil {
			var payload challengePayload
			if err := json.Unmarshal(p.Payload, &payload); err != nil || payload.Challenge == "" {
				c.metrics.observeProtocolError()
				c.log.Warn().Msg("dropping malformed auth challenge")
				return
			}
			select {
			case hs.challenge <- payload.Challenge:
			default:
			}
			return
		}
		// A challenge outside the handshake falls through as an ordinary
		// push so listeners can observe it.
	}

	c.metrics.observePush(p.Type)
	c.subs.dispatch(p.Type, p.Payload)
}

// handleDisconnect reacts to the socket closing underneath the read
// loop. Clean closes (Closing/Closed) and superseded connections are
// ignored; anything else rejects all pending calls and enters the
// reconnection policy.
func (c *Client) handleDisconnect(epoch uint64, cause error) {
	c.mu.Lock()
	if c.connEpoch != epoch || c.state == StateClosing || c.state == StateClosed || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	hs := c.hs
	prev := c.state
	sessionID := c.sessionID
	c.conn = nil
	c.stopPingLocked()
	c.setStateLocked(StateReconnecting)
	c.mu.Unlock()

	c.log.Warn().
		Str("session_id", sessionID).
		Str("from_state", prev.String()).
		Err(cause).
		Msg("connection lost")

	c.pend.failAll(ErrConnectionClosed)

	if hs != nil {
		// A handshake is waiting on this connection; its caller owns the
		// retry decision.
		select {
		case hs.failed <- ErrConnectionClosed:
		default:
		}
		return
	}
	c.scheduleReconnect()
}

// scheduleReconnect arms the next reconnect timer, or fires the terminal
// error event once the attempt budget is exhausted.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	if c.attempt >= c.cfg.Backoff.MaxAttempts {
		c.setStateLocked(StateClosed)
		c.mu.Unlock()

		c.log.Error().
			Int("attempts", c.cfg.Backoff.MaxAttempts).
			Msg("reconnect attempts exhausted")
		c.dispatchError(ErrReconnectExhausted)
		return
	}
	delay := c.cfg.Backoff.delayFor(c.attempt)
	c.attempt++
	c.metrics.observeReconnect()
	c.reconnect = c.afterFunc(delay, c.redial)
	attempt := c.attempt
	c.mu.Unlock()

	c.log.Info().
		Dur("delay", delay).
		Int("attempt", attempt).
		Msg("reconnect scheduled")
}

// redial runs one reconnect attempt.
func (c *Client) redial() {
	c.mu.Lock()
	if c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DialTimeout+c.cfg.RequestTimeout)
	defer cancel()

	err := c.establish(ctx)
	if err == nil {
		c.log.Info().Str("session_id", c.SessionID()).Msg("reconnected")
		return
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		// Credentials went bad across the reconnect. Terminal.
		c.dispatchError(authErr)
		return
	}

	c.mu.Lock()
	if c.state.handshaking() {
		// Dial succeeded but the handshake could not finish in time.
		c.teardownLocked()
		c.setStateLocked(StateReconnecting)
	}
	c.mu.Unlock()

	c.scheduleReconnect()
}

// dispatchError surfaces a side-channel failure on the error category.
func (c *Client) dispatchError(err error) {
	payload, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		payload = json.RawMessage(`{"error":"internal"}`)
	}
	c.metrics.observePush(CategoryError)
	c.subs.dispatch(CategoryError, payload)
}

// newRequest builds an unsigned request envelope.
func (c *Client) newRequest(id uint64, method string, params any) (*wire.Request, error) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("client: marshal params: %w", err)
		}
		raw = data
	}
	return &wire.Request{
		ID:     id,
		Method: method,
		Params: raw,
		TS:     uint64(time.Now().UnixMilli()),
	}, nil
}

func (c *Client) writeRequest(conn *websocket.Conn, req *wire.Request) error {
	data, err := wire.Encode(req)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// teardownLocked closes the live socket without state bookkeeping.
// Callers hold c.mu and set the next state themselves.
func (c *Client) teardownLocked() {
	c.hs = nil
	c.stopPingLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) setStateLocked(s State) {
	c.state = s
	c.metrics.observeState(s)
}

func (c *Client) startPingLocked(conn *websocket.Conn) {
	if c.cfg.NoPing {
		return
	}
	stop := make(chan struct{})
	c.pingStop = stop
	go c.pingLoop(conn, stop)
}

func (c *Client) stopPingLocked() {
	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
}

// pingLoop keeps the socket alive while Open. A failed ping closes the
// connection; the read loop then drives the reconnection policy.
func (c *Client) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(defaultWriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.log.Warn().Err(err).Msg("keepalive ping failed")
				conn.Close()
				return
			}
		}
	}
}

// tokenExpiry extracts the expiry of the coordinator-issued JWT without
// verifying it. The token is advisory: a fresh handshake revalidates it.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether a socket is currently established.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// IsAuthenticated reports whether the session is Open. The session is
// authenticated only while Open.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateOpen
}

// Address returns the holder's public address.
func (c *Client) Address() string {
	return c.cfg.Key.Address()
}

// SessionID returns the identifier of the current socket connection.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// TokenExpiry returns the expiry of the coordinator-issued session
// token, or the zero time when unknown.
func (c *Client) TokenExpiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenExp
}
