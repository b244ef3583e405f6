/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// drawduel
//
// Two players each hold a colored marker in front of a shared webcam and
// trace the shape shown on screen. The browser with the webcam streams
// frames to the server, which tracks both markers, runs the rounds and
// sends back an annotated overlay.
//
// Features:
// - WebSockets per game ID: /draw/:gameid and /draw/:gameid/ws
// - First connection to a game becomes its camera; later connections watch
// - Camera frames arrive as binary JPEG or PNG messages, overlays leave as JPEG
// - Any connection may continue, replay, quit or calibrate a marker color
// - Signals are held until the next frame, so a round only moves on camera time
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - PDF scorecard of every finished round, backed by gofpdf
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/drawduel/internal/game"
	"github.com/Seednode/drawduel/internal/vision"
)

const (
	maxFrameBytes  = 4 << 20
	overlayQuality = 75
	writeWait      = 10 * time.Second
)

var errGameNotFound = errors.New("game not found")

// Messages coming from clients
type ClientMessage struct {
	Type      string `json:"type"`                // "continue", "replay", "quit", "calibrate"
	Player    int    `json:"player,omitempty"`    // calibrate
	X         int    `json:"x,omitempty"`         // calibrate, in overlay pixels
	Y         int    `json:"y,omitempty"`         // calibrate, in overlay pixels
	Tolerance *int   `json:"tolerance,omitempty"` // calibrate
}

// SessionInfoMessage is sent immediately on connect so the client knows
// whether it should stream its camera.
type SessionInfoMessage struct {
	Type     string `json:"type"` // "session_info"
	Game     string `json:"game"`
	IsCamera bool   `json:"is_camera"`
}

// CalibratedMessage announces a player's new marker color to everyone.
// Preview is a PNG data URL of the pixels the new color matches.
type CalibratedMessage struct {
	Type    string              `json:"type"` // "calibrated"
	Player  int                 `json:"player"`
	Profile vision.ColorProfile `json:"profile"`
	Preview string              `json:"preview,omitempty"`
}

// SimpleMessage is for generic notifications ("error", "game_over")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type frameRequest struct {
	client *Client
	data   []byte
}

type signalRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub owns one game. Only its run goroutine touches the sequencer and the
// client set; the mutex guards what HTTP handlers read.
type Hub struct {
	id   string
	game *game.Sequencer

	clients        map[*Client]bool
	cameraPlayerID string
	pending        game.Signal
	last           *game.Snapshot

	register chan *Client
	unreg    chan *Client
	frames   chan frameRequest
	signals  chan signalRequest

	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
	session    string
	history    []game.RoundResult
}

func newHub(cfg *Config, gameID string) (*Hub, error) {
	seq, err := game.New(cfg.game)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Hub{
		id:         gameID,
		game:       seq,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		frames:     make(chan frameRequest),
		signals:    make(chan signalRequest),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		session:    seq.ID,
	}, nil
}

func (h *Hub) run(cfg *Config, forget func()) {
	defer forget()

	for {
		select {
		case c := <-h.register:
			h.touch()

			// First connection becomes the camera
			if h.cameraPlayerID == "" {
				h.cameraPlayerID = c.playerID
				logf(cfg, "GAMES: Camera connected to %s", h.id)
			}

			h.clients[c] = true

			h.sendTo(c, SessionInfoMessage{
				Type:     "session_info",
				Game:     h.id,
				IsCamera: c.playerID == h.cameraPlayerID,
			})
			if h.last != nil {
				h.sendTo(c, *h.last)
			}

		case c := <-h.unreg:
			h.touch()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case f := <-h.frames:
			// Spectators' frames are ignored.
			if f.client.playerID != h.cameraPlayerID {
				continue
			}

			h.touch()

			frame, _, err := image.Decode(bytes.NewReader(f.data))
			if err != nil {
				logf(cfg, "ERROR: Dropped undecodable frame for %s: %v", h.id, err)
				frame = nil
			}

			sig := h.pending
			h.pending = game.None

			h.tick(cfg, frame, sig)

		case s := <-h.signals:
			h.touch()
			h.handleSignal(cfg, s)

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}

			return
		}
	}
}

func (h *Hub) handleSignal(cfg *Config, s signalRequest) {
	switch s.msg.Type {
	case "quit":
		h.tick(cfg, nil, game.Quit)

	case "continue", "replay":
		h.pending = game.ParseSignal(s.msg.Type)

	case "calibrate":
		if s.msg.Tolerance != nil {
			if err := h.game.SetTolerance(*s.msg.Tolerance); err != nil {
				h.sendTo(s.client, SimpleMessage{Type: "error", Message: err.Error()})

				return
			}
		}

		p, err := h.game.Calibrate(s.msg.Player, image.Pt(s.msg.X, s.msg.Y))
		if err != nil {
			h.sendTo(s.client, SimpleMessage{Type: "error", Message: err.Error()})

			return
		}

		logf(cfg, "GAMES: Calibrated player %d of %s to %s-%s", s.msg.Player+1, h.id, p.Lower, p.Upper)

		h.broadcast(CalibratedMessage{
			Type:    "calibrated",
			Player:  s.msg.Player,
			Profile: p,
			Preview: h.preview(cfg, s.msg.Player),
		})

	default:
		// ignore unknown types
	}
}

// preview encodes the calibration mask of player as a data URL, or returns
// "" when there is nothing to show.
func (h *Hub) preview(cfg *Config, player int) string {
	m := h.game.Preview(player)
	if m == nil {
		return ""
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		logf(cfg, "ERROR: Unable to encode preview for %s: %v", h.id, err)

		return ""
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// tick advances the game and sends the result to every client.
func (h *Hub) tick(cfg *Config, frame image.Image, sig game.Signal) {
	snap, overlay, err := h.game.Tick(frame, sig)
	if err != nil {
		logf(cfg, "ERROR: Game %s halted: %v", h.id, err)
		h.broadcast(SimpleMessage{
			Type:    "error",
			Message: "The game stopped after an internal error.",
		})
		h.stop()

		return
	}

	h.mu.Lock()
	h.session = snap.Session
	h.history = h.game.History()
	h.mu.Unlock()

	h.last = &snap
	h.broadcast(snap)

	if overlay != nil {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, overlay, &jpeg.Options{Quality: overlayQuality}); err != nil {
			logf(cfg, "ERROR: Unable to encode overlay for %s: %v", h.id, err)
		} else {
			h.broadcast(buf.Bytes())
		}
	}

	if snap.Done {
		logf(cfg, "GAMES: Game %s ended", h.id)
		h.broadcast(SimpleMessage{Type: "game_over", Message: "The game has ended."})
		h.stop()
	}
}

// sendTo queues msg for c, dropping it if c has fallen behind.
func (h *Hub) sendTo(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// scorecard returns the finished rounds of the current playthrough.
func (h *Hub) scorecard() (string, []game.RoundResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]game.RoundResult, len(h.history))
	copy(out, h.history)

	return h.session, out
}

// stop ends the hub; it is safe to call more than once.
func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 16,
	WriteBufferSize: 1 << 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "drawduel_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each /draw/:gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	quit      chan struct{}
	closeOnce sync.Once
}

func newGameManager(idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		quit:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	hub, err := newHub(cfg, gameID)
	if err != nil {
		return nil, err
	}

	gm.hubs[gameID] = hub
	go hub.run(cfg, func() { gm.forget(gameID, hub) })

	return hub, nil
}

// find returns a running game without starting one.
func (gm *GameManager) find(gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	hub, ok := gm.hubs[gameID]
	if !ok {
		return nil, errGameNotFound
	}

	return hub, nil
}

func (gm *GameManager) forget(gameID string, hub *Hub) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.hubs[gameID] == hub {
		delete(gm.hubs, gameID)
	}
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically stops hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-gm.quit:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			if hub.idleSince().Before(cutoff) {
				delete(gm.hubs, id)
				hub.stop()
			}
		}
		gm.mu.Unlock()
	}
}

// Close stops the reaper and every running game.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() {
		close(gm.quit)
	})

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub, err := gm.getHub(cfg, gameID)
		if err != nil {
			http.Error(w, "unable to start game", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}
		conn.SetReadLimit(maxFrameBytes)

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		switch kind {
		case websocket.BinaryMessage:
			select {
			case h.frames <- frameRequest{client: c, data: data}:
			case <-h.done:
				return
			}

		case websocket.TextMessage:
			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}

			select {
			case h.signals <- signalRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		var err error
		switch m := msg.(type) {
		case []byte:
			err = c.conn.WriteMessage(websocket.BinaryMessage, m)
		default:
			err = c.conn.WriteJSON(m)
		}
		if err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	code, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(code)
}

func serveScorecard(cfg *Config, gm *GameManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		gameID := ps.ByName("gameid")

		hub, err := gm.find(gameID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		session, history := hub.scorecard()

		var buf bytes.Buffer
		if err := writeScorecard(&buf, gameID, session, history); err != nil {
			errs <- err
			http.Error(w, "scorecard generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="drawduel-`+gameID+`.pdf"`)
		securityHeaders(cfg, w)

		written, err := w.Write(buf.Bytes())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Scorecard for %s (%s) to %s in %s",
			gameID,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	page, err := assets.ReadFile("assets/draw/index.html")
	if err != nil {
		panic("missing embedded page: " + err.Error())
	}
	page = []byte(replacePrefix(cfg, string(page)))

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(page)
	}
}

// redirectNewGame handles GET /draw by generating a new random game ID
// (with server-side collision detection) and redirecting to /draw/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerDrawGame sets up routes so that:
//   - $path                        → redirects to new random game (8-char ID)
//   - $path/:gameid                → HTML client
//   - $path/:gameid/ws             → WebSocket for that game
//   - $path/:gameid/qr             → PNG QR code for that game URL
//   - $path/:gameid/scorecard.pdf  → PDF of the finished rounds
func registerDrawGame(cfg *Config, errs chan<- error, path string, mux *httprouter.Router) *GameManager {
	gm := newGameManager(cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	mux.GET(cfg.prefix+path+"/:gameid/scorecard.pdf", serveScorecard(cfg, gm, errs))

	return gm
}
