/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Seednode/drawduel/internal/game"
)

func testConfig(t *testing.T) *Config {
	t.Helper()

	d := game.DefaultConfig()
	cfg := &Config{
		bind:           "127.0.0.1",
		port:           8080,
		sessionTimeout: time.Minute,

		countdown:     d.Countdown,
		drawTimeout:   d.DrawTimeout,
		flipImage:     d.FlipImage,
		gapAfter:      d.GapAfter,
		harshness:     d.Harshness,
		minArea:       d.MinArea,
		postRound:     d.PostRound,
		roundDuration: d.RoundDuration,
		rounds:        d.Rounds,
		scoreMode:     d.ScoreMode.String(),
		strokeFilter:  d.StrokeFilter.String(),
		strokeWidth:   d.StrokeWidth,
	}

	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return cfg
}

func newTestServer(t *testing.T) (*httptest.Server, *GameManager) {
	t.Helper()

	errs := make(chan error, 16)
	mux, gm := newRouter(testConfig(t), errs)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		gm.Close()
	})

	return srv, gm
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return resp, body
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, false},
		{"port too high", func(c *Config) { c.port = 70000 }, false},
		{"unknown score mode", func(c *Config) { c.scoreMode = "speed" }, false},
		{"unknown filter", func(c *Config) { c.strokeFilter = "blur" }, false},
		{"timed mode", func(c *Config) { c.scoreMode = "timed" }, true},
		{"no rounds", func(c *Config) { c.rounds = 0 }, false},
		{"negative harshness", func(c *Config) { c.harshness = -1 }, false},
	}

	for _, tt := range tests {
		cfg := testConfig(t)
		tt.mutate(cfg)

		err := cfg.validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, err)
		}
	}
}

func TestValidateBuildsGameConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.rounds = 7
	cfg.flipImage = false
	cfg.scoreMode = "timed"

	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.game.Rounds != 7 {
		t.Errorf("expected 7 rounds, got %d", cfg.game.Rounds)
	}
	if cfg.game.FlipImage {
		t.Errorf("expected flip to be off")
	}
	if cfg.game.ScoreMode.String() != "timed" {
		t.Errorf("expected timed mode, got %s", cfg.game.ScoreMode)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1536, "1.5 kB"},
		{2_500_000, "2.5 MB"},
		{3_000_000_000, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.in); got != tt.want {
			t.Errorf("expected %q for %d, got %q", tt.want, tt.in, got)
		}
	}
}

func TestStaticRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "Start a new game"},
		{"/healthz", http.StatusOK, "Ok"},
		{"/version", http.StatusOK, "drawduel v" + releaseVersion},
		{"/robots.txt", http.StatusOK, "Disallow: /draw/"},
		{"/assets/draw/app.js", http.StatusOK, "WebSocket"},
		{"/assets/draw/missing.js", http.StatusNotFound, ""},
		{"/favicons/favicon.svg", http.StatusOK, "<svg"},
		{"/draw/abc12345", http.StatusOK, "/assets/draw/app.js"},
	}

	for _, tt := range tests {
		resp, body := get(t, srv.URL+tt.path)

		if resp.StatusCode != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
		if !strings.Contains(string(body), tt.contains) {
			t.Errorf("%s: expected body to contain %q", tt.path, tt.contains)
		}
	}
}

func TestIndexReplacesPrefix(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := get(t, srv.URL+"/draw/abc12345")
	if strings.Contains(string(body), "%PREFIX%") {
		t.Errorf("expected prefix placeholders to be replaced")
	}
}

func TestNewGameRedirect(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, srv.URL+"/draw")
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	id := strings.TrimPrefix(loc, "/draw/")
	if !strings.HasPrefix(loc, "/draw/") || len(id) != 8 {
		t.Errorf("expected /draw/ and an 8 character id, got %q", loc)
	}
}

func TestQRCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/draw/abc12345/qr")
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected a png, got %q", resp.Header.Get("Content-Type"))
	}
	if _, err := png.Decode(bytes.NewReader(body)); err != nil {
		t.Errorf("expected a decodable png, got %v", err)
	}
}

func TestScorecardUnknownGame(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, srv.URL+"/draw/nosuchgame/scorecard.pdf")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func dial(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/draw/" + gameID + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// next reads until a JSON message of the given type arrives.
func next(t *testing.T, conn *websocket.Conn, kind string) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", kind, err)
		}
		if mt != websocket.TextMessage {
			continue
		}

		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg["type"] == kind {
			return msg
		}
	}
}

func nextOverlay(t *testing.T, conn *websocket.Conn) image.Image {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for overlay: %v", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return img
	}
}

func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return buf.Bytes()
}

func TestGameOverWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)

	camera := dial(t, srv, "abc12345")

	info := next(t, camera, "session_info")
	if info["is_camera"] != true {
		t.Fatalf("expected the first connection to be the camera, got %v", info)
	}
	if info["game"] != "abc12345" {
		t.Errorf("expected game abc12345, got %v", info["game"])
	}

	watcher := dial(t, srv, "abc12345")
	if info := next(t, watcher, "session_info"); info["is_camera"] != false {
		t.Errorf("expected the second connection to watch, got %v", info)
	}

	if err := camera.WriteMessage(websocket.BinaryMessage, pngFrame(t, 320, 240)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := next(t, camera, "snapshot")
	if snap["state"] != "pre-round" {
		t.Errorf("expected pre-round, got %v", snap["state"])
	}

	overlay := nextOverlay(t, camera)
	if b := overlay.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected a 320x240 overlay, got %v", b)
	}

	if snap := next(t, watcher, "snapshot"); snap["state"] != "pre-round" {
		t.Errorf("expected the watcher to see pre-round, got %v", snap["state"])
	}

	resp, body := get(t, srv.URL+"/draw/abc12345/scorecard.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected scorecard, got %d", resp.StatusCode)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Errorf("expected a pdf")
	}

	if err := watcher.WriteJSON(ClientMessage{Type: "quit"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if done := next(t, camera, "snapshot"); done["done"] != true {
		t.Errorf("expected a finished game, got %v", done)
	}
	next(t, camera, "game_over")
}

func TestCalibrateWithoutFrame(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, "calib123")
	next(t, conn, "session_info")

	if err := conn.WriteJSON(ClientMessage{Type: "calibrate", Player: 0, X: 10, Y: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := next(t, conn, "error")
	if msg["message"] == "" {
		t.Errorf("expected an error message")
	}
}

func TestCalibrateSendsPreview(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, "preview1")
	next(t, conn, "session_info")

	if err := conn.WriteMessage(websocket.BinaryMessage, pngFrame(t, 320, 240)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next(t, conn, "snapshot")

	if err := conn.WriteJSON(ClientMessage{Type: "calibrate", Player: 1, X: 200, Y: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := next(t, conn, "calibrated")
	if msg["player"] != float64(1) {
		t.Errorf("expected player 1, got %v", msg["player"])
	}

	preview, _ := msg["preview"].(string)
	const scheme = "data:image/png;base64,"
	if !strings.HasPrefix(preview, scheme) {
		t.Fatalf("expected a png data url, got %.40q", preview)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(preview, scheme))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected a 320x240 preview, got %v", b)
	}

	// The frame is black, so the calibrated color covers all of it.
	if g, _, _, _ := img.At(200, 100).RGBA(); g == 0 {
		t.Errorf("expected the sampled pixel to be on in the preview")
	}
}
