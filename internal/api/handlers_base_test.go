// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locrelay/internal/config"
	"github.com/tomtom215/locrelay/internal/events"
	"github.com/tomtom215/locrelay/internal/media"
	"github.com/tomtom215/locrelay/internal/presence"
	"github.com/tomtom215/locrelay/internal/store"
	ws "github.com/tomtom215/locrelay/internal/websocket"
)

// testEnv is a full relay behind the chi router.
type testEnv struct {
	cfg     *config.Config
	handler *Handler
	events  *events.Registry
	hub     *ws.Hub
	media   *media.Local
	store   *store.Memory
	router  http.Handler
}

func testConfig(mediaDir string) *config.Config {
	return &config.Config{
		Media: config.MediaConfig{
			Backend:        "local",
			Dir:            mediaDir,
			MaxUploadBytes: 1 << 20,
		},
		Relay: config.RelayConfig{
			AllowedOrigins: []string{"*"},
		},
		Security: config.SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

func setupTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t.TempDir())
	if mutate != nil {
		mutate(cfg)
	}

	mem := store.NewMemory()
	reg := events.NewRegistry(mem)
	hub := ws.NewHub(presence.NewRegistry(), reg, ws.DefaultConfig())
	reg.SetNotifier(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()

	local, err := media.NewLocal(cfg.Media.Dir, "http://relay.test:3001")
	if err != nil {
		t.Fatal(err)
	}

	handler := NewHandler(cfg, hub, reg, mem, local)
	env := &testEnv{
		cfg:     cfg,
		handler: handler,
		events:  reg,
		hub:     hub,
		media:   local,
		store:   mem,
		router:  NewRouter(handler, cfg).SetupChi(),
	}

	t.Cleanup(func() {
		cancel()
		<-done
		reg.Close()
	})
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// uploadForm describes one multipart upload. A nil image omits the part.
type uploadForm struct {
	fields      map[string]string
	filename    string
	contentType string
	image       []byte
}

func validUpload() uploadForm {
	return uploadForm{
		fields: map[string]string{
			"eventId":          "e1",
			"latitude":         "52.52",
			"longitude":        "13.405",
			"eventname":        "Launch",
			"eventDescription": "rooftop",
			"duration":         "60000",
		},
		filename:    "photo.JPG",
		contentType: "image/jpeg",
		image:       []byte("\xff\xd8\xff\xe0fakejpeg"),
	}
}

func (f uploadForm) request(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if f.image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadFormField, f.filename))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(f.image); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// failingStore answers every ping with an error.
type failingStore struct{}

func (failingStore) Ping(context.Context) error { return errors.New("connection refused") }
func (failingStore) Backend() string            { return "redis" }

// failingMedia rejects every write.
type failingMedia struct{}

func (failingMedia) Save(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", errors.New("bucket unavailable")
}
func (failingMedia) Delete(context.Context, string) error { return nil }
func (failingMedia) Backend() string                      { return "s3" }
