package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingDeliverer struct {
	events []model.Event
}

func (r *recordingDeliverer) Deliver(e model.Event) { r.events = append(r.events, e) }

type stubJournal struct {
	delivery *model.Delivery
	err      error
}

func (s *stubJournal) Save(context.Context, *model.Delivery) (*model.Delivery, error) {
	return nil, errors.New("not used")
}

func (s *stubJournal) GetByEventID(context.Context, string) (*model.Delivery, error) {
	return s.delivery, s.err
}

func (s *stubJournal) UpdateOutcome(context.Context, *model.Delivery) error { return nil }

func newTestRouter(d EventDeliverer, journal repo.DeliveryRepository) *gin.Engine {
	logger := zerolog.Nop()
	return newRouter(newHandlers(d, journal, &logger))
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIngestEvent_Accepted(t *testing.T) {
	d := &recordingDeliverer{}
	router := newTestRouter(d, nil)

	w := do(router, http.MethodPost, "/api/v1/events",
		`{"id":"abc123","level":"Warning","renderedMessage":"disk low","properties":{"Host":"db1"}}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AcceptedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "abc123" || resp.Status != "accepted" {
		t.Errorf("response = %+v", resp)
	}
	if len(d.events) != 1 || d.events[0].RenderedMessage != "disk low" || d.events[0].Properties["Host"] != "db1" {
		t.Fatalf("events = %+v", d.events)
	}
}

func TestIngestEvent_NumericID(t *testing.T) {
	d := &recordingDeliverer{}
	w := do(newTestRouter(d, nil), http.MethodPost, "/api/v1/events",
		`{"id":12345,"level":"Warning","renderedMessage":"disk low"}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AcceptedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "12345" {
		t.Errorf("response id = %q, want 12345", resp.ID)
	}
	if len(d.events) != 1 || d.events[0].ID != "12345" {
		t.Fatalf("events = %+v", d.events)
	}
}

func TestIngestEvent_AssignsID(t *testing.T) {
	d := &recordingDeliverer{}
	w := do(newTestRouter(d, nil), http.MethodPost, "/api/v1/events", `{"level":"Information","renderedMessage":"hi"}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if len(d.events) != 1 || d.events[0].ID == "" {
		t.Fatalf("expected an assigned id, got %+v", d.events)
	}
}

func TestIngestEvent_BadRequest(t *testing.T) {
	d := &recordingDeliverer{}
	router := newTestRouter(d, nil)

	for _, body := range []string{`{`, `{"level":"loud"}`, `[]`} {
		if w := do(router, http.MethodPost, "/api/v1/events", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
	if len(d.events) != 0 {
		t.Fatal("invalid events must not be delivered")
	}
}

func TestGetDelivery(t *testing.T) {
	d := model.NewDelivery(&model.Event{ID: "abc123", Level: model.LevelError}, "hipchat")
	d.Complete(401, errors.New("unauthorized"))

	w := do(newTestRouter(&recordingDeliverer{}, &stubJournal{delivery: d}), http.MethodGet, "/api/v1/deliveries/abc123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp DeliveryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.EventID != "abc123" || resp.Status != "failed" || resp.StatusCode != 401 || resp.Level != "Error" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetDelivery_Errors(t *testing.T) {
	cases := []struct {
		journal repo.DeliveryRepository
		want    int
	}{
		{nil, http.StatusServiceUnavailable},
		{&stubJournal{err: repo.ErrNotFound}, http.StatusNotFound},
		{&stubJournal{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		w := do(newTestRouter(&recordingDeliverer{}, c.journal), http.MethodGet, "/api/v1/deliveries/x", "")
		if w.Code != c.want {
			t.Errorf("status = %d, want %d", w.Code, c.want)
		}
	}
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(&recordingDeliverer{}, nil), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}
