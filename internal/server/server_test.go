package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"foxie/internal/report"
	"foxie/internal/skills"
	"foxie/internal/viewer"
)

const sampleEI = `{
  "fightName": "Cairn",
  "phases": [{"start": 0, "end": 60000}],
  "skillMap": {"s1": {"name": "Fireball"}},
  "players": [
    {"name": "Alpha", "account": "alpha.1", "group": 1, "profession": "Weaver",
     "damage1S": [[0, 100, 200]],
     "rotation": [{"id": 1, "skills": [{"castTime": 1000, "duration": 400}]}]}
  ]
}`

type fakeFetcher struct {
	slug string
	err  error
}

func (f *fakeFetcher) FetchBySlug(ctx context.Context, slug string) (*report.Log, error) {
	f.slug = slug
	if f.err != nil {
		return nil, f.err
	}
	return report.ParseJSON(strings.NewReader(sampleEI))
}

type fakeLoader struct {
	err error
}

func (f *fakeLoader) Load(ctx context.Context, ids []int64) (map[int64]skills.Skill, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[int64]skills.Skill{}, nil
}

func newTestServer(fetcher ReportFetcher, loader skills.Loader) (*Server, *viewer.Registry) {
	reg := viewer.NewRegistry(2)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(viewer.DefaultConfig(), fetcher, loader, reg, logger), reg
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sessionFromRedirect(t *testing.T, w *httptest.ResponseRecorder, reg *viewer.Registry) *viewer.Session {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	id := strings.TrimPrefix(loc, "/sessions/")
	sess, ok := reg.Get(id)
	if !ok {
		t.Fatalf("session %q not registered", id)
	}
	return sess
}

func TestSetupPage(t *testing.T) {
	s, _ := newTestServer(&fakeFetcher{}, &fakeLoader{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"setup-container", "dpsreport-text", "dpsreport-submit", `id="log-input"`, `id="video-input"`, `id="show-dps"`, `id="sort-by-profession"`, `id="show-icons"`} {
		if !strings.Contains(body, want) {
			t.Errorf("setup page missing %s", want)
		}
	}
}

func TestFetchRejectsBadURL(t *testing.T) {
	fetcher := &fakeFetcher{}
	s, reg := newTestServer(fetcher, &fakeLoader{})
	w := postForm(s.Handler(), "/reports/fetch", url.Values{"url": {"https://example.com/abc"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "https://dps.report/Sosx-20180802-193036_cairn") {
		t.Errorf("message should show an example link")
	}
	if strings.Contains(w.Body.String(), "disabled") {
		t.Errorf("form should stay enabled")
	}
	if fetcher.slug != "" || reg.Len() != 0 {
		t.Errorf("nothing should be fetched or committed")
	}
}

func TestFetchCreatesSession(t *testing.T) {
	fetcher := &fakeFetcher{}
	s, reg := newTestServer(fetcher, &fakeLoader{})
	h := s.Handler()
	w := postForm(h, "/reports/fetch", url.Values{"url": {" https://wvw.report/abc-123 "}})
	sess := sessionFromRedirect(t, w, reg)
	if fetcher.slug != "abc-123" {
		t.Errorf("slug = %q", fetcher.slug)
	}
	if !sess.Options().ShowIcons {
		t.Errorf("configured options should apply when the form sends none")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+sess.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("board page status %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`class="board"`, `class="legend"`, `class="needle"`, `class="time-link"`, `data-start="30000"`, "Cairn"} {
		if !strings.Contains(body, want) {
			t.Errorf("board page missing %s", want)
		}
	}
}

func TestFetchFailureKeepsSetup(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{err: fmt.Errorf("%w: status 500", report.ErrFetch)}, &fakeLoader{})
	w := postForm(s.Handler(), "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "setup-container") || reg.Len() != 0 {
		t.Errorf("setup page should be shown again without a session")
	}
	if !strings.Contains(w.Body.String(), `value="https://dps.report/abc"`) {
		t.Errorf("pasted link should be kept")
	}
}

func TestSkillFailureAbortsSession(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("%w: status 503", skills.ErrLoad)}
	s, reg := newTestServer(&fakeFetcher{}, loader)
	w := postForm(s.Handler(), "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}})
	if w.Code != http.StatusBadGateway || reg.Len() != 0 {
		t.Fatalf("expected 502 without session, got %d (%d sessions)", w.Code, reg.Len())
	}
}

func TestUploadInvalidJSON(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	req := multipartRequest(t, "/reports/upload", nil, "log", "log.json", []byte("{not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || reg.Len() != 0 {
		t.Fatalf("expected 400 without session, got %d", w.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	s, _ := newTestServer(&fakeFetcher{}, &fakeLoader{})
	req := multipartRequest(t, "/reports/upload", map[string]string{"options": "1"}, "", "", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUploadAppliesOptions(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	fields := map[string]string{"options": "1", "show-dps": "on"}
	req := multipartRequest(t, "/reports/upload", fields, "log", "log.json", []byte(sampleEI))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	sess := sessionFromRedirect(t, w, reg)
	opts := sess.Options()
	if !opts.ShowDps || opts.ShowIcons || opts.SortByProfession {
		t.Fatalf("unexpected options %+v", opts)
	}
	// graph rows plus one player
	if sess.Rows() != 4 {
		t.Errorf("rows = %d, want 4", sess.Rows())
	}
}

func TestRegistryEvictsOldSessions(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	var first *viewer.Session
	for i := 0; i < 3; i++ {
		sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)
		if first == nil {
			first = sess
		}
	}
	if reg.Len() != 2 || !first.Closed() {
		t.Fatalf("oldest session should be closed, %d live", reg.Len())
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+first.ID+"/board.svg", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("evicted session should be gone, got %d", w.Code)
	}
}

func TestSVGEndpoints(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)
	for _, p := range []string{"board.svg", "legend.svg"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+sess.ID+"/"+p, nil))
		if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
			t.Fatalf("%s: status %d type %q", p, w.Code, w.Header().Get("Content-Type"))
		}
		if !strings.HasPrefix(w.Body.String(), "<svg") {
			t.Errorf("%s: not an svg document", p)
		}
	}
}

func TestVideoUpload(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)
	req := multipartRequest(t, "/sessions/"+sess.ID+"/video", nil, "video", "fight.mp4", []byte("not really a video"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	v := sess.Video()
	if v == nil || v.Name != "fight.mp4" || !strings.HasPrefix(v.DataURL, "data:") {
		t.Fatalf("video not attached: %+v", v)
	}
	if u := sess.ScrollToLogTime(5000, true); u.VideoTime == nil || *u.VideoTime != 5 {
		t.Errorf("attached video should be seeked")
	}
}

func TestVideoUploadReportsProgress(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, sess.ID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	if msg := readMessage(t, conn); msg["type"] != "board" {
		t.Fatalf("expected initial board, got %v", msg)
	}

	req := multipartRequest(t, "/sessions/"+sess.ID+"/video", nil, "video", "fight.mp4", bytes.Repeat([]byte{0x42}, 100000))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var seen []float64
	for len(seen) == 0 || seen[len(seen)-1] < 100 {
		msg := readMessage(t, conn)
		if msg["type"] != "progress" {
			t.Fatalf("expected progress, got %v", msg)
		}
		pct := msg["percent"].(float64)
		if len(seen) > 0 && pct <= seen[len(seen)-1] {
			t.Fatalf("progress should increase, got %v after %v", pct, seen)
		}
		seen = append(seen, pct)
	}
	if len(seen) < 2 {
		t.Errorf("expected intermediate progress, got %v", seen)
	}

	page := httptest.NewRecorder()
	h.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/sessions/"+sess.ID, nil))
	for _, want := range []string{`class="container"`, `class="gameplay-video-container"`, `class="gameplay-video"`, `id="video-input"`} {
		if !strings.Contains(page.Body.String(), want) {
			t.Errorf("board page missing %s", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(&fakeFetcher{}, &fakeLoader{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("unexpected health %v", resp)
	}
}

func websocketURL(t *testing.T, serverURL, id string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/sessions/" + id + "/ws"
	return u.String()
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebsocketInteraction(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, sess.ID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})

	if msg := readMessage(t, conn); msg["type"] != "board" {
		t.Fatalf("expected initial board, got %v", msg)
	}

	send := func(v any) {
		t.Helper()
		if err := conn.WriteJSON(v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	send(map[string]any{"type": "viewport", "left": 100, "width": 1000})
	send(map[string]any{"type": "click", "clientX": 600})
	msg := readMessage(t, conn)
	if msg["type"] != "needle" || msg["x"] != 500.0 || msg["scrollLeft"] != 0.0 {
		t.Fatalf("unexpected needle %v", msg)
	}
	if _, ok := msg["videoTime"]; ok {
		t.Errorf("no video attached, no seek expected")
	}

	send(map[string]any{"type": "viewport", "left": 0, "width": 500, "scrollLeft": 2000})
	send(map[string]any{"type": "click", "clientX": 100})
	msg = readMessage(t, conn)
	if msg["x"] != 2100.0 || msg["scrollLeft"] != 2000.0 {
		t.Fatalf("click after scrolling should land under the pointer, got %v", msg)
	}
	send(map[string]any{"type": "viewport", "left": 100, "width": 1000, "scrollLeft": 0})

	// a time link without a start is ignored, so the next reply answers the timeupdate
	send(map[string]any{"type": "time-link", "start": nil})
	send(map[string]any{"type": "timeupdate", "currentTime": 40})
	msg = readMessage(t, conn)
	if msg["type"] != "needle" || msg["x"] != 2000.0 || msg["scrollLeft"] != 1500.0 {
		t.Fatalf("unexpected needle %v", msg)
	}

	send(map[string]any{"type": "option", "key": "show-dps", "checked": true})
	msg = readMessage(t, conn)
	if msg["type"] != "board" || !strings.Contains(msg["board"].(string), "dps-graph") {
		t.Fatalf("expected redrawn board, got %v", msg["type"])
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{bad")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg["type"] != "error" {
		t.Fatalf("malformed message should yield an error, got %v", msg)
	}

	send(map[string]any{"type": "zoom"})
	if msg := readMessage(t, conn); msg["type"] != "error" {
		t.Fatalf("unknown message should yield an error, got %v", msg)
	}

	send(map[string]any{"type": "option", "key": "nope", "checked": true})
	if msg := readMessage(t, conn); msg["type"] != "error" {
		t.Fatalf("unknown option should yield an error, got %v", msg)
	}
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	s, reg := newTestServer(&fakeFetcher{}, &fakeLoader{})
	h := s.Handler()
	sess := sessionFromRedirect(t, postForm(h, "/reports/fetch", url.Values{"url": {"https://dps.report/abc"}}), reg)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	header := http.Header{"Origin": {"http://elsewhere.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, sess.ID), header)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 response")
	}
	resp.Body.Close()

	header = http.Header{"Origin": {srv.URL}}
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, sess.ID), header)
	if err != nil {
		t.Fatalf("same-origin dial: %v", err)
	}
	conn.Close()
	resp.Body.Close()
}

func TestWebsocketUnknownSession(t *testing.T) {
	s, _ := newTestServer(&fakeFetcher{}, &fakeLoader{})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	_, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, "missing"), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response")
	}
	resp.Body.Close()
}
