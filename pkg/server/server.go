// Package server exposes exports and summaries over HTTP.
//
// Endpoints:
//
//	POST /export      project JSON in, PDF download out
//	GET  /export/ws   websocket; the client sends a project, the server
//	                  streams progress events and the finished document
//	POST /summarize   source text in, lesson and sections out
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/export"
	"github.com/akeil/coursedoc/pkg/summary"
)

// DefaultMaxBody is the request size limit if none is configured.
const DefaultMaxBody = 32 << 20

const (
	contentTypePDF  = "application/pdf"
	contentTypeJSON = "application/json"
	shutdownTimeout = 5 * time.Second
	closeTimeout    = time.Second
)

// StageError is sent over the websocket when an export fails.
const StageError export.Stage = "error"

// Summarizer creates lessons. It is implemented by *summary.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, r summary.Request) (*summary.Lesson, error)
}

// Server handles the HTTP API.
type Server struct {
	exporter   *export.Exporter
	summarizer Summarizer
	maxBody    int64
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
}

// New creates a Server. The summarizer may be nil, in which case
// summary requests fail with 503.
func New(e *export.Exporter, s Summarizer, maxBody int64) *Server {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	srv := &Server{
		exporter:   e,
		summarizer: s,
		maxBody:    maxBody,
		mux:        http.NewServeMux(),
	}
	srv.mux.HandleFunc("/export", srv.handleExport)
	srv.mux.HandleFunc("/export/ws", srv.handleExportWS)
	srv.mux.HandleFunc("/summarize", srv.handleSummarize)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	logging.Info("%s %s %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("Listening on %v", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logging.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var p coursedoc.Project
	err := s.decode(w, r, &p)
	if err != nil {
		writeError(w, err)
		return
	}

	a, err := s.exporter.ExportProject(r.Context(), &p)
	if err != nil {
		writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypePDF)
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(a.Data)
	if err != nil {
		logging.Warning("Failed to send %q: %v", a.Name, err)
	}
}

// Message is sent from the server to a websocket client.
// Progress messages carry the stage only; the final "done" message has
// the file name and the PDF.
type Message struct {
	export.Event
	Name    string   `json:"name,omitempty"`
	Data    []byte   `json:"data,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (s *Server) handleExportWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		logging.Warning("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxBody)

	var p coursedoc.Project
	err = conn.ReadJSON(&p)
	if err != nil {
		send(conn, Message{Event: export.Event{Stage: StageError}, Error: "invalid request: " + err.Error()})
		closeNormal(conn)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// the client has nothing more to say; a read error means it went away
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
		}
	}()

	a, err := s.exporter.ExportProgress(ctx, p.Sections, p.Title, func(ev export.Event) {
		if ev.Stage == export.StageDone {
			return
		}
		send(conn, Message{Event: ev})
	})
	if err != nil {
		_, msg := errorStatus(err)
		send(conn, Message{Event: export.Event{Stage: StageError}, Error: msg})
		closeNormal(conn)
		return
	}

	done := Message{
		Event: export.Event{Stage: export.StageDone, Pages: a.Pages, Message: a.Name},
		Name:  a.Name,
		Data:  a.Data,
	}
	for _, sk := range a.Skipped {
		done.Skipped = append(done.Skipped, sk.SectionID)
	}
	send(conn, done)
	closeNormal(conn)
}

func send(conn *websocket.Conn, m Message) {
	err := conn.WriteJSON(m)
	if err != nil {
		logging.Debug("Websocket write failed: %v", err)
	}
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
	if err != nil {
		logging.Debug("Websocket close failed: %v", err)
	}
}

// SummaryRequest is the JSON body for /summarize.
// Images are base64 encoded.
type SummaryRequest struct {
	Text   string   `json:"text"`
	Images [][]byte `json:"images,omitempty"`
}

// SummaryResponse holds the lesson and the sections made from it.
type SummaryResponse struct {
	Lesson   *summary.Lesson     `json:"lesson"`
	Sections []coursedoc.Section `json:"sections"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.summarizer == nil {
		writeError(w, coursedoc.NewConfigurationError("no summary provider configured"))
		return
	}

	var req SummaryRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == contentTypeJSON {
		err := s.decode(w, r, &req)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		// plain text or HTML documents
		text, err := summary.ExtractText(http.MaxBytesReader(w, r.Body, s.maxBody), ct, "")
		if err != nil {
			writeError(w, err)
			return
		}
		req.Text = text
	}

	l, err := s.summarizer.Summarize(r.Context(), summary.Request{Text: req.Text, Images: req.Images})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{Lesson: l, Sections: l.Sections()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	err := dec.Decode(dst)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return coursedoc.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

// errorStatus maps an error to the HTTP status and the message shown
// to the client.
func errorStatus(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case coursedoc.IsExportError(err):
		return http.StatusInternalServerError, coursedoc.ExportFailedMessage
	case coursedoc.IsEmptyInput(err), coursedoc.IsValidationError(err):
		return http.StatusBadRequest, err.Error()
	case coursedoc.IsConfigurationError(err):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	}

	if kind, ok := coursedoc.UpstreamKindOf(err); ok {
		if kind == coursedoc.UpstreamRateLimit {
			return http.StatusTooManyRequests, kind.String()
		}
		return http.StatusBadGateway, kind.String()
	}

	return http.StatusInternalServerError, "internal error"
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Error("Request failed: %v", err)
	} else {
		logging.Debug("Request rejected: %v", err)
	}
	writeJSON(w, status, errorBody{msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logging.Warning("Failed to write response: %v", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{"method not allowed"})
}

// statusRecorder remembers the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the websocket upgrader.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
