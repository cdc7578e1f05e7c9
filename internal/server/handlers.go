package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/protocol"
	"github.com/jeongseonghan/nr-downlink/internal/render"
)

// Handlers holds the HTTP API handlers.
type Handlers struct {
	wsHub     *WSHub
	metrics   *Metrics
	workers   int
	maxUpload int64

	active atomic.Int64
	total  atomic.Int64
}

// NewHandlers creates new API handlers. metrics may be nil.
func NewHandlers(workers, maxUploadMB int, metrics *Metrics) *Handlers {
	return &Handlers{
		wsHub:     NewWSHub(),
		metrics:   metrics,
		workers:   workers,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Hub returns the WebSocket hub.
func (h *Handlers) Hub() *WSHub {
	return h.wsHub
}

// HandleWebSocket handles WebSocket upgrade requests.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] WebSocket upgrade error: %v", err)
		return
	}

	h.wsHub.AddClient(conn)

	// Read until the client goes away
	go func() {
		defer h.wsHub.RemoveClient(conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, job string, err error) {
	writeJSON(w, status, map[string]string{
		"job":   job,
		"error": err.Error(),
	})
}

// HandleDecode decodes an uploaded matrix. The multipart field "matrix"
// holds the CSV (zstd when the file name ends in .zst); the optional form
// field "user" restricts decoding to one user identity.
func (h *Handlers) HandleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, fmt.Sprintf("Parse form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("matrix")
	if err != nil {
		http.Error(w, fmt.Sprintf("Get file: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ident := -1
	if v := r.FormValue("user"); v != "" {
		ident, err = strconv.Atoi(v)
		if err != nil || ident < 0 {
			http.Error(w, fmt.Sprintf("Invalid user %q", v), http.StatusBadRequest)
			return
		}
	}

	job := uuid.New().String()
	h.active.Add(1)
	defer h.active.Add(-1)
	h.total.Add(1)
	if h.metrics != nil {
		h.metrics.jobs.Inc()
	}

	g, err := grid.ReadNamed(file, header.Filename)
	if err != nil {
		h.wsHub.BroadcastStatus(job, "error", err.Error())
		writeError(w, http.StatusBadRequest, job, err)
		return
	}

	h.wsHub.BroadcastStatus(job, "decoding", header.Filename)
	start := time.Now()
	rep, err := h.decode(r.Context(), job, g, ident)
	if h.metrics != nil {
		h.metrics.duration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		h.wsHub.BroadcastStatus(job, "error", err.Error())
		status := http.StatusUnprocessableEntity
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, job, err)
		return
	}

	h.wsHub.BroadcastStatus(job, "completed", fmt.Sprintf("%d users", len(rep.Users)))
	log.Printf("[INFO] job %s: cell %d, %d users", job, rep.CellIdent, len(rep.Users))
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) decode(ctx context.Context, job string, g *grid.Grid, ident int) (render.FrameReport, error) {
	notify := func(res protocol.UserResult) {
		rep := render.NewUserReport(res)
		if h.metrics != nil {
			h.metrics.observeUser(rep.OK)
		}
		h.wsHub.BroadcastUser(job, rep)
	}

	s, err := protocol.NewSession(g, protocol.WithWorkers(h.workers), protocol.WithResultHandler(notify))
	if err != nil {
		return render.FrameReport{}, err
	}

	var results []protocol.UserResult
	if ident >= 0 {
		res, _ := s.DecodeUser(ident)
		notify(res)
		results = []protocol.UserResult{res}
	} else {
		results, err = s.DecodeAll(ctx)
		if err != nil {
			return render.FrameReport{}, err
		}
	}

	rep := render.NewFrameReport(s.Header(), results)
	rep.Job = job
	return rep, nil
}

// HandleStatus reports service activity.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := "idle"
	if h.active.Load() > 0 {
		status = "active"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"jobs":    h.total.Load(),
		"clients": h.wsHub.Clients(),
	})
}
