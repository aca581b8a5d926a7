package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/metrics"
	"go.uber.org/zap"
)

const SOURCE_WEBSOCKET = "ws"

// User. one websocket connection. every text frame is a stationsAlongPolylineRequest,
// every reply is one text frame with either {"data": ...} or {"error": ...}.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

// readRequest. nil request with nil error means a control frame was handled
func (u *User) readRequest() (*stationsAlongPolylineRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	limit := u.hub.maxFrameBytes
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > limit {
		// drop the rest of the frame so the next read starts at a frame header
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, err
		}
		return nil, &badFrameError{msg: fmt.Sprintf("frame must not be larger than %d bytes", limit)}
	}

	req := &stationsAlongPolylineRequest{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(req); err != nil {
		return req, &badFrameError{msg: "frame contains badly-formed JSON: " + err.Error()}
	}
	return req, nil
}

type badFrameError struct {
	msg string
}

func (e *badFrameError) Error() string {
	return e.msg
}

// StationsAlongPolyline. serve one request frame
func (u *User) StationsAlongPolyline(ctx context.Context) error {
	req, err := u.readRequest()
	var badFrame *badFrameError
	if errors.As(err, &badFrame) {
		return u.write(NewErrorResponse(http.StatusBadRequest, badFrame.Error()))
	}
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := u.hub.validator.Struct(req); err != nil {
		return u.write(NewErrorResponse(http.StatusBadRequest, err.Error()))
	}

	maxDistance := u.hub.stationService.DefaultMaxDistance()
	if req.MaxDistance != nil {
		maxDistance = *req.MaxDistance
	}

	matched, err := u.hub.stationService.StationsAlongPolyline(ctx,
		geo.NewCoordinatesFromLonLat(req.Coordinates), maxDistance, SOURCE_WEBSOCKET)
	if err != nil {
		status, message := statusOf(err)
		if status == http.StatusInternalServerError {
			u.hub.log.Error("websocket station matching failed", zap.Error(err), zap.Uint("user", u.id))
		}
		return u.write(NewErrorResponse(status, message))
	}

	return u.write(envelope{"data": NewStationsAlongPolylineResponse(maxDistance, matched)})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

func (u *User) Close() error {
	return u.conn.Close()
}

// Hub. registry of open websocket connections
type Hub struct {
	mu             sync.RWMutex
	seq            uint
	ns             map[uint]*User
	stationService StationService
	validator      *requestValidator
	log            *zap.Logger
	maxFrameBytes  int64
}

func NewHub(stationService StationService, log *zap.Logger) *Hub {
	return &Hub{
		ns:             make(map[uint]*User),
		stationService: stationService,
		validator:      newRequestValidator(),
		log:            log,
		maxFrameBytes:  maxRequestBodyBytes,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.seq++
	h.mu.Unlock()

	metrics.ActiveWebSockets.Inc()
	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	if _, ok := h.ns[user.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.ns, user.id)
	h.mu.Unlock()

	metrics.ActiveWebSockets.Dec()
	user.Close()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ns)
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, 0, len(h.ns))
	for _, u := range h.ns {
		users = append(users, u)
	}
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

// Serve. read and answer frames until the peer goes away or ctx is done
func (h *Hub) Serve(ctx context.Context, user *User) {
	defer h.Remove(user)

	stop := context.AfterFunc(ctx, func() {
		user.Close()
	})
	defer stop()

	for {
		if err := user.StationsAlongPolyline(ctx); err != nil {
			var closed wsutil.ClosedError
			if errors.As(err, &closed) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				h.log.Debug("websocket connection closed", zap.Uint("user", user.id))
				return
			}
			h.log.Info("websocket connection error", zap.Uint("user", user.id), zap.Error(err))
			return
		}
	}
}
