package router

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

/*
handleWebsocket. upgrade GET /ws and serve corridor queries on it.

each connection gets its own goroutine; a text frame carries {"coordinates": [[lon, lat], ...], "max_distance": 5}
and is answered with one frame holding the matched stations.
*/
func (api *API) handleWebsocket(ctx context.Context) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		conn, _, hs, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			api.log.Info("upgrade error", zap.Error(err), zap.String("remote_addr", r.RemoteAddr))
			return
		}

		// the http server read/write deadlines stay on a hijacked connection
		_ = conn.SetDeadline(time.Time{})

		api.log.Info("established websocket connection", zap.String("connection name", nameConn(conn)),
			zap.String("protocol", hs.Protocol))

		user := api.hub.Register(conn)
		go api.hub.Serve(ctx, user)
	}
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
