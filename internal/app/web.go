package app

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

// newHeadingMux routes the heading producer's HTTP endpoints:
//
//	GET /api/heading  latest snapshot, 503 until the table has fields
//	/ws/heading       snapshot stream
//	/ws/control       status, reset and reconfigure commands
//	/                 static files from ./web
func newHeadingMux(ctl Controller, table *telemetry.Table, interval time.Duration, logger *zap.SugaredLogger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/heading", telemetry.SnapshotHandler(table, nil, logger))
	mux.HandleFunc("/ws/heading", telemetry.StreamHandler(table, interval, nil, logger))
	mux.HandleFunc("/ws/control", ControlHandler(ctl, logger))
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// newRegisterDebugMux routes the register debug tool.
func newRegisterDebugMux(dev RegisterAccess, logger *zap.SugaredLogger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", RegisterDebugHandler(dev, nil, logger))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})
	return mux
}
