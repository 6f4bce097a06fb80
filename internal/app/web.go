package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/fused_localization/internal/config"
	"github.com/relabs-tech/fused_localization/internal/localization"
	"github.com/relabs-tech/fused_localization/internal/markers"
	"github.com/relabs-tech/fused_localization/internal/transport"
)

// wsPollInterval is how often a websocket session checks for a new pose.
const wsPollInterval = 50 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// markerView is the JSON form of the marker layout.
type markerView struct {
	MarkerSize float64          `json:"marker_size"`
	Markers    []markers.Marker `json:"markers"`
}

// newWebMux builds the viewer routes around the latest fused pose.
func newWebMux(latest *localization.Latest[localization.Pose], mc *markers.Config, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// JSON API endpoint: latest fused pose
	mux.HandleFunc("/api/pose", func(w http.ResponseWriter, r *http.Request) {
		p, ok := latest.Load()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		body, err := json.Marshal(transport.PoseToMsg(p))
		if err != nil {
			log.Printf("web: json encode error: %v", err)
			http.Error(w, "cannot encode pose", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})

	mux.HandleFunc("/api/markers", func(w http.ResponseWriter, r *http.Request) {
		if mc == nil {
			http.Error(w, "no marker layout configured", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		view := markerView{MarkerSize: mc.MarkerSize(), Markers: mc.Markers()}
		if err := json.NewEncoder(w).Encode(view); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		streamPoses(w, r, latest)
	})

	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// streamPoses pushes every new fused pose to a websocket client until it
// disconnects.
func streamPoses(w http.ResponseWriter, r *http.Request, latest *localization.Latest[localization.Pose]) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	var lastStamp time.Time
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			p, ok := latest.Load()
			if !ok || p.Stamp.Equal(lastStamp) {
				continue
			}
			lastStamp = p.Stamp

			if err := conn.WriteJSON(transport.PoseToMsg(p)); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// RunWeb subscribes to fused poses and serves them over HTTP and websocket.
func RunWeb() error {
	cfg := config.Get()

	mc, err := loadMarkers(cfg)
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}

	var latest localization.Latest[localization.Pose]

	bus, err := transport.Connect("web", cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.SubscribePose(cfg.TopicPoseFused, latest.Store); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(&latest, mc, "web"))
}
