// Live preview server: bakes run on the main (GL-owning) goroutine and
// results are pushed to every connected websocket client.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"

	"github.com/gorilla/websocket"

	"terrainbaker/bake"
	"terrainbaker/config"
	"terrainbaker/gpu"
)

type bakeFrame struct {
	Type    string    `json:"type"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Seed    int64     `json:"seed"`
	Heights []float32 `json:"heights,omitempty"`
	Biomes  []uint8   `json:"biomes,omitempty"`
	Zones   int       `json:"zones"`
}

type statusFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type server struct {
	cfg config.Settings

	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]*sync.Mutex

	// bakeRequests funnels client bake requests onto the GL goroutine.
	bakeRequests chan int64

	lastMutex sync.RWMutex
	lastFrame *bakeFrame
}

func newServer(cfg config.Settings) *server {
	return &server{
		cfg:          cfg,
		clients:      make(map[*websocket.Conn]*sync.Mutex),
		bakeRequests: make(chan int64, 4),
	}
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.clientsMutex.Lock()
	s.clients[conn] = connMutex
	s.clientsMutex.Unlock()
	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
	}()

	// Send the last finished bake so new clients see something.
	s.lastMutex.RLock()
	if s.lastFrame != nil {
		connMutex.Lock()
		conn.WriteJSON(s.lastFrame)
		connMutex.Unlock()
	}
	s.lastMutex.RUnlock()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			log.Println("WebSocket read error:", err)
			break
		}
		if action, ok := msg["action"].(string); ok && action == "bake" {
			seed := s.cfg.Terrain.Seed
			if v, ok := msg["seed"].(float64); ok {
				seed = int64(v)
			}
			select {
			case s.bakeRequests <- seed:
			default:
				s.send(conn, connMutex, statusFrame{Type: "status", Message: "bake queue full"})
			}
		}
	}
}

func (s *server) send(conn *websocket.Conn, mu *sync.Mutex, v interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		log.Println("WebSocket write error:", err)
	}
}

func (s *server) broadcast(v interface{}) {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	for conn, mu := range s.clients {
		s.send(conn, mu, v)
	}
}

// runBakes owns the GL context; one bake at a time, synchronously.
func (s *server) runBakes() {
	for seed := range s.bakeRequests {
		cfg := s.cfg
		cfg.Terrain.Seed = seed
		s.broadcast(statusFrame{Type: "status", Message: fmt.Sprintf("baking seed %d", seed)})

		result, err := bake.Run(cfg)
		if err != nil {
			log.Printf("Bake failed: %v", err)
			s.broadcast(statusFrame{Type: "status", Message: "bake failed: " + err.Error()})
			continue
		}

		frame := &bakeFrame{
			Type:    "bake",
			Width:   result.Elevation.W,
			Height:  result.Elevation.H,
			Seed:    seed,
			Heights: result.Elevation.Data,
			Biomes:  biomeIDs(result),
			Zones:   len(result.Zones),
		}
		s.lastMutex.Lock()
		s.lastFrame = frame
		s.lastMutex.Unlock()
		s.broadcast(frame)
	}
}

func biomeIDs(r *bake.Result) []uint8 {
	ids := make([]uint8, len(r.Biomes.IDs))
	for i, b := range r.Biomes.IDs {
		ids[i] = uint8(b)
	}
	return ids
}

func main() {
	runtime.LockOSThread()

	configPath := flag.String("config", "settings.json", "Settings file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	srv := newServer(cfg)

	if cfg.Erosion.Iterations > 0 {
		ctx, err := gpu.NewContext()
		if err != nil {
			log.Fatalf("Failed to create GL context: %v", err)
		}
		defer ctx.Terminate()
	}

	http.HandleFunc("/ws", srv.handleWebSocket)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("Bake server listening on http://localhost%s\n", addr)
	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()

	// Kick off an initial bake, then serve requests on this thread so
	// the solver always runs with the context current.
	srv.bakeRequests <- cfg.Terrain.Seed
	srv.runBakes()
}
