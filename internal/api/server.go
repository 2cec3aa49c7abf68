// Package api provides the local HTTP/WebSocket status and control API.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"

	"gopkg.in/yaml.v3"

	"smbridge/internal/bridge"
	"smbridge/internal/config"
)

// Server provides the loopback API for status, config and control.
type Server struct {
	configMgr *config.Manager
	bridge    *bridge.Bridge
	wsMgr     *WSManager
}

// NewServer creates a new API server over the given bridge.
func NewServer(configMgr *config.Manager, br *bridge.Bridge) *Server {
	s := &Server{
		configMgr: configMgr,
		bridge:    br,
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Start starts the API server on the specified port. The listener binds
// loopback only; nothing here is meant to leave the machine.
func (s *Server) Start(port int) error {
	go s.wsMgr.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("API: Starting server on %s", addr)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("API: Failed to listen on %s: %v", addr, err)
		log.Printf("API: Bridge will continue running without the status API.")
		return err
	}

	server := &http.Server{
		Handler: s.recoverMiddleware(mux),
	}

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("API: Server stopped: %v", err)
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("API: Panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.bridge.Status())
}

// handleConfig handles GET (read) and POST (replace) of the YAML
// configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		data, err := yaml.Marshal(s.configMgr.Get())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)

	case "POST":
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}

		newCfg := config.DefaultConfig()
		if err := yaml.Unmarshal(body, newCfg); err != nil {
			http.Error(w, "Invalid configuration data", http.StatusBadRequest)
			return
		}

		log.Printf("API: Receiving configuration update from %s", r.RemoteAddr)

		s.configMgr.Set(newCfg)
		if err := s.configMgr.Save(); err != nil {
			log.Printf("API: Failed to save received config: %v", err)
			http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePause handles POST /api/pause?paused=<true|false>
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	paused := r.URL.Query().Get("paused") == "true"
	log.Printf("API: Pause request from %s: paused=%v", r.RemoteAddr, paused)
	s.bridge.SetPaused(paused)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"paused": paused})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// BroadcastMode pushes a movement-mode change to all subscribers.
func (s *Server) BroadcastMode(mode string) {
	if s.wsMgr != nil {
		s.wsMgr.BroadcastMode(mode)
	}
}
