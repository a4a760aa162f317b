package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/autogarden/thermctl/internal/climate"
	"github.com/autogarden/thermctl/internal/log"
	"github.com/autogarden/thermctl/internal/storage"
)

// ServiceInterface defines what the web layer needs from the main service
type ServiceInterface interface {
	Controller() *climate.Controller
	DB() *storage.DB
}

// Server is the HTTP server
type Server struct {
	port    int
	service ServiceInterface
	router  *mux.Router
	hub     *Hub
}

// NewServer creates a new HTTP server
func NewServer(port int, service ServiceInterface) *Server {
	s := &Server{
		port:    port,
		service: service,
		router:  mux.NewRouter(),
		hub:     NewHub(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/targets", s.handleSetTargets).Methods("POST")
	api.HandleFunc("/hold", s.handleHold).Methods("POST")
	api.HandleFunc("/resume", s.handleResume).Methods("POST")
	api.HandleFunc("/schedule", s.handleUpdateSchedule).Methods("PUT")
	api.HandleFunc("/schedule/enabled", s.handleScheduleEnabled).Methods("POST")
	api.HandleFunc("/logs", s.handleGetLogs).Methods("GET")
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/ws", s.handleWebSocket)

	// Serve static files for frontend
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./web/dist")))
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("Web server listening on port %d", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// BroadcastSnapshot pushes the latest controller state to websocket clients.
// The control loop calls this once per tick.
func (s *Server) BroadcastSnapshot(snap climate.Snapshot) {
	s.hub.Broadcast(wsMessage{Type: "snapshot", Data: snap})
}

// EventSink returns a notification sink that forwards controller events to
// websocket clients.
func (s *Server) EventSink() *HubSink {
	return &HubSink{hub: s.hub}
}

// HubSink adapts the websocket hub to the notification sink interface.
type HubSink struct {
	hub *Hub
}

// Name identifies the sink in delivery warnings.
func (h *HubSink) Name() string { return "websocket" }

// Send broadcasts the event to all connected clients.
func (h *HubSink) Send(e climate.Event) error {
	h.hub.Broadcast(wsMessage{Type: "event", Data: e})
	return nil
}
