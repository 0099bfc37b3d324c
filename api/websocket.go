package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"scanner-server/command"
	"scanner-server/discovery"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebRequest struct {
	Command string `json:"command"` // "scan", "ports", "commands", "lookup"
	Name    string `json:"name,omitempty"`
}

type WebResponse struct {
	Status  string      `json:"status"` // "success", "error", "processing"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CommandInfo is the registry metadata exposed to UI clients
type CommandInfo struct {
	Name    string   `json:"name"`
	SubArgs []string `json:"sub_args,omitempty"`
}

type Handler struct {
	Prober   *discovery.Prober
	Registry *command.Registry
	mu       sync.Mutex // one scan at a time per server instance
}

func NewHandler(prober *discovery.Prober, registry *command.Registry) *Handler {
	return &Handler{Prober: prober, Registry: registry}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	for {
		var req WebRequest
		if err := conn.ReadJSON(&req); err != nil {
			break
		}

		switch req.Command {
		case "scan":
			go h.handleScan(conn)
		case "ports":
			h.handlePorts(conn)
		case "commands":
			h.handleCommands(conn)
		case "lookup":
			h.handleLookup(conn, req.Name)
		default:
			h.sendJSON(conn, "error", "Unknown command", nil)
		}
	}
}

func (h *Handler) sendJSON(conn *websocket.Conn, status, message string, data interface{}) {
	resp := WebResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}
	conn.WriteJSON(resp)
}

// handleScan runs a discovery cycle, streaming state transitions to the
// client as processing frames
func (h *Handler) handleScan(conn *websocket.Conn) {
	if !h.mu.TryLock() {
		h.sendJSON(conn, "error", "Scan already in progress", nil)
		return
	}
	defer h.mu.Unlock()

	h.Prober.SetStatusCallback(func(info discovery.StatusInfo) {
		h.sendJSON(conn, "processing", info.Message, info)
	})
	defer h.Prober.SetStatusCallback(nil)

	results := h.Prober.FindScanners()
	if len(results) == 0 {
		h.sendJSON(conn, "success", "No scanners detected", results)
		return
	}
	h.sendJSON(conn, "success", fmt.Sprintf("Detected %d scanner(s)", len(results)), results)
}

func (h *Handler) handlePorts(conn *websocket.Conn) {
	endpoints, err := discovery.ListEndpoints()
	if err != nil {
		h.sendJSON(conn, "error", err.Error(), nil)
		return
	}
	h.sendJSON(conn, "success", fmt.Sprintf("%d serial ports", len(endpoints)), endpoints)
}

func (h *Handler) handleCommands(conn *websocket.Conn) {
	entries := h.Registry.Entries()
	infos := make([]CommandInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, CommandInfo{Name: e.Name, SubArgs: e.SubArgs})
	}
	h.sendJSON(conn, "success", "Command table", infos)
}

func (h *Handler) handleLookup(conn *websocket.Conn, name string) {
	if entry, ok := h.Registry.Lookup(name); ok {
		h.sendJSON(conn, "success", "Command found",
			CommandInfo{Name: entry.Name, SubArgs: entry.SubArgs})
		return
	}

	msg := fmt.Sprintf("Unknown command %q", name)
	if suggestion := h.Registry.Suggest(name); suggestion != "" {
		msg = fmt.Sprintf("Unknown command %q, did you mean %q?", name, suggestion)
	}
	h.sendJSON(conn, "error", msg, nil)
}
