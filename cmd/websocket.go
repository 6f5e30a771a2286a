package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bilimBack/internal/models"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
	readDeadline  = 60 * time.Second
)

// StatsFeed pushes dashboard counter updates to connected admin consoles.
// All access to the clients map happens inside Run.
type StatsFeed struct {
	infoLog *log.Logger

	clients    map[*websocket.Conn]struct{}
	broadcast  chan models.DashboardStats
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

func NewStatsFeed(infoLog *log.Logger) *StatsFeed {
	return &StatsFeed{
		infoLog:    infoLog,
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan models.DashboardStats, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (f *StatsFeed) Run() {
	for {
		select {
		case conn := <-f.register:
			f.clients[conn] = struct{}{}
			f.infoLog.Printf("stats feed: client connected, total=%d", len(f.clients))

		case conn := <-f.unregister:
			if _, ok := f.clients[conn]; ok {
				_ = conn.Close()
				delete(f.clients, conn)
				f.infoLog.Printf("stats feed: client disconnected, total=%d", len(f.clients))
			}

		case stats := <-f.broadcast:
			for conn := range f.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(stats); err != nil {
					_ = conn.Close()
					delete(f.clients, conn)
				}
			}
		}
	}
}

// Broadcast queues an update for every connected console. Drops the update
// when the feed loop is saturated rather than blocking the aggregator.
func (f *StatsFeed) Broadcast(stats models.DashboardStats) {
	select {
	case f.broadcast <- stats:
	default:
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StatsFeedHandler upgrades an admin connection and keeps it alive with
// pings until the client goes away.
func (app *application) StatsFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("stats feed upgrade: %v", err)
		return
	}
	app.statsFeed.register <- conn

	// Send the current snapshot immediately so the console is not empty
	// until the next recompute.
	if stats, err := app.statsService.Snapshot(r.Context()); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		_ = conn.WriteJSON(stats)
	}

	go app.statsFeedReader(conn)
	go app.statsFeedPinger(conn)
}

func (app *application) statsFeedReader(conn *websocket.Conn) {
	defer func() { app.statsFeed.unregister <- conn }()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (app *application) statsFeedPinger(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
