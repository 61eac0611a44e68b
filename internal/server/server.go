// Package server wires the stores, the transaction pipeline, and the HTTP
// surface together.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"shadowcal/internal/backup"
	"shadowcal/internal/handler"
	"shadowcal/internal/middleware"
	"shadowcal/internal/model"
	"shadowcal/internal/notify"
	"shadowcal/internal/pipeline"
	"shadowcal/internal/presenter"
	"shadowcal/internal/store"
	ws "shadowcal/internal/websocket"
)

// Config holds the server-level knobs not derived from the database.
type Config struct {
	APITokenHash string   // bcrypt hash guarding the ingest API; empty disables auth
	WSOrigins    []string // allowed websocket origin patterns
	VAPIDPublic  string
	VAPIDPrivate string
	PushContact  string // subscriber address reported to push services
	Backup       backup.Config
}

type Server struct {
	db     *sql.DB
	cfg    Config
	hub    *ws.Hub
	pipe   *pipeline.Pipeline
	reader *pipeline.Reader

	transactionH *handler.TransactionHandler
	eventH       *handler.EventHandler
	backupH      *handler.BackupHandler
	pushH        *handler.PushHandler

	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	notifier      *notify.Notifier
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	reader := &pipeline.Reader{
		Events:    store.NewEventStore(db),
		Calendars: store.NewCalendarStore(db),
		Accounts:  store.NewAccountStore(db),
		Cards:     store.NewCardStore(db),
	}
	txlog := store.NewTxStore(db)
	presenters := presenter.Default()
	pushStore := store.NewPushStore(db)

	var pushSvc *notify.Service
	var notifier *notify.Notifier
	var pushH *handler.PushHandler
	if cfg.VAPIDPublic != "" && cfg.VAPIDPrivate != "" {
		pushSvc = notify.NewService(cfg.VAPIDPublic, cfg.VAPIDPrivate, cfg.PushContact)
		notifier = notify.NewNotifier(pushSvc, pushStore, logger.With("component", "notify"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push"))
	}

	// Every applied transaction feeds the websocket; derived ones also reach
	// the push notifier.
	hook := func(tx model.Transaction, derived bool) {
		hub.Broadcast(ws.FromTransaction(tx, derived))
		if notifier != nil {
			notifier.TransactionApplied(tx, derived)
		}
	}

	pipe := pipeline.New(reader, txlog, presenters, hook, logger.With("component", "pipeline"))

	backupMgr := backup.NewManager(cfg.Backup, db, logger.With("component", "backup"), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:  "backup_status",
			Kind:  string(s.State),
			Class: "backup",
		})
	})

	return &Server{
		db:            db,
		cfg:           cfg,
		hub:           hub,
		pipe:          pipe,
		reader:        reader,
		transactionH:  handler.NewTransactionHandler(pipe, logger.With("component", "transactions")),
		eventH:        handler.NewEventHandler(reader, presenters, logger.With("component", "events")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		pushH:         pushH,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		notifier:      notifier,
		logger:        logger,
	}
}

// Pipeline exposes the transaction pipeline for embedding callers.
func (s *Server) Pipeline() *pipeline.Pipeline {
	return s.pipe
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Ingest: rate-limited per client IP, token-guarded.
	requireToken := middleware.RequireToken(s.cfg.APITokenHash)
	rateLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 120, time.Minute)
	mux.Handle("POST /api/transactions",
		rateLimit(requireToken(http.HandlerFunc(s.transactionH.Ingest))))

	// Read side.
	mux.HandleFunc("GET /api/events/{id}/html", s.eventH.HTML)
	mux.HandleFunc("GET /api/events/{id}/text", s.eventH.Text)
	mux.HandleFunc("GET /api/documents/{id}/reminders", s.eventH.Reminders)

	// Backup control, behind the same token as ingest.
	mux.Handle("GET /api/backup/status", requireToken(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backup/run", requireToken(http.HandlerFunc(s.backupH.RunNow)))

	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"), s.cfg.WSOrigins))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
