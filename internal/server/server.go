package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sendlater/internal/biz/usecase"
	"sendlater/line"
)

// MessageHandler processes one inbound text message
type MessageHandler interface {
	HandleMessage(ctx context.Context, replyToken, userID, text string)
}

// Sweeper runs one delivery sweep
type Sweeper interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

// Server exposes the webhook, the sweep trigger, and health endpoints
type Server struct {
	bot           MessageHandler
	sweeper       Sweeper
	channelSecret string
	cronSecret    string // empty leaves the trigger endpoint open
	port          int

	server *http.Server
}

// New creates a new HTTP server
func New(bot MessageHandler, sweeper Sweeper, channelSecret, cronSecret string, port int) *Server {
	return &Server{
		bot:           bot,
		sweeper:       sweeper,
		channelSecret: channelSecret,
		cronSecret:    cronSecret,
		port:          port,
	}
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/api/cron/send", s.handleCronSend)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("[Server] Listening on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop shuts the server down
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "SendLater 📨")
}

// handleWebhook verifies the channel signature over the raw body before
// any processing, then routes each text event to the bot
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Line-Signature")
	if !line.ValidateSignature(s.channelSecret, body, signature) {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	req, err := line.ParseWebhook(body)
	if err != nil {
		fmt.Printf("[Server] Webhook parse error: %v\n", err)
		// already authenticated, ack anyway so the channel stops retrying
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
		return
	}

	for _, event := range req.Events {
		if !event.IsTextMessage() {
			continue
		}
		s.bot.HandleMessage(r.Context(), event.ReplyToken, event.Source.UserID, event.Message.Text)
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleCronSend is the external sweep trigger. The shared secret is
// accepted as a bearer token or a query parameter.
func (s *Server) handleCronSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.cronAuthorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sent, err := s.sweeper.Run(r.Context(), time.Now().UTC())
	if err != nil {
		fmt.Printf("[Server] Sweep error: %v\n", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"sent":   sent,
		"time":   time.Now().In(usecase.TaipeiZone).Format(time.RFC3339),
	})
}

func (s *Server) cronAuthorized(r *http.Request) bool {
	if s.cronSecret == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) == 1 {
			return true
		}
	}
	secret := r.URL.Query().Get("secret")
	return secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(s.cronSecret)) == 1
}
