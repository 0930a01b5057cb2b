package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"meetsync/core/constants"
	"meetsync/core/logger"
)

// NotificationDeliverPayload is the task payload for notification fan-out.
// Request handlers enqueue these so invite/schedule/cancel responses never
// block on delivery.
type NotificationDeliverPayload struct {
	Email   string         `json:"email"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) opt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{client: asynq.NewClient(cfg.opt())}
}

func (c *Client) EnqueueNotificationDeliver(ctx context.Context, payload NotificationDeliverPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(constants.TaskNotificationDeliver, data)
	info, err := c.client.Enqueue(task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}
	logger.Debug("Jobs:Enqueue", "type", task.Type(), "id", info.ID, "queue", info.Queue)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Server runs the background worker. Modules register handlers through
// HandleFunc before Start.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(cfg RedisConfig) *Server {
	srv := asynq.NewServer(cfg.opt(), asynq.Config{
		Concurrency: 5,
	})
	return &Server{
		srv: srv,
		mux: asynq.NewServeMux(),
	}
}

func (s *Server) HandleFunc(pattern string, handler func(context.Context, *asynq.Task) error) {
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) Start() error {
	return s.srv.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.srv.Shutdown()
}
