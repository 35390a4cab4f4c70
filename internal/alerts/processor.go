package alerts

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/config"
	"github.com/agrimandi/agrimandi/internal/logger"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the asynq worker and initializes a shared client. The
// worker runs in-process; its only job is turning enqueued tasks into
// notifications rows.
func Init() {
	opts := asynq.RedisClientOpt{Addr: config.Get().Redis.Addr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskBidPlaced, handleNotification)
	mux.HandleFunc(TaskBidOutbid, handleNotification)
	mux.HandleFunc(TaskBidAccepted, handleNotification)
	mux.HandleFunc(TaskBiddingClosed, handleNotification)
	mux.HandleFunc(TaskOrderCreated, handleNotification)
	mux.HandleFunc(TaskOrderStatusChanged, handleNotification)
	mux.HandleFunc(TaskPaymentReceived, handleNotification)
	mux.HandleFunc(TaskInvoiceReady, handleNotification)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"notify": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			logger.L().Error("asynq server stopped", zap.Error(err))
		}
	}()

	logger.L().Info("asynq initialized", zap.String("addr", config.Get().Redis.Addr))
}

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}
