package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"vtnotif/internal/awsutil"
	"vtnotif/internal/config"
	"vtnotif/internal/httpapi"
	"vtnotif/internal/logging"
	"vtnotif/internal/observability"
	sqsqueue "vtnotif/internal/queue/sqs"
	"vtnotif/internal/store/pg"
	workerproc "vtnotif/internal/worker"
)

func main() {
	cfg := config.LoadWorker()
	logging.Init("prefworker", cfg.LogFormat)

	// Use a root ctx we can cancel
	ctx, cancel := context.WithCancel(context.Background())

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{})
	if err != nil {
		slog.Error("prefworker db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	store := pg.New(db)

	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("prefworker sqs client init failed", "err", err)
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, 3*time.Second)
	defer startupCancel()

	if err := db.Ping(startupCtx); err != nil {
		slog.Error("db not reachable", "err", err)
		os.Exit(1)
	}
	if _, err := sqsClient.GetQueueAttributes(startupCtx, &sqs.GetQueueAttributesInput{
		QueueUrl:       &cfg.SQSQueueURL,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	}); err != nil {
		slog.Error("sqs not reachable", "err", err)
		os.Exit(1)
	}

	observability.Register(prometheus.DefaultRegisterer)

	consumer := &sqsqueue.Consumer{
		SQS: sqsClient, QueueURL: cfg.SQSQueueURL,
		WaitTimeSeconds:   cfg.SQSWaitTime,
		MaxMessages:       cfg.SQSMaxMsgs,
		VisibilityTimeout: cfg.SQSVizTimeout,
	}

	// ops server (metrics + liveness + readiness)
	opsMux := httpapi.New().Mux
	opsMux.HandleFunc("/healthz", httpapi.Healthz())
	opsMux.HandleFunc("/readyz", httpapi.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
		func(c context.Context) error {
			_, err := sqsClient.GetQueueAttributes(c, &sqs.GetQueueAttributesInput{
				QueueUrl:       &cfg.SQSQueueURL,
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			return err
		},
	))

	opsSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.Logging(opsMux),
	}

	opsErrCh := make(chan error, 1)
	go func() {
		slog.Info("prefworker ops listening", "port", cfg.Port)
		opsErrCh <- opsSrv.ListenAndServe()
	}()

	limiter := rate.NewLimiter(rate.Limit(cfg.ProvisionRPSPerPod), cfg.ProvisionBurst)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "provisioner",
		MaxRequests: 3,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
	})
	processor := &workerproc.Processor{
		Store:       store,
		Provisioner: workerproc.LogProvisioner{},
		Limiter:     limiter,
		Breaker:     cb,
	}

	// start polling
	pollErrCh := make(chan error, 1)
	go func() {
		slog.Info("prefworker starting poll", "queue_url", cfg.SQSQueueURL)
		pollErrCh <- consumer.PollConcurrent(ctx, cfg.WorkerConcurrency, func(ctx context.Context, job sqsqueue.PreferenceJob) (err error) {
			start := time.Now()
			slog.Info("preference job start", "user_id", job.UserID, "request_id", job.RequestID)
			defer func() {
				status := "ok"
				if err != nil {
					status = "error"
				}
				slog.Info("preference job finish",
					"user_id", job.UserID,
					"request_id", job.RequestID,
					"status", status,
					"duration", time.Since(start),
					"err", err,
				)
			}()
			err = processor.Process(ctx, job)
			return err
		})
	}()

	// shutdown wiring
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("prefworker poll failed", "err", err)
			os.Exit(1)
		}
	case err := <-opsErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("prefworker ops server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("prefworker shutdown", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = opsSrv.Shutdown(shutdownCtx)

	select {
	case <-pollErrCh:
	case <-time.After(10 * time.Second):
		slog.Info("prefworker shutdown timeout waiting for poll loop")
	}
}
