package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kycgate/internal/anchor"
	"kycgate/internal/facematch"
	facehandler "kycgate/internal/facematch/handler"
	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/kyc"
	kychandler "kycgate/internal/kyc/handler"
	"kycgate/internal/otp"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/logger"
	"kycgate/internal/platform/metrics"
	"kycgate/internal/platform/postgres"
	platformredis "kycgate/internal/platform/redis"
	"kycgate/internal/scanlog"
	"kycgate/internal/sms"
	httptransport "kycgate/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	// Stores fall back to memory when Postgres is not configured so the
	// gateway runs standalone in development.
	var (
		caseStore kyc.Store
		scanStore scanlog.Store
	)
	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		caseStore = kyc.NewPostgresStore(db)
		scanStore = scanlog.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		caseStore = kyc.NewInMemoryStore()
		scanStore = scanlog.NewInMemoryStore()
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	// Scan events fan out to Kafka when brokers are configured. The durable
	// store is the source of truth; the channel is best-effort.
	var scanOpts []scanlog.Option
	publisher, err := scanlog.NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		sink := make(chan scanlog.Record, 256)
		scanOpts = append(scanOpts, scanlog.WithSink(sink))
		worker := scanlog.NewWorker(publisher, sink)
		group.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		log.Info("scan events publishing to kafka", "topic", cfg.Kafka.Topic)
	}
	scanService := scanlog.NewService(scanStore, scanOpts...)

	kycService := kyc.NewService(caseStore, scanService, cfg.KYC.ValidityPeriod)

	var otpService kychandler.OTPService
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var codeStore otp.Store
	if redisClient != nil {
		defer redisClient.Close()
		codeStore = otp.NewRedisStore(redisClient)
	} else {
		codeStore = otp.NewInMemoryStore()
	}
	var sender otp.Sender
	if cfg.SMS.ProviderURL != "" {
		sender = sms.New(cfg.SMS.ProviderURL, cfg.SMS.From)
	}
	otpService = otp.New(kycService, codeStore, sender, cfg.KYC.OTPTTL, log)

	var anchorer kychandler.Anchorer
	if cfg.AnchorURL != "" {
		anchorer = anchor.New(cfg.AnchorURL)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "kycgate", "kycgate-staff")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	var registrars []httptransport.Registrar
	registrars = append(registrars,
		kychandler.New(kycService, otpService, anchorer, log, m, validator))

	if cfg.Face.MatcherURL != "" {
		scorer := facematch.NewHTTPScorer(cfg.Face.MatcherURL)
		engine := facematch.NewEngine(scorer, cfg.Face.Threshold, log, m)
		registrars = append(registrars, facehandler.New(engine, log, validator))
	} else {
		log.Warn("FACE_MATCHER_URL not set, face verification endpoint disabled")
	}

	router := httptransport.NewRouter(registrars...)
	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting kycgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
