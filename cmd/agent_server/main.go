package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/config"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/monitoring"
)

const shutdownGrace = 2 * time.Second

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	seed := flag.Uint64("seed", 0, "Seed of the served heuristic agent (0 to use the clock)")
	passOnly := flag.Bool("pass", false, "Serve an agent that passes on every decision")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.AgentServer.Port
	}
	if *host == "" {
		*host = cfg.AgentServer.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	// Log level follows the config file while the server runs
	if config.ConfigFilePath() != "" {
		config.WatchConfig(func(c *config.Config) {
			if level, err := zerolog.ParseLevel(c.Logging.Level); err == nil {
				zerolog.SetGlobalLevel(level)
				log.Info().Str("level", level.String()).Msg("Log level reloaded")
			}
		})
	}

	var served agent.Agent = agent.NewHeuristicAgent(*seed)
	if *passOnly {
		served = agent.PassAgent{}
	}

	address := (config.AgentServerConfig{Host: *host, Port: *port}).ListenAddress()
	lis, err := net.Listen("tcp", address)
	if err != nil {
		log.Fatal().Err(err).Str("address", address).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor,
		recoveryInterceptor,
	))
	agent.RegisterDecisionService(grpcServer, served, log.Logger)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(agent.DecisionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	monitor := monitoring.NewGoroutineMonitor(log.Logger, monitoring.Options{})
	monitor.Start()
	defer monitor.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(agent.DecisionServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give in-flight decisions time to complete
		time.Sleep(shutdownGrace)

		log.Info().Msg("Gracefully stopping agent server")
		grpcServer.GracefulStop()
		log.Info().Interface("goroutines", monitor.GetMetrics()).Msg("Goroutine metrics at shutdown")
		cancel()
	}()

	log.Info().
		Str("address", lis.Addr().String()).
		Bool("pass_only", *passOnly).
		Uint64("seed", *seed).
		Msg("Agent server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutdown complete")
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	log.Debug().
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}
