package healthprobe

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"fraudguard-lab/internal/infrastructure/cache"
	"fraudguard-lab/internal/infrastructure/database"
)

// ServiceName is the name external probes query the health service with
const ServiceName = "fraudguard.v1.RiskScoringService"

const checkInterval = 10 * time.Second

// RegisterHealthServer registers the standard gRPC health service and keeps
// its serving status in sync with dependency health. Optional dependencies
// that are not configured are treated as healthy.
func RegisterHealthServer(ctx context.Context, grpcServer *grpc.Server, db *database.PostgresDB, redis *cache.RedisCache) {
	healthServer := health.NewServer()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Background dependency checker
	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				healthServer.Shutdown()
				return
			case <-ticker.C:
				status := grpc_health_v1.HealthCheckResponse_SERVING
				if !dependenciesHealthy(ctx, db, redis) {
					status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
				}
				healthServer.SetServingStatus("", status)
				healthServer.SetServingStatus(ServiceName, status)
			}
		}
	}()

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
}

func dependenciesHealthy(ctx context.Context, db *database.PostgresDB, redis *cache.RedisCache) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if db != nil {
		if err := db.Ping(checkCtx); err != nil {
			return false
		}
	}

	if redis != nil {
		if _, err := redis.Client().Ping(checkCtx).Result(); err != nil {
			return false
		}
	}

	return true
}
