package healthcheck

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"baitlab/internal/infrastructure/cache"
	"baitlab/internal/infrastructure/database"
)

const serviceName = "baitlab.v1.EngagementService"

// RegisterHealthServer registers the gRPC health check service and keeps
// its status in sync with the Redis and PostgreSQL connections.
func RegisterHealthServer(ctx context.Context, grpcServer *grpc.Server, db *database.PostgresDB, redisCache *cache.RedisCache) {
	healthServer := health.NewServer()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Background checker re-probes dependencies every 10 seconds.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			healthy := true
			if db != nil {
				if err := db.Ping(ctx); err != nil {
					healthy = false
				}
			}
			if redisCache != nil {
				if _, err := redisCache.Client().Ping(ctx).Result(); err != nil {
					healthy = false
				}
			}

			status := grpc_health_v1.HealthCheckResponse_SERVING
			if !healthy {
				status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
			healthServer.SetServingStatus("", status)
			healthServer.SetServingStatus(serviceName, status)
		}
	}()

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
}
