package instance

import "github.com/angelmondragon/parkinglot-backend/pkg/env"

// GetID returns the worker instance identifier used in logs and as the
// Pub/Sub consumer name suffix.
func GetID() string {
	return env.Get("PARKING_WORKER_ID", "worker-0")
}
