package config

const (
	EnvPrefix = "PARKING"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:parking.db?_foreign_keys=on"
)

const (
	EnvAppEnv                  = "PARKING_APP_ENV"
	EnvPort                    = "PARKING_APP_PORT"
	EnvDBDSN                   = "PARKING_DB_DSN"
	EnvDBDriver                = "PARKING_DB_DRIVER"
	EnvDBHost                  = "PARKING_DB_HOST"
	EnvDBUser                  = "PARKING_DB_USER"
	EnvDBName                  = "PARKING_DB_NAME"
	EnvRedisURL                = "PARKING_REDIS_URL"
	EnvJWTSecret               = "PARKING_JWT_SECRET"
	EnvJWTIssuer               = "PARKING_JWT_ISSUER"
	EnvJWTExpMins              = "PARKING_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "PARKING_REFRESH_TOKEN_TTL_MINUTES"
	EnvAdminEmail              = "PARKING_ADMIN_EMAIL"
	EnvAdminPasswordHash       = "PARKING_ADMIN_PASSWORD_HASH"
	EnvCORSAllowedOrigins      = "PARKING_CORS_ALLOWED_ORIGINS"
	EnvGCPProjectID            = "PARKING_GCP_PROJECT_ID"
	EnvPubSubParkingTopic      = "PARKING_PUBSUB_PARKING_TOPIC"
	EnvPubSubAnalyticsSub      = "PARKING_PUBSUB_ANALYTICS_SUBSCRIPTION"
	EnvBigQueryDataset         = "PARKING_BIGQUERY_DATASET"
	EnvBigQueryReservationTbl  = "PARKING_BIGQUERY_RESERVATION_TABLE"
	EnvOutboxPublishBatchSize  = "PARKING_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPublishPollMillis = "PARKING_OUTBOX_PUBLISH_POLL_MS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
