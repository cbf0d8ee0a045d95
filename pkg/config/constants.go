package config

// EnvPrefix is intentionally empty: every field names its env var in full.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FRITOS_DB_DSN"
	EnvDBHost = "FRITOS_DB_HOST"
	EnvDBUser = "FRITOS_DB_USER"
	EnvDBName = "FRITOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
