package config

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL           string
	RunMigrations bool
	MaxOpenConns  int
	MaxIdleConns  int
}

// GetConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return c.URL
}

// DynamoConfig holds DynamoDB configuration. Endpoint is only set for
// DynamoDB Local.
type DynamoConfig struct {
	Region            string
	Endpoint          string
	AuctionsTable     string
	OffersTable       string
	ParticipantsTable string
	CreateTables      bool
}
