package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	Gateway    Gateway    `envPrefix:"GATEWAY_"`
	Settlement Settlement `envPrefix:"SETTLEMENT_"`
}

type Gateway struct {
	BaseAPIURL  string `env:"BASE_API_URL"`
	Channel     string `env:"CHANNEL"`
	Secret      string `env:"SECRET"`
	CallbackURL string `env:"CALLBACK_URL"`
	// TestMode makes pay-URL issuance settle the order immediately with a
	// synthetic trade reference. Staging/demo only.
	TestMode bool `env:"TEST_MODE" envDefault:"false"`
}

type Settlement struct {
	CommissionRate       float64 `env:"COMMISSION_RATE" envDefault:"0.10"`
	CommissionFreezeDays int     `env:"COMMISSION_FREEZE_DAYS" envDefault:"7"`
	MinWithdrawal        float64 `env:"MIN_WITHDRAWAL" envDefault:"10"`
	UnlockSpec           string  `env:"UNLOCK_SPEC" envDefault:"*/5 * * * *"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
