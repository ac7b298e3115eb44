package cmd

type Config struct {
	HTTPPort        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	DefaultProvider string
	StuartBaseURL   string
	StuartAPIKey    string
	RabbitMQURL     string
	AverageSpeedMPS float64
}
