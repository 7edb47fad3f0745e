package config

// UploadService definition upload_service YAML structure
type UploadService struct {
	Port string `mapstructure:"port"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
	RabbitMQ   RabbitMQConfig `mapstructure:"rabbitmq"`
}

// TranscodeWorker definition transcode_worker YAML structure
type TranscodeWorker struct {
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
	RabbitMQ   RabbitMQConfig `mapstructure:"rabbitmq"`

	// FFmpegTimeout bounds one transcode run, in seconds. 0 means unbounded.
	FFmpegTimeout int `mapstructure:"ffmpeg_timeout"`
}

// APIGateway definition api_gateway YAML structure
type APIGateway struct {
	Port          string        `mapstructure:"port"`
	UploadService ServiceConfig `mapstructure:"upload"`
	MinIO         MinIOConfig   `mapstructure:"minio"`
}

// ServiceConfig definition downstream service address
type ServiceConfig struct {
	IP   string `mapstructure:"service_ip"`
	Port string `mapstructure:"service_port"`
	Name string `mapstructure:"service_name"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition object store setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RabbitMQConfig definition queue broker setting
type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
