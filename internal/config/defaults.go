package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.UserServer.Host == "" {
		cfg.UserServer.Host = "localhost"
	}
	if cfg.UserServer.Port == 0 {
		cfg.UserServer.Port = 8082
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/microlearn/data/content.db"
	}
	if cfg.Storage.UserDatabasePath == "" {
		cfg.Storage.UserDatabasePath = "/usr/local/var/microlearn/data/users.db"
	}
	if cfg.Storage.MongoDatabase == "" {
		cfg.Storage.MongoDatabase = "microlearn"
	}
	if cfg.Search.IndexPath == "" {
		cfg.Search.IndexPath = "/usr/local/var/microlearn/data/indices/lessons"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 30
	}
	if cfg.Upload.MaxSizeBytes == 0 {
		cfg.Upload.MaxSizeBytes = 10 << 20
	}
	if cfg.Upload.Extensions == nil {
		cfg.Upload.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	if cfg.Transform.DefaultDurationMinutes == 0 {
		cfg.Transform.DefaultDurationMinutes = 5
	}
	if cfg.Transform.DefaultQuizQuestions == 0 {
		cfg.Transform.DefaultQuizQuestions = 5
	}
	if cfg.Events.DaprURL == "" {
		cfg.Events.DaprURL = "http://localhost:3500"
	}
	if cfg.Events.PubSubName == "" {
		cfg.Events.PubSubName = "pubsub"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
