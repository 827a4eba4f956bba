package config

// Lockmapfile represents the structure of the lockmap.yaml configuration file.
type Lockmapfile struct {
	Version     string            `yaml:"version"`
	Root        string            `yaml:"root"`
	Env         []string          `yaml:"env"`
	Exclusions  map[string]string `yaml:"exclusions"`
	Registry    string            `yaml:"registry"`
	Provider    string            `yaml:"provider"`
	Layer       string            `yaml:"layer"`
	Local       LocalDTO          `yaml:"local"`
	Cache       CacheDTO          `yaml:"cache"`
	Lockfile    string            `yaml:"lockfile"`
	Output      string            `yaml:"output"`
	Flatten     *bool             `yaml:"flatten"`
	Combine     *bool             `yaml:"combine"`
	Integrity   bool              `yaml:"integrity"`
	Parallelism int               `yaml:"parallelism"`
	Metrics     string            `yaml:"metrics"`
	Self        SelfDTO           `yaml:"self"`
}

// LocalDTO configures the local filesystem provider.
type LocalDTO struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"baseURL"`
}

// CacheDTO configures the fetch cache.
type CacheDTO struct {
	Dir     string `yaml:"dir"`
	TTL     string `yaml:"ttl"`
	Offline bool   `yaml:"offline"`
}

// SelfDTO configures the mapping of the project's own exports.
type SelfDTO struct {
	BaseURL string `yaml:"baseURL"`
}
