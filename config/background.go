package config

type Background struct {
	// Warmup resolves the background at startup instead of on first use.
	Warmup bool `yaml:"warmup"`
}

func (c *Background) Preprocess() error {
	return nil
}
