package config

type Config struct {
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`

	Storage Storage `yaml:"storage"`
	Cache   Cache   `yaml:"cache"`

	Probe    Probe    `yaml:"probe"`
	Fallback Fallback `yaml:"fallback"`

	Background Background `yaml:"background"`
}

func (c *Config) Preprocess() error {
	errs := make([]error, 0)

	errs = append(errs, c.Log.Preprocess())
	errs = append(errs, c.Server.Preprocess())
	errs = append(errs, c.Storage.Preprocess())
	errs = append(errs, c.Cache.Preprocess())
	errs = append(errs, c.Probe.Preprocess())
	errs = append(errs, c.Fallback.Preprocess())
	errs = append(errs, c.Background.Preprocess())

	return flatten(errs)
}
