package config

import "errors"

var (
	ErrConfigFailedToRead   = errors.New("failed to read the config file")
	ErrConfigFailedToParse  = errors.New("failed to parse the config file")
	ErrInvalidCache         = errors.New("invalid cache configuration")
	ErrInvalidFallbackURL   = errors.New("invalid fallback base url")
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidLogMode       = errors.New("invalid log-mode")
	ErrInvalidProbe         = errors.New("invalid probe configuration")
	ErrInvalidStorage       = errors.New("invalid storage configuration")
)

func flatten(errs []error) error {
	next := 0
	for _, err := range errs {
		if err != nil {
			errs[next] = err
			next++
		}
	}
	errs = errs[:next]

	switch len(errs) {
	default:
		return errors.Join(errs...)
	case 1:
		return errs[0]
	case 0:
		return nil
	}
}
