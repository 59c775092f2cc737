package repository

import (
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open builds the store selected by driver and wraps it with metrics.
func Open(driver, path string, opts ...Option) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverBolt:
		s, err = NewBoltStore(path, opts...)
	case DriverSQLite:
		s, err = NewSQLiteStore(path, opts...)
	case DriverMemory:
		s = NewMemoryStore(opts...)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s), nil
}
