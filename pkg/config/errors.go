package config

import "errors"

var (
	errInvalidParallelism = errors.New("config: engine.parallelism must be >= 0")
	errInvalidIterations  = errors.New("config: engine.iterations must be >= 0")
)
