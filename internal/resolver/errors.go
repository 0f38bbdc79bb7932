package resolver

import "github.com/pkg/errors"

var (
	ErrNotFound      = errors.New("symbol not found")
	ErrModuleMissing = errors.New("module not loaded")
)
