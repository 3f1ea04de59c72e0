// Package middleware provides composable wrappers around a ports.Cache.
package middleware

import "github.com/verdancy/bramble/pkg/ports"

// Middleware allows wrapping a Cache to add behavior.
type Middleware func(ports.Cache) ports.Cache
