package common

import (
	"context"
)

type contextKey int

const (
	configKey contextKey = iota
)

// Attaches the global configuration to the context
func SetConfig(ctx context.Context, config interface{}) context.Context {
	return context.WithValue(ctx, configKey, config)
}

func GetConfig(ctx context.Context) interface{} {
	return ctx.Value(configKey)
}
