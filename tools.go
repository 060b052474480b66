//go:build tools

// Package roomchat tracks build tools such as mockgen as module dependencies.
package roomchat

import (
	_ "go.uber.org/mock/mockgen"
)
