// Package autoload registers all built-in channel factories via side-effect
// imports.
package autoload

import (
	_ "sleuth/pkg/channels/telegram"
	_ "sleuth/pkg/channels/web"
)
