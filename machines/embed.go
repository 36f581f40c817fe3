// Package machines ships the built-in variant configs.
// 內建三款機台：classic（三軸入門）、fruity（五軸）、gemstone（五軸含 bonus/scatter）。
package machines

import (
	"embed"
)

// FS provides embedded default variant YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS
