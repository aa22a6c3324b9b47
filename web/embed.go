// Package web holds the static map page served at /map.
package web

import "embed"

// Assets contains map.html and map.js
//
//go:embed map.html map.js
var Assets embed.FS
