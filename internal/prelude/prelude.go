// Package prelude embeds the runtime the driver writes in front of
// generated JavaScript.
package prelude

import _ "embed"

//go:embed runtime.js
var runtimeJS string

// JavaScript returns the JavaScript runtime prelude.
func JavaScript() string {
	return runtimeJS
}
