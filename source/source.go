// Package source installs the go-json driver as the process-wide default
// when imported:
//
//	import _ "github.com/reoring/graphmap/source"
package source

import (
	graphmap "github.com/reoring/graphmap"
	drvgojson "github.com/reoring/graphmap/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { graphmap.SetJSONDriver(drvgojson.Driver()) }
