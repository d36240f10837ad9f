// Package all registers all console commands and transports.
package all

import (
	_ "github.com/robotalks/telecortex.go/pkg/cli/cmds/panel"
	_ "github.com/robotalks/telecortex.go/pkg/transport/all"
)
