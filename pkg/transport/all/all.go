// Package all registers all transports.
package all

import (
	_ "github.com/robotalks/telecortex.go/pkg/transport/mqtt"
	_ "github.com/robotalks/telecortex.go/pkg/transport/serial"
	_ "github.com/robotalks/telecortex.go/pkg/transport/stdio"
	_ "github.com/robotalks/telecortex.go/pkg/transport/websocket"
)
