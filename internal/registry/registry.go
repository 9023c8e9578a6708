package registry

import (
	_ "github.com/steadyware/mousebridge/sink/discard" // Register discard sink backend
	_ "github.com/steadyware/mousebridge/sink/uinput"  // Register uinput sink backend (linux)
	_ "github.com/steadyware/mousebridge/sink/viiper"  // Register viiper sink backend
)
