package app

import (
	"github.com/specialistvlad/wiregrid/internal/container"
	"github.com/specialistvlad/wiregrid/internal/registry"
	"github.com/specialistvlad/wiregrid/modules/env_vars"
	"github.com/specialistvlad/wiregrid/modules/http_client"
	"github.com/specialistvlad/wiregrid/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the wiregrid binary.
var coreModules = []registry.Module{
	&container.Module{},
	&env_vars.Module{},
	&print.Module{},
	&http_client.Module{},
}
