// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package supervisor runs the long-lived parts of `cinerec serve` under a
suture v4 supervisor tree.

	RootSupervisor ("cinerec")
	├── ModelSupervisor ("model-layer")
	│   └── ReloadService (when recommend.reload_interval > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff; the model layer backs
off longer than the API layer. Supervisor
events (restarts, backoff, stop timeouts) are logged through sutureslog,
which writes to the zerolog logger via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{Addr: server.Addr}, logger))
	tree.AddModelService(reload)
	return tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
