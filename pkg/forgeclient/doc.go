// Package forgeclient provides the primary entry point for constructing a
// Forge API client that implements the forge.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// resource interfaces and types defined in the forge package. Most
// applications should import forgeclient to build a client, then use the
// returned forge.Client to reach the resource clients Jobs() and Artifacts().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/forgeworks-io/forge-client/pkg/forge"
//	  "github.com/forgeworks-io/forge-client/pkg/forgeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := forgeclient.New(&forge.Config{APIEndpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = forgeclient.New(&forge.Config{
//	    APIEndpoint: "https://api.example.com",
//	    Token:       "frg_...", // bearer token
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the forge.Client interface
//	  jobs, err := cli.Jobs().List(forge.WithPageSize[forge.Job](10)).Next(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint and
// NewWithToken that wrap New with the appropriate configuration.
package forgeclient
