// Package config loads the route table served by isorouter.
//
// The table lives in isorouter.json (or isorouter.yaml / isorouter.yml) at
// the project root, or in an S3 object with the same layout.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "address": ":8080",
//	    "resolveTimeout": "5s"
//	  },
//	  "context": {"tenant": "acme"},
//	  "routes": [
//	    {"pattern": "/users/:id:int", "data": {"view": "user"}},
//	    {"pattern": "/old", "redirect": "/new"},
//	    {"pattern": "/boom", "error": "exploded", "delay": "20ms"}
//	  ]
//	}
//
// Routes are matched in file order. Each route reports exactly one
// outcome: error if set, otherwise redirect if set, otherwise data.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Routes:", len(cfg.Routes))
package config
