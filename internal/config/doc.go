// Package config loads reworm.json, the project file read by the reworm CLI.
//
// # Configuration File Structure
//
//	{
//	  "stores": {
//	    "user": { "name": "John" },
//	    "count": 0
//	  },
//	  "devtools": {
//	    "enabled": true,
//	    "addr": "localhost:7070"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reworm",
//	    "subsystem": ""
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "reworm"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// Each entry under "stores" seeds the registry with an initial value.
// Seeds are registered in identifier order.
//
// # Loading
//
//	cfg, err := config.Load(".")
//	cfg, err := config.LoadFile("/path/to/reworm.json")
//	cfg, err := config.LoadFromWorkingDir()
//
// # Building a Container
//
//	c, err := cfg.NewContainer(reworm.WithObserver(metrics))
package config
