// Package config provides configuration parsing for weave tools.
//
// The configuration is stored in weave.yaml. Every field has a default, so a
// missing file is not an error for Load; LoadFile requires the file to exist.
// A handful of environment variables override file values.
//
// # Configuration File Structure
//
//	scheduler:
//	  frame_budget: 8ms
//	  frame_interval: 16ms
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: weave
//	tracing:
//	  tracer_name: weave
//	server:
//	  addr: ":7070"
//
// # Environment Overrides
//
//	WEAVE_LOG_LEVEL     log.level
//	WEAVE_ADDR          server.addr
//	WEAVE_FRAME_BUDGET  scheduler.frame_budget
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loop := sched.NewLoop(sched.WithFrameBudget(cfg.Scheduler.FrameBudget))
package config
