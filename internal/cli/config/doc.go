// Package config holds the tracklink-cli local configuration.
//
// The file lives at $XDG_CONFIG_HOME/tracklink/cli.yaml (see
// DefaultConfigPath) and records the devices a controller has paired:
//
//	default_output: table
//	daemon_config: /etc/tracklink/tracklink.yaml
//	devices:
//	  van:
//	    serial: "356938035643809"
//	    secret: hunter2
//	    number: "+33600000001"
//
// The file carries pairing secrets and is written with mode 0600.
package config
