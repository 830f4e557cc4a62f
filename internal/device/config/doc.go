// Package config defines the device configuration structure.
//
// Values are resolved in three layers, lowest priority first:
//
//  1. Default() and the deployment keys of the legacy state document
//     (USER_PHONE_NUMBER, SMS_PHONE_NUMBER, CALL_PHONE_NUMBER,
//     THRESHOLD_VALUE)
//  2. The YAML configuration file
//  3. TRACKLINK_* environment variables
//
// Example file:
//
//	device:
//	  user_number: "+33600000001"
//	  sms_number: "+33600000002"
//	  state_file: /var/lib/tracklink/config.json
//	monitor:
//	  threshold: 20
//	  delta_multiplier: 2
//	log:
//	  level: debug
package config
