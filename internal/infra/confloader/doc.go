// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults supplied by the caller (WithDefaults)
//  2. The configuration file (YAML; JSON documents parse as YAML too)
//  3. Environment variables with the TRACKLINK_ prefix
//
// Nested keys in environment variables are separated by a double
// underscore so that key names may keep their single underscores:
// TRACKLINK_DEVICE__USER_NUMBER sets device.user_number.
//
// A Watcher built on fsnotify reports changes to the configuration file so
// the daemon can re-apply the settings that are safe to change at runtime.
package confloader
