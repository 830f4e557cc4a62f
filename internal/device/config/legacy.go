package config

// Deployment keys of the legacy state document and the configuration keys
// they seed.
var legacyKeys = map[string]string{
	"USER_PHONE_NUMBER": "device.user_number",
	"SMS_PHONE_NUMBER":  "device.sms_number",
	"CALL_PHONE_NUMBER": "device.call_number",
	"THRESHOLD_VALUE":   "monitor.threshold",
}

// LegacyDefaults maps the deployment keys of a state document to dotted
// configuration keys. Unknown keys, empty strings and nulls are skipped.
func LegacyDefaults(doc map[string]any) map[string]any {
	out := make(map[string]any)
	for legacy, key := range legacyKeys {
		v, ok := doc[legacy]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		out[key] = v
	}
	return out
}
