// Package config loads the service configuration from config.yaml.
//
// Sections:
//   - server   — HTTP port, API-key auth, analysis store TTL
//   - pipeline — zero-fill mode for unparseable numeric cells
//   - mail     — optional SMTP report delivery (password via env indirection)
//   - alerts   — threshold rules and webhook targets
//
// Secrets never live in the file: auth.key_env, mail.password_env, and
// webhook url_env name environment variables resolved at use time.
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads the file via fsnotify.
package config
