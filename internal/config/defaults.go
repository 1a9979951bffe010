package config

// DefaultServer is the fallback server URL when neither config nor profiles
// name one. 8338 is the metadata server's conventional port.
const DefaultServer = "http://127.0.0.1:8338"

// DefaultRequestTimeoutMs is the per-request deadline applied when the config
// does not set one.
const DefaultRequestTimeoutMs = 15000

// DefaultRenameSettleMs is the pause between the post-rename folder reload
// and the follow-up file reload.
const DefaultRenameSettleMs = 100

// DefaultRetryMax is the retry count for idempotent GET requests.
const DefaultRetryMax = 2

// DefaultMdnsService is the service type browsed for metadata servers.
const DefaultMdnsService = "_metaremote._tcp"
