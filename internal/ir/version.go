package ir

// EngineVersion is the expo engine version reported by the CLI and the
// HTTP health check.
const EngineVersion = "0.1.0"
