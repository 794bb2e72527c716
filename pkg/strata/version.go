package strata

// Version is the driver version reported by the CLI.
const Version = "0.2.0"
