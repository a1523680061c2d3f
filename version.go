package keel

// Version is the framework release version, reported by the status API and
// keelctl.
const Version = "0.1.0"
