package main

// Exit codes.
const (
	ExitSuccess            = 0 // Success
	ExitError              = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError        = 2 // Missing input files/directories or bad configuration
	ExitDataError          = 3 // Data error (dimension mismatch, insufficient overlap)
	ExitBackendUnavailable = 4 // Embedding backend failed to construct
)
