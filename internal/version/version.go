package version

// Version is the release version of papyrus. Release builds override
// this with -ldflags.
var Version = "0.2.0-dev"
