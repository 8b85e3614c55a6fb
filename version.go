package tablewatch

// Version is the release version of tablewatch.
const Version = "0.1.0"
