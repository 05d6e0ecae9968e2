package internal

// Version is the wordtale release version
const Version = "0.4.0"
