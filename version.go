package ferret

// Version is the current release of the ferret module.
const Version = "0.1.0"
