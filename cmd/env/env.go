package env

// Prefix is the environment variable prefix for every flag,
// ex. RATEWATCH_LISTEN for -listen
const Prefix = "RATEWATCH"
