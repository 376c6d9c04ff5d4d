package governance

const Version = "0.1.0"
