package common

// MissingCredentialFormat is the message returned when an adapter has no
// active credential configured. Arguments: credential name, obtain-at URL.
const MissingCredentialFormat = "Missing %s in API vault. Get one at %s"
