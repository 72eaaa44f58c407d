package common

// AuthorizationHeaderName carries the bearer credential on every protected
// Content API request.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is prepended to the credential in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// ChatErrorReply is the assistant text shown when a chat exchange fails.
const ChatErrorReply = "Sorry, I encountered an error. Please try again."
