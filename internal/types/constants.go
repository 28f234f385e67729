package types

const ContextUserKey = "user"

// RequestIDKey holds the id assigned to each request by the logging middleware.
const RequestIDKey = "request_id"
