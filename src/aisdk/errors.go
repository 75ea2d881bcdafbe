package aisdk

import "errors"

// ErrThrottled indicates the gateway reported rate limiting. The controller
// retries these with backoff; nothing else is retried.
var ErrThrottled = errors.New("model gateway throttled")
