package netutil

import (
	"net/http"
)

// IsSuccess returns a boolean indicating whether the provided status code is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
