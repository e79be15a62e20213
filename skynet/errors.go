package skynet

import (
	"errors"
	"fmt"
)

// ResponseMappingError is returned if an upload received a successful status but the JSON body does not match the
// expected result shape. Mapping is strict on purpose, surfacing portal API drift immediately rather than masking it
// with a partial result.
type ResponseMappingError struct {
	field  string
	reason string
}

func (e *ResponseMappingError) Error() string {
	if e.field == "" {
		return fmt.Sprintf("failed to map upload response: %s", e.reason)
	}

	return fmt.Sprintf("failed to map upload response: field '%s' %s", e.field, e.reason)
}

// IsResponseMapping returns a boolean indicating whether the given error is a 'ResponseMappingError'.
func IsResponseMapping(err error) bool {
	var responseMapping *ResponseMappingError
	return err != nil && errors.As(err, &responseMapping)
}
