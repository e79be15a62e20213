package testutil

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// MarshalJSON marshals the provided interface to JSON fatally terminating the current test in the event of a failure.
func MarshalJSON(t *testing.T, data any) []byte {
	dJSON, err := json.Marshal(data)
	require.NoError(t, err)

	return dJSON
}

// EncodeJSON marshals then writes the provided interface to the given writer fatally terminating the current test in
// the event of a failure.
func EncodeJSON(t *testing.T, writer io.Writer, data any) {
	require.NoError(t, json.NewEncoder(writer).Encode(data))
}

// ReadAll reads everything from the given reader fatally terminating the current test in the event of a failure.
func ReadAll(t *testing.T, reader io.Reader) []byte {
	data, err := io.ReadAll(reader)
	require.NoError(t, err)

	return data
}
