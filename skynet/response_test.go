package skynet

import (
	"testing"

	"github.com/skynetlabs/skyportal/testutil"

	"github.com/stretchr/testify/require"
)

func TestParseUploadResponse(t *testing.T) {
	type test struct {
		desc     string
		body     []byte
		expected *UploadResponse
		err      error
	}

	tests := []test{
		{
			desc: "ValidBody",
			body: testutil.MarshalJSON(t, map[string]any{"skylink": "ABC123", "merkleroot": "deadbeef",
				"bitfield": 42}),
			expected: &UploadResponse{
				Skylink:    NewSkylink("https://portal.test", "ABC123"),
				MerkleRoot: "deadbeef",
				Bitfield:   42,
			},
		},
		{
			desc: "MissingSkylink",
			body: []byte(`{"merkleroot":"deadbeef","bitfield":42}`),
			err:  &ResponseMappingError{field: "skylink", reason: "is missing"},
		},
		{
			desc: "MissingMerkleRoot",
			body: []byte(`{"skylink":"ABC123","bitfield":42}`),
			err:  &ResponseMappingError{field: "merkleroot", reason: "is missing"},
		},
		{
			desc: "MissingBitfield",
			body: []byte(`{"skylink":"ABC123","merkleroot":"deadbeef"}`),
			err:  &ResponseMappingError{field: "bitfield", reason: "is missing"},
		},
		{
			desc: "SkylinkNotAString",
			body: []byte(`{"skylink":42,"merkleroot":"deadbeef","bitfield":42}`),
			err:  &ResponseMappingError{field: "skylink", reason: "is not a string"},
		},
		{
			desc: "MerkleRootNotAString",
			body: []byte(`{"skylink":"ABC123","merkleroot":{},"bitfield":42}`),
			err:  &ResponseMappingError{field: "merkleroot", reason: "is not a string"},
		},
		{
			desc: "BitfieldNotANumber",
			body: []byte(`{"skylink":"ABC123","merkleroot":"deadbeef","bitfield":"42"}`),
			err:  &ResponseMappingError{field: "bitfield", reason: "is not a number"},
		},
		{
			desc: "BitfieldNotAnInteger",
			body: []byte(`{"skylink":"ABC123","merkleroot":"deadbeef","bitfield":42.9}`),
			err:  &ResponseMappingError{field: "bitfield", reason: "is not an unsigned integer"},
		},
		{
			desc: "BitfieldNegative",
			body: []byte(`{"skylink":"ABC123","merkleroot":"deadbeef","bitfield":-1}`),
			err:  &ResponseMappingError{field: "bitfield", reason: "is not an unsigned integer"},
		},
		{
			desc: "UnrecognizedField",
			body: []byte(`{"skylink":"ABC123","merkleroot":"deadbeef","bitfield":42,"extra":true}`),
			err:  &ResponseMappingError{field: "extra", reason: "is not a recognized field"},
		},
		{
			desc: "BodyIsAnArray",
			body: []byte(`["ABC123","deadbeef",42]`),
			err:  &ResponseMappingError{reason: "body is not a JSON object"},
		},
		{
			desc: "BodyIsNotJSON",
			body: []byte(`not json`),
			err:  &ResponseMappingError{reason: "body is not a JSON object"},
		},
		{
			desc: "BodyIsEmpty",
			body: make([]byte, 0),
			err:  &ResponseMappingError{reason: "body is not a JSON object"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := parseUploadResponse("https://portal.test", tc.body)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				require.True(t, IsResponseMapping(err))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}
