package skynet

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// UploadResponse is the result of a successful upload; it's immutable and owned by the caller once returned.
type UploadResponse struct {
	// Skylink references the uploaded content on the network.
	Skylink Skylink

	// MerkleRoot is the hex encoded hash summarizing the uploaded content's structure.
	MerkleRoot string

	// Bitfield is network specific metadata packed into an integer, returned alongside upload results.
	Bitfield uint64
}

// parseUploadResponse maps the raw portal response body onto an 'UploadResponse'.
//
// NOTE: Extraction is strict, a body with missing, mistyped or unrecognized fields is rejected rather than silently
// producing a partial result.
func parseUploadResponse(portalURL string, body []byte) (*UploadResponse, error) {
	root := jsoniter.Get(body)
	if root.ValueType() != jsoniter.ObjectValue {
		return nil, &ResponseMappingError{reason: "body is not a JSON object"}
	}

	for _, key := range root.Keys() {
		switch key {
		case "skylink", "merkleroot", "bitfield":
		default:
			return nil, &ResponseMappingError{field: key, reason: "is not a recognized field"}
		}
	}

	skylink, err := stringField(root, "skylink")
	if err != nil {
		return nil, err
	}

	merkleRoot, err := stringField(root, "merkleroot")
	if err != nil {
		return nil, err
	}

	bitfield := root.Get("bitfield")

	switch bitfield.ValueType() {
	case jsoniter.InvalidValue:
		return nil, &ResponseMappingError{field: "bitfield", reason: "is missing"}
	case jsoniter.NumberValue:
	default:
		return nil, &ResponseMappingError{field: "bitfield", reason: "is not a number"}
	}

	// Parse the raw literal, 'ToUint64' would silently truncate fractional values and wrap negative ones
	value, err := strconv.ParseUint(bitfield.ToString(), 10, 64)
	if err != nil {
		return nil, &ResponseMappingError{field: "bitfield", reason: "is not an unsigned integer"}
	}

	return &UploadResponse{
		Skylink:    NewSkylink(portalURL, skylink),
		MerkleRoot: merkleRoot,
		Bitfield:   value,
	}, nil
}

// stringField extracts the given top level field, rejecting missing/mistyped values.
func stringField(root jsoniter.Any, field string) (string, error) {
	value := root.Get(field)

	switch value.ValueType() {
	case jsoniter.InvalidValue:
		return "", &ResponseMappingError{field: field, reason: "is missing"}
	case jsoniter.StringValue:
		return value.ToString(), nil
	default:
		return "", &ResponseMappingError{field: field, reason: "is not a string"}
	}
}
