package kyc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clients send document types in several spellings: the canonical display
// form, snake_case, and concatenated CamelCase. All resolve to the same
// canonical value.
func TestParseDocumentType_AcceptsWireSpellings(t *testing.T) {
	cases := map[string]DocumentType{
		"Aadhaar":         DocumentTypeAadhaar,
		"pan":             DocumentTypePAN,
		"Driving License": DocumentTypeDrivingLicense,
		"driving_license": DocumentTypeDrivingLicense,
		"DrivingLicense":  DocumentTypeDrivingLicense,
		"Voter ID":        DocumentTypeVoterID,
		"VoterID":         DocumentTypeVoterID,
	}
	for input, want := range cases {
		got, err := ParseDocumentType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseDocumentType_RejectsUnknown(t *testing.T) {
	_, err := ParseDocumentType("Ration Card")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ration Card")
}
