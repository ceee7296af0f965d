package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	id := uuid.MustParse("0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10")

	key := DocumentKey("cust-1", id, "paystub.pdf")
	assert.Equal(t, "customers/cust-1/documents/0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10/paystub.pdf", key)
}

func TestDocumentKey_StripsDirectories(t *testing.T) {
	id := uuid.MustParse("0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10")

	key := DocumentKey("cust-1", id, "../../other/secret.pdf")
	assert.Equal(t, "customers/cust-1/documents/0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10/secret.pdf", key)
}

func TestSignatureKey(t *testing.T) {
	id := uuid.MustParse("0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10")

	assert.Equal(t, "customers/cust-1/signatures/0b5c3f4e-8f0a-4d6e-9d55-3f1b2a7c9e10.png", SignatureKey("cust-1", id))
}
