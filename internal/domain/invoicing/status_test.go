package invoicing

import (
	"errors"
	"testing"

	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Status("archived").IsValid())
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("DRAFT").IsValid())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusOverdue.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" paid ")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)

	_, err = ParseStatus("archived")
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeInvalidStatus, domainErr.Code)
	assert.Equal(t, "status", domainErr.Field)
}
