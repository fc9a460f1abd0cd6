package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Region         int    `json:"region" validate:"gt=0"`
}

func TestValidateOk(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(context.Background(), testStruct{OrganizationID: "org", Region: 6}))
}

func TestValidateError(t *testing.T) {
	t.Parallel()
	err := Validate(context.Background(), testStruct{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organizationId is a required field")
	assert.Contains(t, err.Error(), "region must be greater than 0")
}
