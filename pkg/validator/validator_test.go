package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRoomInput struct {
	HostName string `json:"hostName" validate:"required,max=20"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(createRoomInput{HostName: "alice"})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(createRoomInput{})
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "hostName", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "hostName is required", errs[0].Message)

	errs, ok = v.Validate(createRoomInput{HostName: "a-very-long-host-name-indeed"})
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "MAX", errs[0].Code)
}
