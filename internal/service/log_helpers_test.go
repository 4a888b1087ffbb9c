package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	require.Equal(t, "s***a@campus.test", maskEmail(" Sita@Campus.test "))
	require.Equal(t, "j***@campus.test", maskEmail("jo@campus.test"))
	require.Equal(t, "***", maskEmail("not-an-email"))
	require.Equal(t, "***", maskEmail(""))
}
