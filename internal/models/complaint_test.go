package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkResolvedStampsEachTransition(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	reresolved := first.Add(96 * time.Hour)

	complaint := Complaint{}
	complaint.MarkResolved(true, first)
	require.True(t, complaint.IsResolved)
	require.NotNil(t, complaint.ResolvedAt)
	require.Equal(t, first, *complaint.ResolvedAt)

	complaint.MarkResolved(true, later)
	require.Equal(t, first, *complaint.ResolvedAt)

	complaint.MarkResolved(false, later)
	require.False(t, complaint.IsResolved)
	require.Equal(t, first, *complaint.ResolvedAt, "reopening keeps the original stamp")

	complaint.MarkResolved(true, reresolved)
	require.True(t, complaint.IsResolved)
	require.Equal(t, reresolved, *complaint.ResolvedAt)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Admin ")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("teacher")
	require.False(t, ok)
}
