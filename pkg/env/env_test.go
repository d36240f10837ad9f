package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.True(t, len(id) <= IDLength || id == Hostname())
	require.Equal(t, id, MachineID())
}
