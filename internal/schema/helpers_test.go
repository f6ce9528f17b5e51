package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func mustNormalize(t *testing.T, v any) any {
	t.Helper()
	nv, err := types.Normalize(v)
	require.NoError(t, err)
	return nv
}
