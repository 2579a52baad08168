package interactions

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	require.Equal(t, []byte{1, 0, 0, 0}, idKey(1))
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, idKey(0x01020304))

	addr := util.Uint160{1, 2, 3}
	require.Equal(t, append([]byte{'a'}, addr.BytesBE()...), addressKey(addr))
	require.Equal(t, []byte{'i', 7, 0, 0, 0}, reverseKey(7))

	k := Key{ID: 1, Endpoint: "add"}
	require.Equal(t, hash.Sha256([]byte{1, 0, 0, 0, 'a', 'd', 'd'}).BytesBE(), k.digest())
	require.Len(t, interactionKey(k), 1+cst.InteractionDigestSize)
	require.Len(t, callerKey(k, addr), 1+cst.InteractionDigestSize+util.Uint160Size)

	t.Run("string", func(t *testing.T) {
		b, err := base58.Decode(k.String())
		require.NoError(t, err)
		require.Equal(t, k.digest(), b)
	})

	t.Run("distinct keys", func(t *testing.T) {
		require.NotEqual(t, k.digest(), Key{ID: 1, Endpoint: "ad"}.digest())
		require.NotEqual(t, k.digest(), Key{ID: 2, Endpoint: "add"}.digest())
	})
}

func TestInteractionStackItem(t *testing.T) {
	x := Interaction{Target: util.Uint160{9, 8, 7}, Endpoint: "transfer"}

	var y Interaction
	require.NoError(t, y.FromStackItem(x.ToStackItem()))
	require.Equal(t, x, y)
}
