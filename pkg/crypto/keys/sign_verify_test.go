package keys

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/stretchr/testify/require"
)

func TestPubKeyVerify(t *testing.T) {
	var data = hash.Sha256([]byte("sample"))

	for _, newKey := range []func() (*PrivateKey, error){NewPrivateKey, NewSecp256k1PrivateKey} {
		privKey, err := newKey()
		require.NoError(t, err)
		sig, err := privKey.SignHash(data)
		require.NoError(t, err)
		pubKey := privKey.PublicKey()
		require.True(t, pubKey.Verify(sig, data[:]))

		other := hash.Sha256([]byte("other"))
		require.False(t, pubKey.Verify(sig, other[:]))
		require.False(t, pubKey.Verify(nil, data[:]))
	}
}

func TestWrongPubKey(t *testing.T) {
	privKey, err := NewPrivateKey()
	require.NoError(t, err)
	sample := hash.Sha256([]byte("sample"))
	sig, err := privKey.SignHash(sample)
	require.NoError(t, err)

	secondPrivKey, err := NewPrivateKey()
	require.NoError(t, err)
	require.False(t, secondPrivKey.PublicKey().Verify(sig, sample[:]))

	k1, err := NewSecp256k1PrivateKey()
	require.NoError(t, err)
	require.False(t, k1.PublicKey().Verify(sig, sample[:]))
}

func TestNewPrivateKeyFromString(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	expanded := ed25519.NewKeyFromSeed(seed)
	pub := expanded.Public().(ed25519.PublicKey)

	t.Run("expanded", func(t *testing.T) {
		k, err := NewPrivateKeyFromString("ed25519:" + base58.Encode(expanded))
		require.NoError(t, err)
		require.Equal(t, "ed25519:"+base58.Encode(pub), k.PublicKey().String())
	})
	t.Run("seed", func(t *testing.T) {
		k, err := NewPrivateKeyFromString("ed25519:" + base58.Encode(seed))
		require.NoError(t, err)
		require.Equal(t, []byte(pub), k.PublicKey().Data)
	})
	t.Run("no prefix", func(t *testing.T) {
		k, err := NewPrivateKeyFromString(base58.Encode(expanded))
		require.NoError(t, err)
		require.Equal(t, ED25519, k.Type())
	})
	t.Run("mismatching public part", func(t *testing.T) {
		bad := append([]byte{}, expanded...)
		bad[63] ^= 0xff
		_, err := NewPrivateKeyFromString("ed25519:" + base58.Encode(bad))
		require.ErrorIs(t, err, neterr.ErrInvalidKeyMaterial)
	})
	for _, s := range []string{
		"ed25519:0OIl",
		"rsa:" + base58.Encode(seed),
		"ed25519:" + base58.Encode(seed[:31]),
		"secp256k1:" + base58.Encode(seed[:20]),
		"secp256k1:" + base58.Encode(make([]byte, 32)),
	} {
		_, err := NewPrivateKeyFromString(s)
		require.ErrorIs(t, err, neterr.ErrInvalidKeyMaterial, s)
		require.NotContains(t, err.Error(), base58.Encode(seed))
	}
}

func TestSecp256k1FromString(t *testing.T) {
	k, err := NewSecp256k1PrivateKey()
	require.NoError(t, err)

	priv := make([]byte, 32)
	k.k1.Key.PutBytesUnchecked(priv)
	k2, err := NewPrivateKeyFromString("secp256k1:" + base58.Encode(priv))
	require.NoError(t, err)
	require.True(t, k.PublicKey().Equal(k2.PublicKey()))
	require.Equal(t, SECP256K1PublicKeySize, len(k2.PublicKey().Data))

	pk, err := NewPublicKeyFromString(k2.PublicKey().String())
	require.NoError(t, err)
	require.True(t, pk.Equal(k2.PublicKey()))
}

func TestDestroy(t *testing.T) {
	for _, newKey := range []func() (*PrivateKey, error){NewPrivateKey, NewSecp256k1PrivateKey} {
		k, err := newKey()
		require.NoError(t, err)
		var secret []byte
		if k.ed != nil {
			secret = k.ed
		}
		pub := k.PublicKey()

		k.Destroy()
		k.Destroy()
		for _, b := range secret {
			require.Equal(t, byte(0), b)
		}
		_, err = k.SignHash(hash.Sha256([]byte("data")))
		require.ErrorIs(t, err, ErrDestroyed)
		require.Equal(t, pub, k.PublicKey())
	}
}

func TestPrivateKeyDoesNotLeak(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)
	secret := base58.Encode(k.ed)
	for _, s := range []string{k.String(), fmt.Sprintf("%v", k), fmt.Sprintf("%#v", k), fmt.Sprintf("%s", k)} {
		require.NotContains(t, s, secret)
		require.Contains(t, s, k.PublicKey().String())
	}
}

func TestPublicKeyFromString(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)
	s := k.PublicKey().String()

	pk, err := NewPublicKeyFromString(s)
	require.NoError(t, err)
	require.True(t, pk.Equal(k.PublicKey()))
	require.False(t, pk.Equal(nil))

	for _, bad := range []string{"ed25519:", "ed25519:0OIl", "dsa:abc", "secp256k1:" + base58.Encode(make([]byte, 64))} {
		_, err := NewPublicKeyFromString(bad)
		require.Error(t, err, bad)
	}

	data, err := pk.MarshalJSON()
	require.NoError(t, err)
	var actual PublicKey
	require.NoError(t, actual.UnmarshalJSON(data))
	require.True(t, actual.Equal(pk))
	require.Error(t, actual.UnmarshalJSON([]byte(`"ed25519:111"`)))
}

func TestPublicKeyBinary(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)
	pk := k.PublicKey()

	b, err := io.ToBytes(pk)
	require.NoError(t, err)
	require.Equal(t, 1+ED25519PublicKeySize, len(b))
	require.Equal(t, byte(ED25519), b[0])

	var actual PublicKey
	require.NoError(t, io.FromBytes(b, &actual))
	require.True(t, actual.Equal(pk))

	_, err = io.ToBytes(&PublicKey{Type: ED25519, Data: []byte{1, 2}})
	require.Error(t, err)
	_, err = io.ToBytes(&PublicKey{Type: 7, Data: []byte{1, 2}})
	require.Error(t, err)
	require.Error(t, io.FromBytes([]byte{9, 1, 2}, &actual))
}

func TestSignatureBinary(t *testing.T) {
	k, err := NewSecp256k1PrivateKey()
	require.NoError(t, err)
	sig, err := k.SignHash(hash.Sha256([]byte("x")))
	require.NoError(t, err)
	require.Equal(t, SECP256K1SignatureSize, len(sig.Data))
	require.LessOrEqual(t, sig.Data[64], byte(3))

	b, err := io.ToBytes(sig)
	require.NoError(t, err)
	var actual Signature
	require.NoError(t, io.FromBytes(b, &actual))
	require.Equal(t, *sig, actual)
	require.Contains(t, sig.String(), "secp256k1:")

	_, err = io.ToBytes(&Signature{Type: ED25519, Data: make([]byte, 65)})
	require.Error(t, err)
}
