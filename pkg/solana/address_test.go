package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Vectors from the Solana SDK pubkey tests. "SeedPubey" is spelled as it is
// upstream.
func TestCreateProgramAddress_Vectors(t *testing.T) {
	programID := MustBase58Decode("BPFLoader1111111111111111111111111111111111")
	seedKey := MustBase58Decode("SeedPubey1111111111111111111111111111111111")

	for _, tc := range []struct {
		name     string
		seeds    [][]byte
		expected string
	}{
		{"empty and one", [][]byte{{}, {1}}, "3gF2KMe9KiC6FNVBmfg9i267aMPvK37FewCip4eGBFcT"},
		{"unicode", [][]byte{[]byte("☉")}, "7ytmC1nT1xY4RfxCV2ZgyA7UakC93do5ZdyhdF3EtPj7"},
		{"two words", [][]byte{[]byte("Talking"), []byte("Squirrels")}, "HwRVBufQ4haG5XSgpspwKtNd3PC9GM9m1196uJW36vds"},
		{"public key", [][]byte{seedKey}, "GUs5qLUfsEHkcMB9T38vjr18ypEhRuNWiePW2LoK4E3K"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			address, err := CreateProgramAddress(programID, tc.seeds...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, base58.Encode(address))
		})
	}
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	programID := MustBase58Decode("BPFLoader1111111111111111111111111111111111")

	_, err := CreateProgramAddress(programID, make([]byte, maxSeedLength))
	assert.NoError(t, err)

	_, err = CreateProgramAddress(programID, make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateProgramAddress(programID, []byte("short"), make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateProgramAddress(programID, make([][]byte, maxSeeds+1)...)
	assert.Equal(t, ErrTooManySeeds, err)
}

func TestCreateProgramAddress_DistinctSeedLists(t *testing.T) {
	programID := MustBase58Decode("BPFLoader1111111111111111111111111111111111")

	a, err := CreateProgramAddress(programID, []byte("Talking"))
	require.NoError(t, err)
	b, err := CreateProgramAddress(programID, []byte("Talking"), []byte("Squirrels"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

// fixedHash reports the same digest no matter what is written to it
type fixedHash struct {
	digest []byte
}

func (h *fixedHash) Write(p []byte) (int, error) { return len(p), nil }
func (h *fixedHash) Sum([]byte) []byte           { return h.digest }
func (h *fixedHash) Reset()                      {}
func (h *fixedHash) Size() int                   { return sha256.Size }
func (h *fixedHash) BlockSize() int              { return sha256.BlockSize }

// forceOnCurveDigest makes every derivation hash to a real public key
func forceOnCurveDigest(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	programHashCtor = func() hash.Hash { return &fixedHash{digest: pub} }
	t.Cleanup(func() { programHashCtor = sha256.New })
}

func TestCreateProgramAddress_RejectsOnCurve(t *testing.T) {
	forceOnCurveDigest(t)

	_, err := CreateProgramAddress(MustBase58Decode("BPFLoader1111111111111111111111111111111111"), []byte("seed"))
	assert.Equal(t, ErrInvalidPublicKey, err)
}

func TestFindProgramAddressAndBump_NoViableBump(t *testing.T) {
	forceOnCurveDigest(t)

	_, _, err := FindProgramAddressAndBump(MustBase58Decode("BPFLoader1111111111111111111111111111111111"), []byte("seed"))
	assert.Equal(t, ErrNoViableBump, err)
}

func TestFindProgramAddressAndBump_Canonical(t *testing.T) {
	seeds := [][]byte{[]byte("sol_account"), make([]byte, 32)}

	for i := 0; i < 50; i++ {
		programID, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		address, bump, err := FindProgramAddressAndBump(programID, seeds...)
		require.NoError(t, err)
		assert.False(t, IsOnCurve(address))

		recreated, err := CreateProgramAddress(programID, append(seeds, []byte{bump})...)
		require.NoError(t, err)
		assert.EqualValues(t, address, recreated)

		for higher := int(bump) + 1; higher <= 255; higher++ {
			_, err := CreateProgramAddress(programID, append(seeds, []byte{byte(higher)})...)
			assert.Equal(t, ErrInvalidPublicKey, err)
		}
	}
}

func TestFindProgramAddressAndBump_DoesNotMutateSeeds(t *testing.T) {
	programID, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	seeds := make([][]byte, 1, 4)
	seeds[0] = []byte("sol_account")
	_, _, err = FindProgramAddressAndBump(programID, seeds...)
	require.NoError(t, err)
	assert.Len(t, seeds, 1)
	assert.Nil(t, seeds[:2][1])
}

func TestFindProgramAddress_Reference(t *testing.T) {
	for programID, expected := range map[string]string{
		"4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM": "Bn9pAWUXWc5Kd849xTkQcHqiCbHUEizLFn4r5Cf8XYnd",
		"8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh": "oDvUHiiGdMo31xYzjefAzUekWH8EbCKrxgs2FkyTs1S",
		"CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3": "B2vBn2bmF9GuaGkebrm8oUqDC34pE6m4bagjNcVE6msv",
		"GcdayuLaLyrdmUu324nahyv33G5poQdLUEZ1nEytDeP": "2mN5Nfq9v1EwTV9FPTHPESZ3XiZce9wi5PQoULFuxvev",
	} {
		actual, err := FindProgramAddress(MustBase58Decode(programID), []byte("Lil'"), []byte("Bits"))
		require.NoError(t, err)
		assert.Equal(t, expected, base58.Encode(actual))
	}
}

func TestIsOnCurve(t *testing.T) {
	for i := 0; i < 20; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		assert.True(t, IsOnCurve(pub))
	}

	pda, err := FindProgramAddress(MustBase58Decode("BPFLoader1111111111111111111111111111111111"), []byte("Lil'"), []byte("Bits"))
	require.NoError(t, err)
	assert.False(t, IsOnCurve(pda))

	assert.False(t, IsOnCurve(make([]byte, 31)))
}

func TestMustBase58Decode(t *testing.T) {
	assert.Len(t, MustBase58Decode("11111111111111111111111111111111"), 32)
	assert.Panics(t, func() { MustBase58Decode("0OIl") })
}
