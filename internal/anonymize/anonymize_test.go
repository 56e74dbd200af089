package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

var hex12 = regexp.MustCompile(`^[0-9a-f]{12}$`)

func TestEncryptID_KnownDigest(t *testing.T) {
	// sha256("abc") = ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad
	assert.Equal(t, "ba7816bf8f01", EncryptID("abc"))
}

func TestEncryptID_PrefixOfFullDigest(t *testing.T) {
	for _, id := range []string{"20211234", "99999999", "1", "학번"} {
		sum := sha256.Sum256([]byte(id))
		full := hex.EncodeToString(sum[:])

		got := EncryptID(id)
		assert.Regexp(t, hex12, got)
		assert.Equal(t, full[:12], got)
	}
}

func TestEncryptID_Deterministic(t *testing.T) {
	first := EncryptID("20211234")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, EncryptID("20211234"))
	}
}

func TestEncryptID_DistinctInputs(t *testing.T) {
	seen := make(map[string]string)
	for i := 20210000; i < 20211000; i++ {
		id := strconv.Itoa(i)
		p := EncryptID(id)
		if prev, ok := seen[p]; ok && prev != id {
			t.Fatalf("collision between %q and %q", prev, id)
		}
		seen[p] = id
	}
}

func TestEncryptID_Empty(t *testing.T) {
	assert.Equal(t, types.UnknownID, EncryptID(""))
}
