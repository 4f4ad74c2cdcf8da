package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewPatientToken returns a front-desk identifier of the form
// PAT-<unix millis>-<9 uppercase base36 chars>.
func NewPatientToken(now time.Time) string {
	return fmt.Sprintf("PAT-%d-%s", now.UnixMilli(), randomBase36(9))
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		buf[i] = base36[idx.Int64()]
	}
	return string(buf)
}
