package usecase

import (
	"crypto/rand"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const referenceSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newReferenceNumber generates a case reference of the form
// INV-YYYYMMDD-XXXX with a random uppercase alphanumeric suffix
func newReferenceNumber(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", goerr.Wrap(err, "failed to generate reference suffix")
	}
	for i, b := range buf {
		buf[i] = referenceSuffixChars[int(b)%len(referenceSuffixChars)]
	}
	return "INV-" + now.UTC().Format("20060102") + "-" + string(buf), nil
}
