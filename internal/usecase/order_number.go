package usecase

import (
	"crypto/rand"
	"math/big"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ORD-YYYYMMDD-XXXXX（日付はUTC）
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 5)
	alphabetLen := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return "ORD-" + now.UTC().Format("20060102") + "-" + string(suffix), nil
}
