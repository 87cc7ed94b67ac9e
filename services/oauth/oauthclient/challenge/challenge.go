package challenge

import (
	"golang.org/x/oauth2"
)

//go:generate mockgen -source=challenge.go -package challenge -destination random_stringer_mock.go RandomStringer
type RandomStringer interface {
	Create() string
}

type randomStringer struct {
}

func NewRandomStringer() RandomStringer {
	return &randomStringer{}
}

// Create returns 32 random octets, base64url encoded without padding.
func (s randomStringer) Create() string {
	return oauth2.GenerateVerifier()
}
