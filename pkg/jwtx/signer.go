package jwtx

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HMACSigner signs claims with a fixed shared secret.
type HMACSigner struct {
	secret []byte
	alg    string
}

// NewSignerHMAC creates a signer bound to secret and one of the HS* algorithms.
func NewSignerHMAC(secret []byte, alg string) (*HMACSigner, error) {
	method, err := ResolveAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	// Keep our own copy, callers may reuse their buffer.
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HMACSigner{secret: key, alg: method.Alg()}, nil
}

func (s *HMACSigner) Alg() string { return s.alg }

// Sign turns claims into a signed compact token.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	return Encode(claims, s.secret, s.alg)
}
