package token

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is the parent of every verification failure
var ErrInvalidToken = errors.New("invalid token")

var (
	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
)
