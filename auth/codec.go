package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is the set of assertions carried by a token, keyed by claim name.
// Values are whatever the issuing caller supplied, decoded from JSON.
type Claims map[string]any

// signingAlgorithm is the only algorithm tokens are ever signed or verified
// with. Tokens declaring any other algorithm in their header are rejected
// outright: accepting the header's word for the algorithm is a well-known
// signature bypass.
const signingAlgorithm = jwa.RS256

// SignToken builds a compact RS256 token whose registered issuer claim is
// issuer and whose body carries claims, signed with the pair's private key.
// A caller-supplied "iss" claim is overridden by issuer.
func SignToken(claims Claims, issuer string, pair *KeyPair) (string, error) {
	builder := jwt.NewBuilder()
	for name, value := range claims {
		builder = builder.Claim(name, value)
	}
	builder = builder.Issuer(issuer)

	token, err := builder.Build()
	if err != nil {
		return "", &SigningError{Err: err}
	}

	signed, err := jwt.Sign(token, jwt.WithKey(signingAlgorithm, pair.Private))
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return string(signed), nil
}

// VerifyToken checks the signature of token against the pair's public key
// and its issuer claim against issuer (exact, case-sensitive). It returns
// the full claims map only when every check passes, and a *VerificationError
// naming the first failed check otherwise.
//
// VerifyToken is a pure function of its inputs: it never mutates the token,
// and a token stays verifiable until it is cryptographically or temporally
// invalid.
func VerifyToken(token, issuer string, pair *KeyPair) (Claims, error) {
	message, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, &VerificationError{
			Code:    CodeMalformed,
			Message: "could not parse token",
			Details: err,
		}
	}

	signatures := message.Signatures()
	if len(signatures) != 1 {
		return nil, &VerificationError{
			Code:    CodeMalformed,
			Message: fmt.Sprintf("expected exactly one signature, token has %d", len(signatures)),
		}
	}

	if alg := signatures[0].ProtectedHeaders().Algorithm(); alg != signingAlgorithm {
		return nil, &VerificationError{
			Code:    CodeInvalidAlgorithm,
			Message: fmt.Sprintf("expected %q signing algorithm but token specified %q", signingAlgorithm, alg),
		}
	}

	payload, err := jws.Verify([]byte(token), jws.WithKey(signingAlgorithm, pair.Public))
	if err != nil {
		return nil, &VerificationError{
			Code:    CodeBadSignature,
			Message: "token signature could not be verified",
			Details: err,
		}
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &VerificationError{
			Code:    CodeMalformed,
			Message: "token payload is not a claims object",
			Details: err,
		}
	}

	// Signature already checked above; this parse only builds the token view
	// used for temporal claim validation.
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return nil, &VerificationError{
			Code:    CodeMalformed,
			Message: "token claims could not be interpreted",
			Details: err,
		}
	}

	if err := jwt.Validate(parsed); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, &VerificationError{
				Code:    CodeExpired,
				Message: "token has expired",
				Details: err,
			}
		}
		return nil, &VerificationError{
			Code:    CodeMalformed,
			Message: "token claims failed validation",
			Details: err,
		}
	}

	if tokenIssuer, _ := claims["iss"].(string); tokenIssuer != issuer {
		return nil, &VerificationError{
			Code:    CodeIssuerMismatch,
			Message: fmt.Sprintf("token issuer %q does not match expected issuer", tokenIssuer),
		}
	}

	return claims, nil
}
