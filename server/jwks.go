package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// handleJWKS publishes the current verification key as a JWK set so that
// other services can verify issued tokens without sharing key files.
func (s *Server) handleJWKS(c *gin.Context) {
	key, err := jwk.FromRaw(s.auth.PublicKey())
	if err != nil {
		s.logger.Errorf("could not build JWK from public key: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not encode verification key."})
		return
	}

	_ = key.Set(jwk.AlgorithmKey, jwa.RS256)
	_ = key.Set(jwk.KeyUsageKey, jwk.ForSignature)

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not encode verification key."})
		return
	}

	c.JSON(http.StatusOK, set)
}
