// Package auth implements the storage system's authentication core: RSA
// key-pair lifecycle management, RS256 token signing and verification, and
// parsing of bearer Authorization header values.
//
// The package is organized around four pieces. KeyStore loads, generates and
// persists 2048-bit RSA key pairs as raw DER files (X.509 SubjectPublicKeyInfo
// for the public half, PKCS#8 for the private half). SignToken and VerifyToken
// encode and decode signed claims, rejecting tokens whose header declares any
// algorithm other than RS256. ExtractBearer parses "Bearer {token}" header
// values. Service composes the three behind Authenticate and Issue, holding
// the key pair immutably with an explicit reload hook for rotation.
//
// Every failure is a distinct, inspectable error value so that the transport
// layer can map client faults (missing or malformed bearer, rejected token)
// and server faults (unloadable or unusable key material) onto different
// responses. See VerificationError and the Err* sentinels.
package auth
