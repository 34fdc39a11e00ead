package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeChallenge(t *testing.T) {
	// Known S256 pair from the PKCE specification.
	const (
		verifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
		challenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	)
	require.Equal(t, challenge, generateCodeChallenge(verifier))
}

func TestGenerateStateToken(t *testing.T) {
	state := generateStateToken()
	require.Len(t, state, 32)
	require.Regexp(t, "^[0-9a-f]+$", state)
	require.NotEqual(t, state, generateStateToken())
}

func TestGenerateCodeVerifier(t *testing.T) {
	verifier := generateCodeVerifier()
	require.Len(t, verifier, 43)
	require.Regexp(t, "^[A-Za-z0-9_-]+$", verifier)
	require.NotEqual(t, verifier, generateCodeVerifier())
}

func TestGenerateSessionID(t *testing.T) {
	id := generateSessionID()
	require.Len(t, id, 43)
	require.NotEqual(t, id, generateSessionID())
}
