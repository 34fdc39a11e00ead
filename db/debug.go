package db

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// logTokenIdentity logs the identity fields of the AAD token so a wrong
// principal (CLI vs managed identity) can be spotted quickly. Opt-in via
// PG_DEBUG_TOKEN; the token itself is never logged. Signature verification is
// intentionally skipped: the token was just issued to us and is only being
// inspected, not trusted.
func logTokenIdentity(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		log.Debug().Msg("AAD token payload decode failed")
		return
	}

	upn, _ := claims["upn"].(string)
	if upn == "" {
		upn, _ = claims["preferred_username"].(string)
	}
	oid, _ := claims["oid"].(string)
	tid, _ := claims["tid"].(string)
	appid, _ := claims["appid"].(string)

	log.Debug().
		Str("oid", oid).
		Str("upn", upn).
		Str("tid", tid).
		Str("appid", appid).
		Msg("AAD token identity")
}
