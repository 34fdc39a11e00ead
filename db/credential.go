package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/dukwonit/farm-admin-server/internal/config"
)

// aadScope is the Entra resource scope for Azure Database for PostgreSQL.
const aadScope = "https://ossrdbms-aad.database.windows.net/.default"

// Token is a bearer credential for the database, with its absolute expiry.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// TokenSource produces a fresh database credential on demand. It performs no
// caching of its own; the pool owns freshness.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}

type entraTokenSource struct {
	cred azcore.TokenCredential
}

// NewEntraTokenSource builds a token source for the credential variant chosen
// at startup. Deliberately not DefaultAzureCredential: the chain mixes CLI,
// VS Code and env principals on developer machines, and the wrong principal
// only surfaces later as an authorization mismatch at the database.
func NewEntraTokenSource(source config.CredentialSource) (TokenSource, error) {
	var (
		cred azcore.TokenCredential
		err  error
	)
	switch source {
	case config.CredentialManagedIdentity:
		cred, err = azidentity.NewManagedIdentityCredential(nil)
	default:
		cred, err = azidentity.NewAzureCLICredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("db.NewEntraTokenSource (%s): %w", source, err)
	}
	return &entraTokenSource{cred: cred}, nil
}

func (s *entraTokenSource) Token(ctx context.Context) (Token, error) {
	tk, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{aadScope}})
	if err != nil {
		return Token{}, fmt.Errorf("acquire AAD token for PostgreSQL: %w", err)
	}
	return Token{Value: tk.Token, ExpiresOn: tk.ExpiresOn}, nil
}
