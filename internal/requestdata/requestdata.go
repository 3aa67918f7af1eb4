package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var requestDataKey ctxKey

// Role values match the "role" claim minted by the identity provider.
const (
	RoleBLGU     = "blgu"
	RoleAssessor = "assessor"
	RoleMLGOO    = "mlgoo"
)

// RequestData is the verified identity of the caller, set by the auth
// middleware and read by services for authorization and audit fields.
type RequestData struct {
	UserID      uuid.UUID
	Role        string
	BarangayID  uuid.UUID
	Email       string
	FullName    string
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
