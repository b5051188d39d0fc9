package notification

import (
	"context"

	"github.com/fkhayef/plantswap/internal/api"
)

// Titles and descriptions for remote failures.
const (
	TitleUnauthorized = "Unauthorized"
	TitleForbidden    = "Forbidden"
	TitleNotFound     = "Not Found"
	TitleConflict     = "Conflict"
	TitleSelfTrade    = "Cannot Trade With Yourself"

	DescUnauthorized = "You need to be logged in to perform this action"
	DescForbidden    = "You do not have permission for this action"
	DescNotFound     = "The requested resource was not found"
	DescConflict     = "Trade request already exists"
	DescSelfTrade    = "Cannot trade with yourself"
	DescUnexpected   = "An unexpected error occurred"
)

// FromError converts a failed remote call into exactly one error
// notification. fallbackTitle is used for failures outside the known kinds.
func FromError(err error, fallbackTitle string) Notification {
	apiErr := api.AsError(err)
	if apiErr == nil {
		return Error(fallbackTitle, DescUnexpected)
	}

	switch apiErr.Kind {
	case api.KindUnauthorized:
		return Error(TitleUnauthorized, DescUnauthorized)
	case api.KindForbidden:
		return Error(TitleForbidden, DescForbidden)
	case api.KindNotFound:
		return Error(TitleNotFound, DescNotFound)
	case api.KindConflict:
		return Error(TitleConflict, DescConflict)
	case api.KindSelfTrade:
		return Error(TitleSelfTrade, DescSelfTrade)
	case api.KindOther:
		fallthrough
	default:
		desc := apiErr.Detail
		if desc == "" {
			desc = DescUnexpected
		}
		return Error(fallbackTitle, desc)
	}
}

// EmitError emits FromError(err, fallbackTitle) into ctx.
func EmitError(ctx context.Context, err error, fallbackTitle string) {
	Emit(ctx, FromError(err, fallbackTitle))
}
