package server

import (
	"context"
	"errors"

	"game-deals/internal/domain"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

func toConnectError(ctx context.Context, procedure string, err error) error {
	code := connect.CodeInternal
	switch {
	case domain.IsNotFoundError(err):
		code = connect.CodeNotFound
	case domain.IsInvalidArgument(err):
		code = connect.CodeInvalidArgument
	case errors.Is(err, domain.ErrServiceUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}

	event := zerolog.Ctx(ctx).Warn()
	if code == connect.CodeInternal {
		event = zerolog.Ctx(ctx).Error()
	}
	event.Err(err).Str("procedure", procedure).Str("code", code.String()).Msg("request failed")

	return connect.NewError(code, err)
}
