package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotMember       = errors.New("not a member of this group")
	ErrNotCreator      = errors.New("only the group creator can do this")
)

// toConnectError maps domain errors to Connect codes. Errors that are already
// *connect.Error pass through unchanged.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		return connect.CodeAlreadyExists
	case errors.Is(err, storage.ErrStaleLedger):
		return connect.CodeAborted
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotCreator):
		return connect.CodePermissionDenied
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.CodeUnauthenticated
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, calculator.ErrShareMismatch),
		errors.Is(err, calculator.ErrInvalidSplitType),
		errors.Is(err, calculator.ErrInvalidExpense),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return connect.CodeInvalidArgument
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		// Includes calculator.ErrUnbalancedLedger, which signals corrupt data.
		return connect.CodeInternal
	}
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// groupForMember loads a group and checks that userID belongs to it.
func groupForMember(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		slog.Warn("Access denied to group", "group_id", groupID, "user_id", userID)
		return nil, ErrNotMember
	}
	return group, nil
}
