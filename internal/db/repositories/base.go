package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/realtime"
)

// ChangePublisher receives a Change after every committed write.
// Every realtime.Feed satisfies it.
type ChangePublisher interface {
	Publish(ctx context.Context, c realtime.Change) error
}

// base carries what every repository shares: the store handle and the
// change feed.
type base struct {
	db      *gorm.DB
	changes ChangePublisher
}

// emit publishes a committed row change. The write already succeeded, so
// feed failures are logged and dropped.
func (b base) emit(ctx context.Context, table constants.Table, typ realtime.EventType, newRow, oldRow any) {
	if b.changes == nil {
		return
	}
	c, err := realtime.NewChange(table, typ, newRow, oldRow)
	if err != nil {
		logging.Warn("Failed to build change event", "table", table.String(), "error", err.Error())
		return
	}
	if err := b.changes.Publish(context.WithoutCancel(ctx), c); err != nil {
		logging.Warn("Failed to publish change event", "table", table.String(), "type", string(typ), "error", err.Error())
	}
}

// currentUser returns the authenticated caller
func currentUser(ctx context.Context) (auth.UserClaims, error) {
	claims := auth.GetUserClaims(ctx)
	if claims == nil {
		return nil, apperrors.New(constants.ErrCodeUnauthenticated, nil)
	}
	return claims, nil
}

// authorize is the store-side policy check. It runs before every write
// whatever the HTTP layer already decided.
func authorize(ctx context.Context, action auth.Action) (auth.UserClaims, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.HasPermission(action) {
		return nil, apperrors.PermissionDenied("role %s may not perform %s", claims.Role(), action)
	}
	return claims, nil
}

// storeError maps a GORM failure onto the error taxonomy. Typed errors
// raised inside a transaction pass through untouched.
func storeError(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.New(constants.ErrCodeConstraintViolation, err)
	}
	return apperrors.Backend(fmt.Errorf("failed to %s %s: %w", op, entity, err))
}
