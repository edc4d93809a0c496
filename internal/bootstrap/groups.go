package bootstrap

import (
	"context"
	"fmt"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"go.uber.org/zap"
)

// EnsureGroupsExist creates every predefined group that is missing.
func EnsureGroupsExist(ctx context.Context, users repo.UserRepo, log *zap.Logger) error {
	for _, name := range model.PredefinedGroups {
		g, err := users.EnsureGroup(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure group %s: %w", name, err)
		}
		log.Sugar().Debugw("group ready", "group", g.Name, "id", g.ID)
	}
	return nil
}
