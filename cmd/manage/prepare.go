package main

import (
	"fmt"

	"github.com/emonotate/emonotate/internal/bootstrap"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Migrate the schema and create the predefined groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		i := container()
		db := do.MustInvoke[*gorm.DB](i)
		if err := db.WithContext(cmd.Context()).AutoMigrate(model.All()...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := bootstrap.EnsureGroupsExist(cmd.Context(), do.MustInvoke[repo.UserRepo](i), do.MustInvoke[*zap.Logger](i)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "groups ready: %v\n", model.PredefinedGroups)
		return nil
	},
}
