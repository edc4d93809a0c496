package main

import (
	"errors"
	"fmt"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

type userFlags struct {
	username string
	email    string
	password string
}

func (f *userFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "login name (generated when empty)")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.password, "password", "", "password (required)")
}

func (f *userFlags) input() (service.CreateUserInput, error) {
	if f.password == "" {
		return service.CreateUserInput{}, errors.New("--password is required")
	}
	return service.CreateUserInput{Username: f.username, Email: f.email, Password: f.password}, nil
}

var (
	superuserFlags  userFlags
	researcherFlags userFlags
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff superuser",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := superuserFlags.input()
		if err != nil {
			return err
		}
		in.IsStaff = true
		u, err := do.MustInvoke[service.UserService](container()).CreateSuperuser(cmd.Context(), in)
		if err != nil {
			return err
		}
		printUser(cmd, u)
		return nil
	},
}

var createResearcherCmd = &cobra.Command{
	Use:   "createresearcher",
	Short: "Create a user in the Researchers group",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := researcherFlags.input()
		if err != nil {
			return err
		}
		u, err := do.MustInvoke[service.UserService](container()).CreateResearcher(cmd.Context(), in)
		if err != nil {
			return err
		}
		printUser(cmd, u)
		return nil
	},
}

func init() {
	superuserFlags.bind(createSuperuserCmd)
	researcherFlags.bind(createResearcherCmd)
}

func printUser(cmd *cobra.Command, u *model.EmailUser) {
	fmt.Fprintf(cmd.OutOrStdout(), "created user %d %s groups=%v\n", u.ID, u.FullName(), u.GroupNames())
}
