package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Fixtures is the seed file layout. Later sections refer to earlier
// entries by username or title.
type Fixtures struct {
	Users []struct {
		Username   string `yaml:"username"`
		Email      string `yaml:"email"`
		Password   string `yaml:"password"`
		Researcher bool   `yaml:"researcher"`
	} `yaml:"users"`
	ValueTypes []struct {
		Owner    string `yaml:"owner"`
		Title    string `yaml:"title"`
		AxisType int    `yaml:"axis_type"`
	} `yaml:"value_types"`
	Contents []struct {
		Owner string `yaml:"owner"`
		Title string `yaml:"title"`
		URL   string `yaml:"url"`
	} `yaml:"contents"`
	YouTube []struct {
		Owner   string `yaml:"owner"`
		VideoID string `yaml:"video_id"`
		Title   string `yaml:"title"`
	} `yaml:"youtube"`
	Questionaires []struct {
		URL        string `yaml:"url"`
		UserIDForm string `yaml:"user_id_form"`
	} `yaml:"questionaires"`
	Requests []struct {
		Owner        string   `yaml:"owner"`
		Title        string   `yaml:"title"`
		Description  string   `yaml:"description"`
		Intervals    int      `yaml:"intervals"`
		Content      string   `yaml:"content"`
		ValueType    string   `yaml:"value_type"`
		Participants []string `yaml:"participants"`
	} `yaml:"requests"`
}

func parseFixtures(b []byte) (*Fixtures, error) {
	f := &Fixtures{}
	if err := yaml.Unmarshal(b, f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for _, u := range f.Users {
		if u.Password == "" {
			return nil, fmt.Errorf("user %q has no password", u.Username)
		}
	}
	return f, nil
}

type seedServices struct {
	users      service.UserService
	valueTypes service.ValueTypeService
	contents   service.ContentService
	quests     service.QuestionaireService
	requests   service.RequestService
}

type seedResult struct {
	Users, ValueTypes, Contents, Questionaires, Requests, Participants int
}

func seed(ctx context.Context, s seedServices, f *Fixtures) (*seedResult, error) {
	res := &seedResult{}
	users := map[string]*model.EmailUser{}
	valueTypes := map[string]uint{}
	contents := map[string]uint{}

	owner := func(name string) (*model.EmailUser, error) {
		u, ok := users[name]
		if !ok {
			return nil, fmt.Errorf("unknown owner %q", name)
		}
		return u, nil
	}

	for _, fu := range f.Users {
		in := service.CreateUserInput{Username: fu.Username, Email: fu.Email, Password: fu.Password}
		create := s.users.CreateUser
		if fu.Researcher {
			create = s.users.CreateResearcher
		}
		u, err := create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("user %q: %w", fu.Username, err)
		}
		users[fu.Username] = u
		res.Users++
	}

	for _, fv := range f.ValueTypes {
		u, err := owner(fv.Owner)
		if err != nil {
			return res, err
		}
		vt, err := s.valueTypes.Create(ctx, u.ID, fv.Title, model.AxisType(fv.AxisType))
		if err != nil {
			return res, fmt.Errorf("value type %q: %w", fv.Title, err)
		}
		valueTypes[fv.Title] = vt.ID
		res.ValueTypes++
	}

	for _, fc := range f.Contents {
		u, err := owner(fc.Owner)
		if err != nil {
			return res, err
		}
		c, err := s.contents.Create(ctx, u.ID, service.CreateContentInput{Title: fc.Title, URL: fc.URL})
		if err != nil {
			return res, fmt.Errorf("content %q: %w", fc.Title, err)
		}
		contents[fc.Title] = c.ID
		res.Contents++
	}

	for _, fy := range f.YouTube {
		u, err := owner(fy.Owner)
		if err != nil {
			return res, err
		}
		yt, _, err := s.contents.CreateYouTube(ctx, u.ID, service.CreateYouTubeInput{VideoID: fy.VideoID, Title: fy.Title})
		if err != nil {
			return res, fmt.Errorf("youtube %q: %w", fy.VideoID, err)
		}
		if yt.Content.Title != "" {
			contents[yt.Content.Title] = yt.ContentID
		}
		contents[fy.VideoID] = yt.ContentID
		res.Contents++
	}

	for _, fq := range f.Questionaires {
		if _, err := s.quests.Create(ctx, fq.URL, fq.UserIDForm); err != nil {
			return res, fmt.Errorf("questionaire %q: %w", fq.URL, err)
		}
		res.Questionaires++
	}

	for _, fr := range f.Requests {
		u, err := owner(fr.Owner)
		if err != nil {
			return res, err
		}
		contentID, ok := contents[fr.Content]
		if !ok {
			return res, fmt.Errorf("request %q: unknown content %q", fr.Title, fr.Content)
		}
		valueTypeID, ok := valueTypes[fr.ValueType]
		if !ok {
			return res, fmt.Errorf("request %q: unknown value type %q", fr.Title, fr.ValueType)
		}
		r, err := s.requests.Create(ctx, u, service.CreateRequestInput{
			Title:       fr.Title,
			Description: fr.Description,
			Intervals:   fr.Intervals,
			ContentID:   contentID,
			ValueTypeID: valueTypeID,
		})
		if err != nil {
			return res, fmt.Errorf("request %q: %w", fr.Title, err)
		}
		res.Requests++

		ids := make([]uint, 0, len(fr.Participants))
		for _, name := range fr.Participants {
			p, err := owner(name)
			if err != nil {
				return res, err
			}
			ids = append(ids, p.ID)
		}
		if len(ids) > 0 {
			n, err := s.requests.AddParticipants(ctx, u, r.ID, ids)
			if err != nil {
				return res, fmt.Errorf("request %q participants: %w", fr.Title, err)
			}
			res.Participants += int(n)
		}
	}
	return res, nil
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users, contents, value types and requests from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFile == "" {
			return errors.New("--file is required")
		}
		b, err := os.ReadFile(seedFile)
		if err != nil {
			return err
		}
		f, err := parseFixtures(b)
		if err != nil {
			return err
		}

		i := container()
		res, err := seed(cmd.Context(), seedServices{
			users:      do.MustInvoke[service.UserService](i),
			valueTypes: do.MustInvoke[service.ValueTypeService](i),
			contents:   do.MustInvoke[service.ContentService](i),
			quests:     do.MustInvoke[service.QuestionaireService](i),
			requests:   do.MustInvoke[service.RequestService](i),
		}, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %+v\n", *res)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "fixtures YAML file")
}
