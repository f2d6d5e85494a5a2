package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Gorstka/Yatube/internal/audit"
	"github.com/Gorstka/Yatube/internal/cache"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/pkg/jwt"
	pkglog "github.com/Gorstka/Yatube/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.migrate()
	},
}

// Groups

var (
	groupSlug        string
	groupDescription string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a group; the slug is derived from the title unless --slug is set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		group, err := service.NewGroupService(a.repos.Groups).CreateGroup(a.ctx(), &domain.CreateGroupRequest{
			Title:       args[0],
			Slug:        groupSlug,
			Description: groupDescription,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created group %q (/group/%s/)\n", group.Title, group.Slug)
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a group; its posts are kept without a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := service.NewGroupService(a.repos.Groups).DeleteGroup(a.ctx(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", args[0])
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		groups, err := service.NewGroupService(a.repos.Groups).ListGroups(a.ctx())
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.Slug, g.Title)
		}
		return nil
	},
}

// Users

var (
	userPassword string
	userEmail    string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

func userService(a *app) (service.UserService, error) {
	ctx := a.ctx()
	images, err := a.images(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := jwt.NewManager(a.cfg.Auth.Secret, a.cfg.Auth.SessionTTL, a.cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	return service.NewUserService(a.repos.Users, images, tokens, a.cfg.Auth.BcryptCost), nil
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		users, err := userService(a)
		if err != nil {
			return err
		}
		user, err := users.Signup(a.ctx(), &domain.SignupForm{
			Username: args[0],
			Email:    userEmail,
			Password: userPassword,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user with their posts, comments and follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		users, err := userService(a)
		if err != nil {
			return err
		}
		if err := users.DeleteUser(a.ctx(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
		return nil
	},
}

// Posts

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage posts",
}

// importedPost is one entry of a post import file.
type importedPost struct {
	Author string `json:"author"`
	Group  string `json:"group"`
	Text   string `json:"text"`
}

func postService(a *app) (service.PostService, error) {
	images, err := a.images(a.ctx())
	if err != nil {
		return nil, err
	}
	return service.NewPostService(a.repos, images, service.NewEventPublisher(nil, nil), a.cfg.Feed.PageSize), nil
}

var postImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Bulk create posts from a JSON array of {author, group, text}",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var entries []importedPost
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		posts, err := resolveImport(a, entries)
		if err != nil {
			return err
		}
		svc, err := postService(a)
		if err != nil {
			return err
		}
		if err := svc.BulkCreate(a.ctx(), posts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", len(posts))
		return nil
	},
}

func resolveImport(a *app, entries []importedPost) ([]*domain.Post, error) {
	ctx := a.ctx()
	authors := map[string]uint{}
	groups := map[string]uint{}

	posts := make([]*domain.Post, 0, len(entries))
	for i, e := range entries {
		if e.Text == "" {
			return nil, fmt.Errorf("entry %d: empty text", i)
		}

		authorID, ok := authors[e.Author]
		if !ok {
			u, err := a.repos.Users.GetByUsername(ctx, e.Author)
			if err != nil {
				return nil, fmt.Errorf("entry %d: author %q: %w", i, e.Author, err)
			}
			authorID = u.ID
			authors[e.Author] = authorID
		}
		post := &domain.Post{Text: e.Text, AuthorID: authorID}

		if e.Group != "" {
			groupID, ok := groups[e.Group]
			if !ok {
				g, err := a.repos.Groups.GetBySlug(ctx, e.Group)
				if err != nil {
					return nil, fmt.Errorf("entry %d: group %q: %w", i, e.Group, err)
				}
				groupID = g.ID
				groups[e.Group] = groupID
			}
			post.GroupID = &groupID
		}
		posts = append(posts, post)
	}
	return posts, nil
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post with its comments and image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := postService(a)
		if err != nil {
			return err
		}
		if err := svc.DeletePost(a.ctx(), uint(id)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted post %d\n", id)
		return nil
	},
}

// Cache

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached page under the configured prefix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Cache.Driver != "redis" {
			return errors.New("cache clear needs cache.driver=redis; the memory cache lives inside the server process")
		}

		pages, err := cache.NewRedisPageCache(cfg.Redis)
		if err != nil {
			return err
		}
		defer pages.Close()

		pkglog.Init(cfg.Log)
		ctx := pkglog.WithLogger(context.Background(), pkglog.L())
		n, err := pages.Clear(ctx, cfg.Cache.Prefix)
		if err != nil {
			return err
		}
		audit.LogWithDetail(ctx, audit.ActionClearPageCache, 0, cfg.Cache.Prefix, "page cache cleared")
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached pages\n", n)
		return nil
	},
}

func init() {
	groupCreateCmd.Flags().StringVar(&groupSlug, "slug", "", "explicit slug")
	groupCreateCmd.Flags().StringVar(&groupDescription, "description", "", "group description")
	groupCmd.AddCommand(groupCreateCmd, groupDeleteCmd, groupListCmd)

	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (at least 8 characters)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd, userDeleteCmd)

	postCmd.AddCommand(postImportCmd, postDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
