package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/migrate"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/service"
	"github.com/and161185/inkwell/internal/view"
	"github.com/gofrs/uuid/v5"
	"github.com/spf13/pflag"
)

type handler func(ctx context.Context, a *app, args []string) error

// routes maps each screen to a command.
var routes = map[string]handler{
	"home":       cmdHome,
	"post":       cmdPost,
	"categories": cmdCategories,
	"category":   cmdCategory,
	"login":      cmdLogin,
	"register":   cmdRegister,
	"logout":     cmdLogout,
	"whoami":     cmdWhoami,
	"profile":    cmdProfile,
	"create":     cmdCreate,
	"edit":       cmdEdit,
	"delete":     cmdDelete,
	"uncomment":  cmdUncomment,
	"migrate":    nil, // handled before the app is built
}

func flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr("%s: %v", fs.Name(), err)
	}
	return nil
}

// requireUser guards the routes that need a signed-in user.
func requireUser(a *app) (*model.SessionUser, error) {
	u := a.session.User()
	if u == nil {
		return nil, errs.ErrNoSession
	}
	return u, nil
}

func parseID(args []string, what string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, usageErr("expected one %s id", what)
	}
	id, err := uuid.FromString(args[0])
	if err != nil {
		return uuid.Nil, usageErr("invalid %s id %q", what, args[0])
	}
	return id, nil
}

func cmdHome(ctx context.Context, a *app, _ []string) error {
	data, err := view.LoadHome(ctx, a.posts, a.categories, a.log)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	a.screens.Home(data.Posts, data.Categories)
	return nil
}

// redirectHome shows msg followed by the home screen.
func redirectHome(ctx context.Context, a *app, msg string) error {
	a.screens.Warn(msg)
	return cmdHome(ctx, a, nil)
}

func cmdPost(ctx context.Context, a *app, args []string) error {
	fs := flags("post")
	comment := fs.String("comment", "", "add a comment before showing the post")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseID(fs.Args(), "post")
	if err != nil {
		return err
	}
	if fs.Changed("comment") {
		u, err := requireUser(a)
		if err != nil {
			return err
		}
		if _, err := a.comments.Add(ctx, u, id, *comment); err != nil {
			return err
		}
		a.screens.Notice("Comment posted.")
	}

	p, err := a.posts.View(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return redirectHome(ctx, a, "Post not found.")
	}
	if err != nil {
		return err
	}
	cs, err := a.comments.List(ctx, id)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	a.screens.PostDetail(p, cs, a.session.User())
	return nil
}

func cmdCategories(ctx context.Context, a *app, _ []string) error {
	cs, err := a.categories.ListWithCounts(ctx)
	if err != nil {
		return err
	}
	a.screens.Categories(cs)
	return nil
}

func cmdCategory(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 && args[0] == "add" {
		return cmdCategoryAdd(ctx, a, args[1:])
	}
	if len(args) != 1 {
		return usageErr("expected one category slug")
	}
	c, posts, err := a.posts.ListByCategorySlug(ctx, args[0])
	if errors.Is(err, errs.ErrNotFound) {
		a.screens.Warn(fmt.Sprintf("Category %q does not exist.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}
	a.screens.CategoryDetail(c, posts)
	return nil
}

func cmdCategoryAdd(ctx context.Context, a *app, args []string) error {
	fs := flags("category add")
	name := fs.String("name", "", "category name")
	slug := fs.String("slug", "", "URL slug (derived from the name when empty)")
	desc := fs.String("description", "", "short description")
	if err := parse(fs, args); err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	c, err := a.categories.Create(ctx, u, *name, *slug, *desc)
	if err != nil {
		return err
	}
	a.screens.Notice(fmt.Sprintf("Category %s created (%s).", c.Name, c.Slug))
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flags("login")
	email := fs.String("email", "", "account email")
	pwFile := fs.String("password-file", "", "read the password from a file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return usageErr("login: --email is required")
	}
	pw, err := readPassword(*pwFile, a.in, os.Stderr)
	if err != nil {
		return err
	}
	if _, err := a.session.SignIn(ctx, *email, pw); err != nil {
		return err
	}
	a.screens.Notice("Signed in as " + a.session.User().Email + ".")
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flags("register")
	email := fs.String("email", "", "account email")
	pwFile := fs.String("password-file", "", "read the password from a file")
	username := fs.String("username", "", "public username")
	fullName := fs.String("full-name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return usageErr("register: --email is required")
	}
	pw, err := readPassword(*pwFile, a.in, os.Stderr)
	if err != nil {
		return err
	}
	u, err := a.session.SignUp(ctx, *email, pw, model.UserMetadata{Username: *username, FullName: *fullName})
	if errors.Is(err, errs.ErrAlreadyExists) {
		return fmt.Errorf("%w: that email is already registered", errs.ErrValidation)
	}
	if err != nil {
		return err
	}
	a.screens.Notice("Account created for " + u.Email + ". Sign in with: inkwell login --email " + u.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	a.screens.Notice("Signed out.")
	return nil
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	u := a.session.User()
	if u == nil {
		a.screens.Notice("Not signed in.")
		return nil
	}
	a.screens.Notice(fmt.Sprintf("%s (%s)", u.Email, u.ID))
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 && args[0] == "edit" {
		return cmdProfileEdit(ctx, a, args[1:])
	}
	fs := flags("profile")
	tab := fs.String("tab", string(view.TabPublished), "which posts to list: published, draft or all")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !view.ProfileTab(*tab).Valid() {
		return usageErr("profile: unknown tab %q", *tab)
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	p, err := a.profiles.Get(ctx, u)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	posts, err := a.posts.ListByAuthor(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	a.screens.Profile(u, p, posts, view.ProfileTab(*tab))
	return nil
}

func cmdProfileEdit(ctx context.Context, a *app, args []string) error {
	fs := flags("profile edit")
	fullName := fs.String("full-name", "", "display name")
	username := fs.String("username", "", "public username")
	avatar := fs.String("avatar-url", "", "avatar image URL")
	bio := fs.String("bio", "", "short bio")
	if err := parse(fs, args); err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	var patch model.ProfilePatch
	set := func(name string, v *string, dst **string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("full-name", fullName, &patch.FullName)
	set("username", username, &patch.Username)
	set("avatar-url", avatar, &patch.AvatarURL)
	set("bio", bio, &patch.Bio)
	if patch == (model.ProfilePatch{}) {
		return usageErr("profile edit: nothing to change")
	}
	if _, err := a.profiles.Update(ctx, u, patch); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return fmt.Errorf("%w: username is taken", errs.ErrValidation)
		}
		return err
	}
	a.screens.Notice("Profile updated.")
	return nil
}

type postFlags struct {
	fs                                            *pflag.FlagSet
	title, content, file, excerpt, slug, category *string
	publish, draft                                *bool
}

func newPostFlags(name string) *postFlags {
	fs := flags(name)
	return &postFlags{
		fs:       fs,
		title:    fs.String("title", "", "post title"),
		content:  fs.String("content", "", "markdown body"),
		file:     fs.String("file", "", "read the markdown body from a file ('-' = stdin)"),
		excerpt:  fs.String("excerpt", "", "short summary shown in lists"),
		slug:     fs.String("slug", "", "URL slug (derived from the title when empty)"),
		category: fs.String("category", "", "category slug"),
		publish:  fs.Bool("publish", false, "publish instead of saving a draft"),
		draft:    fs.Bool("draft", false, "save as draft"),
	}
}

func (pf *postFlags) status(current model.PostStatus) (model.PostStatus, error) {
	switch {
	case *pf.publish && *pf.draft:
		return "", usageErr("use either --publish or --draft")
	case *pf.publish:
		return model.StatusPublished, nil
	case *pf.draft:
		return model.StatusDraft, nil
	}
	return current, nil
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	pf := newPostFlags("create")
	if err := parse(pf.fs, args); err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	body, _, err := readContent(*pf.content, *pf.file, a.in)
	if err != nil {
		return err
	}
	st, err := pf.status(model.StatusDraft)
	if err != nil {
		return err
	}
	p, err := a.posts.Create(ctx, u, service.PostForm{
		Title:        *pf.title,
		Slug:         *pf.slug,
		Excerpt:      *pf.excerpt,
		Content:      body,
		Status:       st,
		CategorySlug: *pf.category,
	})
	if err != nil {
		return err
	}
	if p.Status == model.StatusPublished {
		a.screens.Notice("Published " + p.ID.String() + ".")
		return cmdHome(ctx, a, nil)
	}
	a.screens.Notice("Draft saved " + p.ID.String() + ".")
	return cmdProfile(ctx, a, []string{"--tab", string(view.TabDraft)})
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	pf := newPostFlags("edit")
	if err := parse(pf.fs, args); err != nil {
		return err
	}
	id, err := parseID(pf.fs.Args(), "post")
	if err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	cur, err := a.posts.GetForEdit(ctx, u, id)
	if errors.Is(err, errs.ErrForbidden) {
		return redirectHome(ctx, a, "You can only edit your own posts.")
	}
	if err != nil {
		return err
	}

	form := formFromPost(cur)
	if pf.fs.Changed("title") {
		form.Title = *pf.title
		if !pf.fs.Changed("slug") {
			form.Slug = ""
		}
	}
	if pf.fs.Changed("slug") {
		form.Slug = *pf.slug
	}
	if pf.fs.Changed("excerpt") {
		form.Excerpt = *pf.excerpt
	}
	if pf.fs.Changed("category") {
		form.CategorySlug = *pf.category
	}
	if body, ok, err := readContent(*pf.content, *pf.file, a.in); err != nil {
		return err
	} else if ok {
		form.Content = body
	}
	if form.Status, err = pf.status(cur.Status); err != nil {
		return err
	}

	p, err := a.posts.Update(ctx, u, id, form)
	if errors.Is(err, errs.ErrForbidden) {
		return redirectHome(ctx, a, "You can only edit your own posts.")
	}
	if err != nil {
		return err
	}
	a.screens.Notice("Post updated.")
	return cmdPost(ctx, a, []string{p.ID.String()})
}

// formFromPost pre-fills the edit form from the stored post.
func formFromPost(p *model.Post) service.PostForm {
	f := service.PostForm{
		Title:   p.Title,
		Slug:    p.Slug,
		Content: p.Content,
		Status:  p.Status,
	}
	if p.Excerpt != nil {
		f.Excerpt = *p.Excerpt
	}
	if p.Category != nil {
		f.CategorySlug = p.Category.Slug
	}
	return f
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, "post")
	if err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	err = a.posts.Delete(ctx, u, id)
	if errors.Is(err, errs.ErrForbidden) {
		return redirectHome(ctx, a, "You can only delete your own posts.")
	}
	if err != nil {
		return err
	}
	a.screens.Notice("Post deleted.")
	return nil
}

func cmdUncomment(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, "comment")
	if err != nil {
		return err
	}
	u, err := requireUser(a)
	if err != nil {
		return err
	}
	if err := a.comments.Delete(ctx, u, id); err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			a.screens.Warn("You can only delete your own comments.")
			return nil
		}
		return err
	}
	a.screens.Notice("Comment deleted.")
	return nil
}

func runMigrate(ctx context.Context, dsn string, args []string, out io.Writer) error {
	sub := "up"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "up":
		if err := migrate.Up(ctx, dsn); err != nil {
			return err
		}
	case "down":
		if err := migrate.Down(ctx, dsn); err != nil {
			return err
		}
	case "status":
	default:
		return usageErr("migrate: unknown subcommand %q", sub)
	}
	v, err := migrate.Version(ctx, dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d\n", v)
	return nil
}
