package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gallery/internal/domain"
	"gallery/internal/domain/models"
	galleryModels "gallery/internal/domain/models/gallery"
	gallerySvc "gallery/internal/domain/services/gallery"

	"github.com/spf13/afero"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Navigator is the controller surface the shell drives.
type Navigator interface {
	gallerySvc.Gallery
	FolderAt(path galleryModels.Path) (*galleryModels.Folder, error)
}

// SessionManager is the session surface the shell drives.
type SessionManager interface {
	CurrentUser() *models.Identity
	SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error)
	SignOut(ctx context.Context) error
}

// Shell is an interactive session over one gallery controller.
type Shell struct {
	gallery       Navigator
	session       SessionManager
	fs            afero.Fs
	scanner       *bufio.Scanner
	out           io.Writer
	color         bool
	cascadeDelete bool
	logger        *slog.Logger
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithColor turns ANSI colors on or off.
func WithColor(on bool) ShellOption {
	return func(s *Shell) { s.color = on }
}

// WithFs sets the filesystem image files are read from.
func WithFs(fs afero.Fs) ShellOption {
	return func(s *Shell) { s.fs = fs }
}

// WithCascadeDelete makes rm delete subtrees without -r.
func WithCascadeDelete(on bool) ShellOption {
	return func(s *Shell) { s.cascadeDelete = on }
}

// NewShell creates a shell reading commands from in and writing to out.
func NewShell(gallery Navigator, session SessionManager, in io.Reader, out io.Writer, logger *slog.Logger, opts ...ShellOption) *Shell {
	s := &Shell{
		gallery: gallery,
		session: session,
		fs:      afero.NewOsFs(),
		scanner: bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type command struct {
	usage    string
	help     string
	needAuth bool
	run      func(s *Shell, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":   {usage: "help", help: "list commands", run: (*Shell).help},
		"login":  {usage: "login <email> <password>", help: "sign in and load the gallery", run: (*Shell).login},
		"logout": {usage: "logout", help: "sign out", run: (*Shell).logout},
		"whoami": {usage: "whoami", help: "show the signed-in user", run: (*Shell).whoami},
		"ls":     {usage: "ls", help: "list folders and artworks here", needAuth: true, run: (*Shell).ls},
		"cd":     {usage: "cd <name> | .. | /", help: "change folder", needAuth: true, run: (*Shell).cd},
		"pwd":    {usage: "pwd", help: "print the current folder", needAuth: true, run: (*Shell).pwd},
		"tree":   {usage: "tree", help: "print the whole gallery", needAuth: true, run: (*Shell).tree},
		"mkdir":  {usage: "mkdir <name>", help: "create a folder here", needAuth: true, run: (*Shell).mkdir},
		"mv":     {usage: "mv <name> <new name>", help: "rename a folder here", needAuth: true, run: (*Shell).mv},
		"rm":     {usage: "rm [-r] <name>", help: "delete a folder here (-r: with its contents)", needAuth: true, run: (*Shell).rm},
		"add":    {usage: "add <title> <file|url> [description]", help: "add an artwork here", needAuth: true, run: (*Shell).add},
		"edit":   {usage: "edit <id> title|description <value>", help: "change an artwork", needAuth: true, run: (*Shell).edit},
		"del":    {usage: "del <id>", help: "delete an artwork", needAuth: true, run: (*Shell).del},
		"reload": {usage: "reload", help: "reload the gallery from storage", needAuth: true, run: (*Shell).reload},
	}
}

// Run reads commands until EOF, "exit" or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Info("shell started")
	s.printf("%sGallery shell%s (type \"help\")\n", s.c(colorCyan), s.c(colorReset))

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.printf("%s%s%s> ", s.c(colorBlue), s.prompt(), s.c(colorReset))
		if !s.scanner.Scan() {
			s.printf("\n")
			return s.scanner.Err()
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			s.logger.Info("shell exiting")
			return nil
		}
		s.Exec(ctx, line)
	}
}

// Exec runs one command line and prints its result.
func (s *Shell) Exec(ctx context.Context, line string) {
	args, err := splitArgs(line)
	if err != nil {
		s.fail(err)
		return
	}
	if len(args) == 0 {
		return
	}

	cmd, ok := commands[args[0]]
	if !ok {
		s.printf("%sunknown command %q (type \"help\")%s\n", s.c(colorYellow), args[0], s.c(colorReset))
		return
	}
	if cmd.needAuth && s.session.CurrentUser() == nil {
		s.printf("%snot signed in; use login%s\n", s.c(colorYellow), s.c(colorReset))
		return
	}

	s.logger.Debug("shell command", "command", args[0], "args", len(args)-1)
	if err := cmd.run(s, ctx, args[1:]); err != nil {
		s.fail(err)
	}
}

func (s *Shell) prompt() string {
	if s.session.CurrentUser() == nil {
		return "gallery"
	}
	return "gallery:/" + s.gallery.CurrentPath().String()
}

// ============================================================================
// Session commands
// ============================================================================

func (s *Shell) help(_ context.Context, _ []string) error {
	names := []string{"login", "logout", "whoami", "ls", "cd", "pwd", "tree", "mkdir", "mv", "rm", "add", "edit", "del", "reload", "help"}
	for _, name := range names {
		cmd := commands[name]
		s.printf("  %-40s %s\n", cmd.usage, cmd.help)
	}
	s.printf("  %-40s %s\n", "exit", "leave the shell")
	return nil
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if current := s.session.CurrentUser(); current != nil {
		return fmt.Errorf("already signed in as %s; logout first", current.Email)
	}
	if len(args) != 2 {
		return usageError("login")
	}

	identity, err := s.session.SignIn(ctx, models.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	s.gallery.GoRoot()
	if err := s.gallery.Reload(ctx); err != nil {
		return err
	}

	s.ok("signed in as %s", identity.Email)
	return nil
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	if err := s.session.SignOut(ctx); err != nil {
		return err
	}
	s.gallery.GoRoot()
	s.ok("signed out")
	return nil
}

func (s *Shell) whoami(_ context.Context, _ []string) error {
	identity := s.session.CurrentUser()
	if identity == nil {
		s.printf("not signed in\n")
		return nil
	}
	s.printf("%s (%s)\n", identity.Email, identity.UserID)
	return nil
}

// ============================================================================
// Navigation
// ============================================================================

func (s *Shell) ls(_ context.Context, _ []string) error {
	listing := s.gallery.Listing(s.gallery.CurrentPath())
	if len(listing.Subfolders) == 0 && len(listing.Artworks) == 0 {
		s.printf("(empty)\n")
		return nil
	}
	for _, f := range listing.Subfolders {
		s.printf("%s%s/%s\n", s.c(colorCyan), f.Name, s.c(colorReset))
	}
	for _, a := range listing.Artworks {
		s.printf("%s  %s  %s\n", shortID(a.ID), a.Title, a.ImageURL)
		if a.Description != "" {
			s.printf("          %s\n", a.Description)
		}
	}
	return nil
}

func (s *Shell) cd(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cd")
	}
	switch target := args[0]; target {
	case "/":
		s.gallery.GoRoot()
	case "..":
		s.gallery.Back()
	default:
		next := s.gallery.CurrentPath().Child(target)
		if _, err := s.gallery.FolderAt(next); err != nil {
			return err
		}
		s.gallery.Enter(target)
	}
	return nil
}

func (s *Shell) pwd(_ context.Context, _ []string) error {
	s.printf("/%s\n", s.gallery.CurrentPath().String())
	return nil
}

func (s *Shell) tree(_ context.Context, _ []string) error {
	tree := s.gallery.Tree()
	s.printf("/\n")
	for _, a := range tree.Artworks {
		s.printf("  %s  %s\n", shortID(a.ID), a.Title)
	}
	for _, f := range tree.Folders {
		s.printFolder(f, 1)
	}
	return nil
}

func (s *Shell) printFolder(node *galleryModels.FolderTreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	s.printf("%s%s%s/%s\n", indent, s.c(colorCyan), node.Name, s.c(colorReset))
	for _, a := range node.Artworks {
		s.printf("%s  %s  %s\n", indent, shortID(a.ID), a.Title)
	}
	for _, child := range node.Folders {
		s.printFolder(child, depth+1)
	}
}

// ============================================================================
// Folder commands
// ============================================================================

func (s *Shell) mkdir(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("mkdir")
	}
	folder, err := s.gallery.CreateFolder(ctx, args[0])
	if err != nil {
		return err
	}
	s.ok("created /%s", folder.Path.String())
	return nil
}

func (s *Shell) mv(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("mv")
	}
	folder, err := s.gallery.FolderAt(s.gallery.CurrentPath().Child(args[0]))
	if err != nil {
		return err
	}
	renamed, err := s.gallery.RenameFolder(ctx, folder.ID, args[1])
	if err != nil {
		return err
	}
	s.ok("renamed to /%s", renamed.Path.String())
	return nil
}

func (s *Shell) rm(ctx context.Context, args []string) error {
	recursive := s.cascadeDelete
	if len(args) > 0 && args[0] == "-r" {
		recursive = true
		args = args[1:]
	}
	if len(args) != 1 {
		return usageError("rm")
	}
	folder, err := s.gallery.FolderAt(s.gallery.CurrentPath().Child(args[0]))
	if err != nil {
		return err
	}
	if err := s.gallery.DeleteFolder(ctx, folder.ID, gallerySvc.WithCascadeIf(recursive)); err != nil {
		return err
	}
	s.ok("deleted /%s", folder.Path.String())
	return nil
}

// ============================================================================
// Artwork commands
// ============================================================================

func (s *Shell) add(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("add")
	}

	input := gallerySvc.ArtworkInput{Title: args[0]}
	if len(args) == 3 {
		input.Description = args[2]
	}

	source := args[1]
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		input.ImageURL = source
	} else {
		data, err := afero.ReadFile(s.fs, source)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		input.Image = &gallerySvc.Blob{Filename: filepath.Base(source), Data: data}
	}

	artwork, err := s.gallery.AddArtwork(ctx, input)
	if err != nil {
		return err
	}
	s.ok("added %s %q", shortID(artwork.ID), artwork.Title)
	return nil
}

func (s *Shell) edit(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("edit")
	}
	id, err := s.resolveArtwork(args[0])
	if err != nil {
		return err
	}

	value := args[2]
	var patch galleryModels.ArtworkPatch
	switch args[1] {
	case "title":
		patch.Title = &value
	case "description":
		patch.Description = &value
	default:
		return usageError("edit")
	}

	artwork, err := s.gallery.UpdateArtwork(ctx, id, patch)
	if err != nil {
		return err
	}
	s.ok("updated %s %q", shortID(artwork.ID), artwork.Title)
	return nil
}

func (s *Shell) del(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("del")
	}
	id, err := s.resolveArtwork(args[0])
	if err != nil {
		return err
	}
	if err := s.gallery.DeleteArtwork(ctx, id); err != nil {
		return err
	}
	s.ok("deleted %s", shortID(id))
	return nil
}

func (s *Shell) reload(ctx context.Context, _ []string) error {
	if err := s.gallery.Reload(ctx); err != nil {
		return err
	}
	tree := s.gallery.Tree()
	s.ok("reloaded (%d top-level folders)", len(tree.Folders))
	return nil
}

// resolveArtwork accepts a full ID or a unique prefix of an artwork listed
// at the current path.
func (s *Shell) resolveArtwork(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", &domain.ValidationError{Message: "artwork id is required"}
	}
	if a, err := s.gallery.Artwork(ref); err == nil {
		return a.ID, nil
	}

	var match string
	for _, a := range s.gallery.Listing(s.gallery.CurrentPath()).Artworks {
		if !strings.HasPrefix(a.ID, ref) {
			continue
		}
		if match != "" {
			return "", &domain.ValidationError{Message: fmt.Sprintf("artwork id %q is ambiguous", ref)}
		}
		match = a.ID
	}
	if match == "" {
		return "", &domain.NotFoundError{Message: fmt.Sprintf("artwork %q not found", ref)}
	}
	return match, nil
}

// ============================================================================
// Output
// ============================================================================

func (s *Shell) c(code string) string {
	if !s.color {
		return ""
	}
	return code
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) ok(format string, args ...any) {
	s.printf("%s%s%s\n", s.c(colorGreen), fmt.Sprintf(format, args...), s.c(colorReset))
}

func (s *Shell) fail(err error) {
	var persistErr *domain.PersistenceError
	if errors.As(err, &persistErr) {
		s.logger.Error("shell command failed", "op", persistErr.Op, "error", persistErr.Err)
	}
	s.printf("%serror: %v%s\n", s.c(colorRed), err, s.c(colorReset))
}

func usageError(name string) error {
	return &domain.ValidationError{Message: "usage: " + commands[name].usage}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// splitArgs splits a command line on spaces. Double or single quotes group
// words; a backslash escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, &domain.ValidationError{Message: "unterminated quote"}
	}
	if escaped {
		return nil, &domain.ValidationError{Message: "trailing backslash"}
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
