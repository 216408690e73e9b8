package cli

import (
	"bufio"
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	"gallery/internal/auth"
	galleryModels "gallery/internal/domain/models/gallery"
	"gallery/internal/repository/memory"
	service "gallery/internal/service/gallery"
	"gallery/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

type shellFixture struct {
	shell   *Shell
	ctrl    *service.Controller
	session *auth.Session
	out     *bytes.Buffer
	fs      afero.Fs
}

func newShellFixture(t *testing.T, opts ...ShellOption) *shellFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	media := afero.NewMemMapFs()
	ctrl := service.NewController(
		memory.NewFolderRepository(store),
		memory.NewArtworkRepository(store),
		memory.NewTransactionManager(store),
		storage.NewFilesystemStore(media, "/media", logger),
		logger,
	)

	provider, err := auth.NewLocalProvider("artist@mock.com", "password123", "test-secret", logger)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}
	session := auth.NewSession(provider)

	local := afero.NewMemMapFs()
	out := &bytes.Buffer{}
	opts = append([]ShellOption{WithFs(local)}, opts...)
	shell := NewShell(ctrl, session, strings.NewReader(""), out, logger, opts...)

	return &shellFixture{shell: shell, ctrl: ctrl, session: session, out: out, fs: local}
}

// run executes each line and returns everything printed.
func (f *shellFixture) run(lines ...string) string {
	f.out.Reset()
	for _, line := range lines {
		f.shell.Exec(context.Background(), line)
	}
	return f.out.String()
}

func (f *shellFixture) login(t *testing.T) {
	t.Helper()
	if out := f.run("login artist@mock.com password123"); !strings.Contains(out, "signed in as artist@mock.com") {
		t.Fatalf("login output = %q", out)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "ls", want: []string{"ls"}},
		{line: "  mkdir   Oils  ", want: []string{"mkdir", "Oils"}},
		{line: `mkdir "Still Life"`, want: []string{"mkdir", "Still Life"}},
		{line: `mv 'Old Name' New\ Name`, want: []string{"mv", "Old Name", "New Name"}},
		{line: `add "" x`, want: []string{"add", "", "x"}},
		{line: `mkdir "open`, wantErr: true},
		{line: `mkdir trailing\`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShell_RequiresLogin(t *testing.T) {
	f := newShellFixture(t)

	out := f.run("ls", "mkdir Oils")
	if strings.Count(out, "not signed in") != 2 {
		t.Errorf("output = %q", out)
	}
	if out := f.run("whoami"); !strings.Contains(out, "not signed in") {
		t.Errorf("whoami = %q", out)
	}
	if out := f.run("login artist@mock.com wrong"); !strings.Contains(out, "error:") {
		t.Errorf("bad login = %q", out)
	}
}

func TestShell_LoginTwiceRejected(t *testing.T) {
	f := newShellFixture(t)
	f.login(t)

	if out := f.run("login artist@mock.com password123"); !strings.Contains(out, "already signed in") {
		t.Errorf("second login = %q", out)
	}
}

func TestShell_NavigationAndFolders(t *testing.T) {
	f := newShellFixture(t)
	f.login(t)

	f.run(`mkdir Paintings`, `cd Paintings`, `mkdir "Still Life"`, `mkdir Oils`)
	if out := f.run("pwd"); out != "/Paintings\n" {
		t.Errorf("pwd = %q", out)
	}
	if out := f.run("ls"); out != "Oils/\nStill Life/\n" {
		t.Errorf("ls = %q", out)
	}

	if out := f.run("cd Missing"); !strings.Contains(out, "error:") {
		t.Errorf("cd Missing = %q", out)
	}
	if out := f.run("mkdir Oils"); !strings.Contains(out, "already exists") {
		t.Errorf("duplicate mkdir = %q", out)
	}

	f.run(`cd Oils`, `mkdir Landscapes`, `cd ..`, `cd ..`)
	if got := f.ctrl.CurrentPath(); !got.IsRoot() {
		t.Fatalf("path after cd .. twice = %v", got)
	}

	f.run("cd Paintings", "mv Oils Acrylics")
	if _, err := f.ctrl.FolderAt(galleryModels.Path{"Paintings", "Acrylics", "Landscapes"}); err != nil {
		t.Errorf("descendant not renamed: %v", err)
	}

	f.run("cd /")
	out := f.run("tree")
	for _, want := range []string{"Paintings/", "    Acrylics/", "      Landscapes/", "    Still Life/"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree %q missing %q", out, want)
		}
	}
}

func TestShell_RemoveFolder(t *testing.T) {
	f := newShellFixture(t)
	f.login(t)
	f.run("mkdir A", "cd A", "mkdir B", "cd /")

	if out := f.run("rm -r A"); !strings.Contains(out, "deleted /A") {
		t.Fatalf("rm -r = %q", out)
	}
	if tree := f.ctrl.Tree(); len(tree.Folders) != 0 {
		t.Errorf("tree after rm -r = %+v", tree.Folders)
	}
	if out := f.run("rm"); !strings.Contains(out, "usage: rm") {
		t.Errorf("rm without args = %q", out)
	}
}

func TestShell_Artworks(t *testing.T) {
	f := newShellFixture(t)
	f.login(t)

	img := imaging.New(4, 4, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := afero.WriteFile(f.fs, "/tmp/red.png", buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	f.run("mkdir Pinturas", "cd Pinturas")
	if out := f.run(`add "Red Square" /tmp/red.png "acrylic on board"`); !strings.Contains(out, `added`) {
		t.Fatalf("add file = %q", out)
	}
	if out := f.run(`add Dama https://images.example.com/dama.jpg`); !strings.Contains(out, `"Dama"`) {
		t.Fatalf("add url = %q", out)
	}
	if out := f.run(`add Missing /tmp/nope.png`); !strings.Contains(out, "read image") {
		t.Errorf("add missing file = %q", out)
	}

	listing := f.ctrl.Listing(galleryModels.Path{"Pinturas"})
	if len(listing.Artworks) != 2 {
		t.Fatalf("artworks = %+v", listing.Artworks)
	}
	square := listing.Artworks[0]
	if !strings.HasPrefix(square.ImageURL, "/media/") || square.Description != "acrylic on board" {
		t.Errorf("uploaded artwork = %+v", square)
	}

	if out := f.run(`edit ` + square.ID[:8] + ` title "Red Square II"`); !strings.Contains(out, "Red Square II") {
		t.Errorf("edit = %q", out)
	}
	if out := f.run(`edit ` + square.ID + ` colour red`); !strings.Contains(out, "usage: edit") {
		t.Errorf("edit bad field = %q", out)
	}
	if out := f.run(`del ` + square.ID); !strings.Contains(out, "deleted") {
		t.Errorf("del = %q", out)
	}
	if out := f.run(`del ""`, `edit "" title Nameless`); strings.Count(out, "artwork id is required") != 2 {
		t.Errorf("empty id = %q", out)
	}
	if out := f.run(`del zzzz`); !strings.Contains(out, "not found") {
		t.Errorf("del unknown = %q", out)
	}
	if got := len(f.ctrl.Listing(galleryModels.Path{"Pinturas"}).Artworks); got != 1 {
		t.Errorf("artworks after del = %d", got)
	}
}

func TestShell_LogoutReturnsToRoot(t *testing.T) {
	f := newShellFixture(t)
	unbind := f.ctrl.BindSession(f.session)
	defer unbind()

	f.login(t)
	f.run("mkdir Pinturas", "cd Pinturas")

	if out := f.run("logout"); !strings.Contains(out, "signed out") {
		t.Fatalf("logout = %q", out)
	}
	if !f.ctrl.CurrentPath().IsRoot() {
		t.Errorf("path after logout = %v", f.ctrl.CurrentPath())
	}
	if got := len(f.ctrl.Listing(galleryModels.Root()).Subfolders); got != 0 {
		t.Errorf("snapshot kept %d folders after logout", got)
	}
	if out := f.run("logout"); !strings.Contains(out, "error:") {
		t.Errorf("second logout = %q", out)
	}
}

func TestShell_LoginRightAfterLogoutKeepsGallery(t *testing.T) {
	f := newShellFixture(t)
	unbind := f.ctrl.BindSession(f.session)
	defer unbind()

	f.login(t)
	f.run("mkdir Pinturas", "mkdir Esculturas")

	for i := 0; i < 5; i++ {
		f.run("logout")
		f.login(t)
		if out := f.run("ls"); out != "Esculturas/\nPinturas/\n" {
			t.Fatalf("round %d: ls = %q", i, out)
		}
	}
}

func TestShell_RunLoop(t *testing.T) {
	f := newShellFixture(t)
	in := strings.NewReader("login artist@mock.com password123\nmkdir Esculturas\nbogus\nexit\nls\n")
	f.shell.scanner = bufio.NewScanner(in)

	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "created /Esculturas") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, `unknown command "bogus"`) {
		t.Errorf("output = %q", out)
	}
	// Nothing after exit runs
	if strings.Contains(out, "Esculturas/\n") {
		t.Errorf("ls ran after exit: %q", out)
	}
}
