// Command dreampix generates AI images from text prompts and keeps a local
// gallery and history of prior generations.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	pkgcrypto "github.com/yukesh4349/Dreampix/internal/crypto"
	"github.com/yukesh4349/Dreampix/internal/model"
	"github.com/yukesh4349/Dreampix/internal/provider/gemini"
	"github.com/yukesh4349/Dreampix/internal/repository/sqlite"
	"github.com/yukesh4349/Dreampix/internal/service"
)

// ---- config/session store ----

type sessionFile struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "dreampix")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dreampix")
}

func sessionPath() string { return filepath.Join(cfgDir(), "session.json") }

func saveSession(token, email string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(sessionPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sessionFile{Token: token, Email: email, ExpiresAt: exp})
}

func loadSession() (sessionFile, error) {
	var sf sessionFile
	b, err := os.ReadFile(sessionPath())
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(b, &sf); err != nil {
		return sf, err
	}
	if sf.Token == "" || time.Now().After(sf.ExpiresAt) {
		return sf, errors.New("no valid session (login required)")
	}
	return sf, nil
}

func clearSession() error {
	err := os.Remove(sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// loadOrCreateSignKey returns the local token signing key, generating one on
// first use.
func loadOrCreateSignKey() ([]byte, error) {
	p := filepath.Join(cfgDir(), "sign.key")
	if b, err := os.ReadFile(p); err == nil && len(b) > 0 {
		return b, nil
	}
	key, err := pkgcrypto.RandBytes(32)
	if err != nil {
		return nil, err
	}
	_ = os.MkdirAll(cfgDir(), 0o700)
	if err := os.WriteFile(p, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// imageSummary is the list-view projection of a stored image (no payload).
type imageSummary struct {
	ID             string `json:"id"`
	Prompt         string `json:"prompt"`
	EnhancedPrompt string `json:"enhanced_prompt,omitempty"`
	CreatedAt      string `json:"created_at"`
	AspectRatio    string `json:"aspect_ratio"`
	IsEnhanced     bool   `json:"is_enhanced,omitempty"`
	IsCollage      bool   `json:"is_collage,omitempty"`
	Bytes          int    `json:"bytes"`
}

func summarize(imgs []model.GeneratedImage) []imageSummary {
	out := make([]imageSummary, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, imageSummary{
			ID:             img.ID,
			Prompt:         img.Prompt,
			EnhancedPrompt: img.EnhancedPrompt,
			CreatedAt:      img.CreatedAt.Format(time.RFC3339),
			AspectRatio:    string(img.AspectRatio),
			IsEnhanced:     img.IsEnhanced,
			IsCollage:      img.IsCollage,
			Bytes:          len(img.Data),
		})
	}
	return out
}

func writeImages(dir string, imgs []model.GeneratedImage) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, img := range imgs {
		p := filepath.Join(dir, img.ID+".png")
		if err := os.WriteFile(p, img.Data, 0o644); err != nil {
			return err
		}
		fmt.Println(p)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `dreampix CLI
Usage:
  dreampix [-db file] <cmd> [args]

Commands:
  register  -email <email> -credential <credential> [-name <display name>]
  login     -email <email> -credential <credential>      (saves session)
  logout
  whoami
  generate  -prompt <text> [-enhance] [-ratio 1:1|16:9|9:16|3:4|4:3]
            [-count 1-4] [-ref file] [-out dir]
  gallery   list | rm -id <image id>
  history   list | clear

GEMINI_API_KEY must be set (flag, environment, or .env file) for generate.
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands over the local store and the Gemini provider.
func main() {
	dbPath := flag.String("db", filepath.Join(cfgDir(), "dreampix.db"), "database file")
	apiKey := flag.String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	sessionTTL := flag.Duration("session-ttl", 30*24*time.Hour, "login session lifetime")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("dreampix %s (%s)\n", version, buildDate)
		return
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	// .env is optional; the environment wins when both are present.
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		fail(err)
	}
	defer db.Close()

	accountRepo := sqlite.NewAccountRepo(db)
	imageRepo := sqlite.NewImageRepo(db)

	signKey, err := loadOrCreateSignKey()
	if err != nil {
		fail(err)
	}
	authSvc := service.NewAuthService(accountRepo, signKey, *sessionTTL)

	// currentAccount resolves the logged-in account from the saved session,
	// nil when logged out. It is passed explicitly into every call that
	// depends on authentication state.
	currentAccount := func() *model.Account {
		sf, err := loadSession()
		if err != nil {
			return nil
		}
		a, err := authSvc.Resume(ctx, sf.Token)
		if err != nil {
			return nil
		}
		return a
	}

	switch cmd {

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "email")
		cred := fs.String("credential", "", "credential")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *cred == "" {
			fmt.Fprintln(os.Stderr, "need -email and -credential")
			os.Exit(1)
		}
		a, err := authSvc.Register(ctx, *email, *cred, *name)
		if err != nil {
			fail(err)
		}
		fmt.Println(a.ID.String())

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		cred := fs.String("credential", "", "credential")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *cred == "" {
			fmt.Fprintln(os.Stderr, "need -email and -credential")
			os.Exit(1)
		}
		a, err := authSvc.Authenticate(ctx, *email, *cred)
		if err != nil {
			fail(err)
		}
		token, exp, err := authSvc.IssueToken(a)
		if err != nil {
			fail(err)
		}
		if err := saveSession(token, a.Email, exp); err != nil {
			fail(err)
		}
		fmt.Println("logged in as", a.Email)

	case "logout":
		if err := clearSession(); err != nil {
			fail(err)
		}
		fmt.Println("logged out")

	case "whoami":
		a := currentAccount()
		if a == nil {
			fmt.Println("not logged in")
			return
		}
		printJSON(map[string]string{"id": a.ID.String(), "email": a.Email, "name": a.DisplayName})

	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		prompt := fs.String("prompt", "", "text prompt")
		enhance := fs.Bool("enhance", false, "also generate with an AI-enhanced prompt")
		ratio := fs.String("ratio", "1:1", "aspect ratio")
		count := fs.Int("count", 1, "images per batch (1-4)")
		refPath := fs.String("ref", "", "reference image file (or - for stdin)")
		outDir := fs.String("out", ".", "output directory")
		_ = fs.Parse(flag.Args()[1:])
		if *prompt == "" {
			fmt.Fprintln(os.Stderr, "need -prompt")
			os.Exit(1)
		}

		key := *apiKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		gen, err := gemini.New(ctx, key)
		if err != nil {
			fail(err)
		}
		genSvc := service.NewGenerateService(gen, imageRepo, logger)

		var ref []byte
		if *refPath != "" {
			if ref, err = readAll(*refPath); err != nil {
				fail(err)
			}
		}

		res, err := genSvc.Generate(ctx, service.GenerateRequest{
			Prompt:         *prompt,
			Enhance:        *enhance,
			AspectRatio:    model.AspectRatio(*ratio),
			Count:          *count,
			ReferenceImage: ref,
			Account:        currentAccount(),
		})
		if err != nil {
			fail(err)
		}

		all := append([]model.GeneratedImage{}, res.Original...)
		all = append(all, res.Enhanced...)
		if res.Collage != nil {
			all = append(all, *res.Collage)
		}
		if err := writeImages(*outDir, all); err != nil {
			fail(err)
		}
		if res.Explanation != "" {
			fmt.Println(res.Explanation)
		}

	case "gallery":
		a := currentAccount()
		if a == nil {
			fail(errors.New("login required for gallery access"))
		}
		sub := "list"
		if flag.NArg() > 1 {
			sub = flag.Arg(1)
		}
		switch sub {
		case "list":
			imgs, err := imageRepo.ListByOwner(ctx, a.ID.String())
			if err != nil {
				fail(err)
			}
			printJSON(summarize(imgs))
		case "rm":
			fs := flag.NewFlagSet("gallery rm", flag.ExitOnError)
			id := fs.String("id", "", "image id")
			_ = fs.Parse(flag.Args()[2:])
			if *id == "" {
				fmt.Fprintln(os.Stderr, "need -id")
				os.Exit(1)
			}
			if err := imageRepo.DeleteOwned(ctx, a.ID.String(), *id); err != nil {
				fail(err)
			}
		default:
			usage()
		}

	case "history":
		sub := "list"
		if flag.NArg() > 1 {
			sub = flag.Arg(1)
		}
		switch sub {
		case "list":
			imgs, err := imageRepo.ListHistory(ctx)
			if err != nil {
				fail(err)
			}
			printJSON(summarize(imgs))
		case "clear":
			if err := imageRepo.ClearHistory(ctx); err != nil {
				fail(err)
			}
		default:
			usage()
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", strings.TrimSpace(cmd))
		usage()
	}
}
