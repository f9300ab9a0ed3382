package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkrupp/imagepipe/internal/domain"
	"github.com/mkrupp/imagepipe/internal/infra/config"
	context_ "github.com/mkrupp/imagepipe/internal/infra/context"
	"github.com/mkrupp/imagepipe/internal/infra/logging"
	"github.com/mkrupp/imagepipe/internal/repo/artifact"
	"github.com/mkrupp/imagepipe/internal/svc/imagesvc"
)

const appName = "imagepipe"

const usage = `usage: imagepipe <command> [-out DIR] [-deg N] FILE...

commands:
  normalize  resize and recompress images for upload
  prepare    normalize images, pass other attachments through
  rotate     rotate images clockwise by -deg degrees
  preview    print a data URI per file, rotated as a PNG when -deg is given
  probe      print image dimensions`

var (
	errUsage  = errors.New("usage")
	errFailed = errors.New("some files failed")
)

type Config struct {
	config.EnvConfig

	Log      logging.LoggerConfig                        `envPrefix:"LOG_"`
	Image    imagesvc.ImageConfig                        `envPrefix:"IMAGE_"`
	Artifact artifact.FileSystemArtifactRepositoryConfig `envPrefix:"ARTIFACT_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()
	)

	if err := config.Parse(ctx, &cfg, strings.ToUpper(appName)); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	if err := logging.Configure(ctx, cfg.Log, appName); err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(2)
	}

	switch err := run(ctx, cfg, os.Args[1:], os.Stdout); {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type command struct {
	name   string
	out    string
	deg    float64
	degSet bool
	files  []string
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}

	cmd := command{name: args[0]}

	flags := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cmd.out, "out", "", "output directory")
	flags.Float64Var(&cmd.deg, "deg", 90, "rotation in degrees, clockwise")

	if err := flags.Parse(args[1:]); err != nil {
		return command{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	flags.Visit(func(f *flag.Flag) {
		if f.Name == "deg" {
			cmd.degSet = true
		}
	})

	cmd.files = flags.Args()
	if len(cmd.files) == 0 {
		return command{}, fmt.Errorf("%w: no files", errUsage)
	}

	return cmd, nil
}

func run(ctx context.Context, cfg Config, args []string, stdout io.Writer) (err error) {
	log := logging.GetLogger("cmd.imagepipe")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.DebugContext(ctx, "done")
		}
	}()

	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	if cmd.out != "" {
		cfg.Artifact.Basedir = cmd.out
	}

	ctx, err = context_.WithNewTraceID(ctx)
	if err != nil {
		return fmt.Errorf("trace id: %w", err)
	}

	imageSvc, err := imagesvc.NewPipelineImageService(cfg.Image)
	if err != nil {
		return fmt.Errorf("new image service: %w", err)
	}
	defer imageSvc.Close()

	repo, err := artifact.NewFileSystemArtifactRepository(ctx, cfg.Artifact)
	if err != nil {
		return fmt.Errorf("new artifact repository: %w", err)
	}

	app := &app{
		imageSvc: imageSvc,
		repo:     repo,
		stdout:   stdout,
	}

	files := app.load(ctx, cmd.files)

	switch cmd.name {
	case "normalize":
		app.normalize(ctx, files)
	case "prepare":
		app.each(ctx, files, app.prepare)
	case "rotate":
		app.each(ctx, files, func(ctx context.Context, file domain.SourceFile) error {
			return app.rotate(ctx, file, cmd.deg)
		})
	case "preview":
		if cmd.degSet {
			app.each(ctx, files, func(ctx context.Context, file domain.SourceFile) error {
				return app.previewRotated(ctx, file, cmd.deg)
			})
		} else {
			app.each(ctx, files, app.preview)
		}
	case "probe":
		app.each(ctx, files, app.probe)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
	}

	if app.failed > 0 {
		return fmt.Errorf("%w: %d of %d", errFailed, app.failed, len(cmd.files))
	}

	return nil
}

type app struct {
	imageSvc imagesvc.ImageService
	repo     artifact.Repository
	stdout   io.Writer
	failed   int
}

func (a *app) load(ctx context.Context, paths []string) []domain.SourceFile {
	files := make([]domain.SourceFile, 0, len(paths))

	for _, path := range paths {
		file, err := a.repo.Load(ctx, path)
		if err != nil {
			a.report(path, err)

			continue
		}

		files = append(files, file)
	}

	return files
}

func (a *app) each(ctx context.Context, files []domain.SourceFile, fn func(context.Context, domain.SourceFile) error) {
	for _, file := range files {
		if err := fn(ctx, file); err != nil {
			a.report(file.Filename, err)
		}
	}
}

func (a *app) normalize(ctx context.Context, files []domain.SourceFile) {
	for _, result := range a.imageSvc.BatchNormalize(ctx, files) {
		if result.Err != nil {
			a.report(result.File.Filename, result.Err)

			continue
		}

		if err := a.store(ctx, result.File, result.Image); err != nil {
			a.report(result.File.Filename, err)
		}
	}
}

func (a *app) prepare(ctx context.Context, file domain.SourceFile) error {
	upload, err := a.imageSvc.PrepareUpload(ctx, file)
	if err != nil {
		return err
	}

	if !upload.Normalized {
		fmt.Fprintf(a.stdout, "%s\tattachment\t%d bytes\n", file.Filename, upload.Size())

		return nil
	}

	return a.store(ctx, file, domain.NewEncodedImage(upload.Data, upload.MIMEType))
}

func (a *app) rotate(ctx context.Context, file domain.SourceFile, degrees float64) error {
	img, err := a.imageSvc.RotateFile(ctx, file, degrees)
	if err != nil {
		return err
	}

	return a.store(ctx, file, img)
}

func (a *app) preview(ctx context.Context, file domain.SourceFile) error {
	preview, err := a.imageSvc.Preview(ctx, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s\t%s\n", file.Filename, preview.DataURI())

	return nil
}

func (a *app) previewRotated(ctx context.Context, file domain.SourceFile, degrees float64) error {
	preview, err := a.imageSvc.PreviewRotated(ctx, file, degrees)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s\t%s\n", file.Filename, preview.DataURI())

	return nil
}

func (a *app) probe(ctx context.Context, file domain.SourceFile) error {
	width, height, err := a.imageSvc.Probe(ctx, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s\t%dx%d\n", file.Filename, width, height)

	return nil
}

func (a *app) store(ctx context.Context, file domain.SourceFile, img domain.EncodedImage) error {
	path, err := a.repo.Store(ctx, img)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	fmt.Fprintf(a.stdout, "%s\t%s\t%d bytes\n", file.Filename, path, img.Size())

	return nil
}

// report prints a failure for name. Validation failures carry a message meant for
// the user, everything else is printed as is.
func (a *app) report(name string, err error) {
	a.failed++

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintf(a.stdout, "%s\trejected\t%s\n", name, validationErr.Message)

		return
	}

	fmt.Fprintf(a.stdout, "%s\tfailed\t%v\n", name, err)
}
