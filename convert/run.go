package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"idmlc/archive"
	"idmlc/common"
	"idmlc/config"
	"idmlc/idml"
	"idmlc/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to json", zap.Error(err))
		format = common.OutputFmtJson
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old packages
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in packages", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// process handles single package or directory tree independently of CLI
// framework.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		if err := processDir(ctx, src, dst, format, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	ok, err := isPackageFile(src)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}
	if !ok {
		return fmt.Errorf("input was not recognized as IDML package (%s)", src)
	}
	return processPackage(ctx, src, filepath.Base(src), dst, format, log)
}

// processDir walks directory tree finding IDML packages and processes them
// one after another. Failure of single package does not stop the walk.
func processDir(ctx context.Context, dir, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		ok, err := isPackageFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ok {
			log.Debug("Skipping file, not recognized as IDML package", zap.String("file", path))
			return nil
		}

		count++
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processPackage(ctx, path, rel, dst, format, log); err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Error("Unable to process package", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// ingestOptions translates configuration into ingestion options.
func ingestOptions(env *state.LocalEnv, log *zap.Logger) idml.Options {
	cfg := &env.Cfg.Document
	unit, ok := idml.ParseUnit(cfg.DefaultUnit)
	if !ok {
		log.Warn("Unknown default unit in configuration, using points", zap.String("unit", cfg.DefaultUnit))
	}
	measurer, splitter := env.TextTools()
	return idml.Options{
		DPI:           cfg.DPI,
		DefaultUnit:   unit,
		StrokePadding: cfg.Coordinates.StrokePadding,
		MaxPosition:   cfg.Coordinates.MaxPosition,
		DefaultFont:   cfg.Text.DefaultFont,
		FontScaling:   cfg.Text.FontScaling,
		MaxReduction:  cfg.Text.MaxReduction,
		Measurer:      measurer,
		Splitter:      splitter,
	}
}

func archiveOptions(env *state.LocalEnv) archive.Options {
	return archive.Options{
		Probe:            env.Cfg.Document.Images.Probe,
		ProbeOrientation: env.Cfg.Document.Images.ProbeOrientation,
		CodePage:         env.CodePage,
	}
}

// processPackage ingests single IDML package. "path" is actual file, "src"
// is its path relative to processed source (base name when single file was
// requested), "dst" is destination directory.
func processPackage(ctx context.Context, path, src, dst string, format common.OutputFmt, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var docID, outputName string

	log.Info("Ingestion starting", zap.String("from", src))
	defer func(start time.Time) {
		// image decoders are not bullet proof, when many packages are
		// processed we do not want to stop
		if r := recover(); r != nil {
			log.Error("Ingestion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("ingestion panic: %v", r)
		} else if rerr == nil {
			log.Info("Ingestion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("id", docID))
		}
	}(time.Now())

	pkg, err := archive.Open(ctx, path, archiveOptions(env), log.Named("archive"))
	if err != nil {
		return err
	}
	doc, err := idml.Ingest(ctx, pkg, ingestOptions(env, log), log)
	if err != nil {
		return err
	}
	docID = doc.ID

	outputName = buildOutputPath(doc, src, dst, format, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}
	if err := writeModel(doc, outputName, format, env.Cfg.Document.Output.Indent); err != nil {
		return fmt.Errorf("unable to write document model: %w", err)
	}

	// keep input and result for debugging, packages with the same names from
	// different directories are versioned
	if env.Rpt != nil {
		if err := env.Rpt.StoreCopy(fmt.Sprintf("source-%s", filepath.Base(path)), path); err != nil {
			log.Warn("Unable to keep source package in debug report", zap.Error(err))
		}
		if err := env.Rpt.StoreCopy(fmt.Sprintf("result-%s%s", config.CleanFileName(docID), format.Ext()), outputName); err != nil {
			log.Warn("Unable to keep document model in debug report", zap.Error(err))
		}
		env.Rpt.StoreData(fmt.Sprintf("dump-%s.txt", config.CleanFileName(docID)), []byte(doc.String()))
	}
	return nil
}

// prepareOutput makes sure file can be written: directory exists and
// existing file is removed when overwriting is allowed.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	_, err := os.Stat(name)
	switch {
	case err == nil:
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return os.Remove(name)
	case !os.IsNotExist(err):
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
