package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/spritestudio/internal/config"
	"github.com/Faultbox/spritestudio/internal/export"
	"github.com/Faultbox/spritestudio/internal/logger"
	"github.com/Faultbox/spritestudio/internal/watch"
	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/project"
)

func safeName(s string) string {
	return export.SanitizeName(s)
}

func newExporter(cfg *config.Config) (*export.Exporter, func()) {
	comp, closeCache := newCompositor(cfg)
	return export.New(comp, cfg.WorkerCount(), logger.Named("export")), closeCache
}

// template is the request skeleton the config describes.
func template(cfg *config.Config) export.Request {
	return export.Request{
		Layout:  cfg.Layout(),
		Format:  cfg.Export.Format,
		Workers: cfg.WorkerCount(),
	}
}

func printReport(r *export.Report) {
	if r == nil || r.Sheet == nil {
		return
	}
	size := r.Sheet.Size()
	fmt.Printf("Exported %d frames -> %s (%dx%d, %dx%d grid, %v)\n",
		r.Placed(), r.AtlasPath, size.X, size.Y, r.Sheet.Columns, r.Sheet.Rows, r.Duration.Round(time.Millisecond))
	printFailures(r)
}

func printFailures(r *export.Report) {
	if r == nil || len(r.Failures) == 0 {
		return
	}
	fmt.Printf("Skipped %d frames:\n", len(r.Failures))
	for _, f := range r.Failures {
		fmt.Printf("  %s[%d]: %v\n", f.Animation, f.FrameIndex, f.Err)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cf := config.BindFlags(fs)
	charName := fs.String("character", "", "Character name (default: the only one)")
	reqPath := fs.String("request", "", "YAML export request")
	start := fs.Int("start", 0, "First frame of each -anim")
	end := fs.Int("end", 0, "End frame (exclusive) of each -anim, 0 = last")
	var anims multiFlag
	fs.Var(&anims, "anim", "Animation to export (repeatable, default all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spritec export [-request req.yaml | -anim name ...] [options] <project>")
		os.Exit(1)
	}

	cfg := setup(cf)
	defer logger.Sync()

	req := template(cfg)
	if *reqPath != "" {
		fileReq, err := export.LoadRequest(*reqPath)
		if err != nil {
			fatalf("%v", err)
		}
		fileReq.Layout.Columns = pick(fileReq.Layout.Columns, req.Layout.Columns)
		fileReq.Format = pickString(fileReq.Format, req.Format)
		fileReq.Workers = pick(fileReq.Workers, req.Workers)
		req = fileReq
		if *charName != "" {
			req.Character = *charName
		}
	} else {
		req.Character = *charName
	}

	ch, err := loadProject(fs.Arg(0)).Lookup(req.Character)
	if err != nil {
		fatalf("%v", err)
	}

	if len(req.Selections) == 0 {
		if len(anims) == 0 {
			req.Selections = export.AllAnimations(ch)
		}
		for _, name := range anims {
			req.Selections = append(req.Selections, export.Selection{Animation: name, Start: *start, End: *end})
		}
	}
	if req.Output == "" {
		format, err := cfg.OutputFormat()
		if err != nil {
			fatalf("%v", err)
		}
		req.Output = filepath.Join(cfg.Export.OutputDir, safeName(ch.Name)+format.Ext())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, closeCache := newExporter(cfg)
	defer closeCache()

	report, err := exp.Export(ctx, ch, req)
	if err != nil {
		printFailures(report)
		fatalf("%v", err)
	}
	printReport(report)
}

func cmdExportAll(args []string) {
	fs := flag.NewFlagSet("export-all", flag.ExitOnError)
	cf := config.BindFlags(fs)
	charName := fs.String("character", "", "Character name (default: every character)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spritec export-all [-character name] [options] <project>")
		os.Exit(1)
	}

	cfg := setup(cf)
	defer logger.Sync()

	p := loadProject(fs.Arg(0))
	chars := p.Characters
	if *charName != "" {
		ch, err := p.Lookup(*charName)
		if err != nil {
			fatalf("%v", err)
		}
		chars = []*model.Character{ch}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, closeCache := newExporter(cfg)
	defer closeCache()

	if err := exportAll(ctx, exp, chars, cfg); err != nil {
		fatalf("%v", err)
	}
}

func exportAll(ctx context.Context, exp *export.Exporter, chars []*model.Character, cfg *config.Config) error {
	for _, ch := range chars {
		reports, err := exp.ExportAll(ctx, ch, cfg.Export.OutputDir, template(cfg))
		for _, r := range reports {
			printReport(r)
		}
		if err != nil {
			return fmt.Errorf("character %q: %w", ch.Name, err)
		}
	}
	return nil
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cf := config.BindFlags(fs)
	charName := fs.String("character", "", "Character name (default: every character)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spritec watch [-character name] [options] <project>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg := setup(cf)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, closeCache := newExporter(cfg)
	defer closeCache()

	rebuild := func(ctx context.Context) error {
		p, err := project.Load(path)
		if err != nil {
			return err
		}
		chars := p.Characters
		if *charName != "" {
			ch, err := p.Lookup(*charName)
			if err != nil {
				return err
			}
			chars = []*model.Character{ch}
		}
		return exportAll(ctx, exp, chars, cfg)
	}

	if err := rebuild(ctx); err != nil {
		logger.Error("initial export failed", zap.Error(err))
	}

	w, err := watch.New(path, watch.DefaultDebounce)
	if err != nil {
		fatalf("%v", err)
	}
	defer w.Close()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", w.Path())
	if err := watch.Run(ctx, w, logger.Named("watch"), rebuild); err != nil && ctx.Err() == nil {
		fatalf("%v", err)
	}
}

func pick(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func pickString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
