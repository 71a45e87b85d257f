// spritec is a CLI for inspecting sprite projects and exporting spritesheets.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Faultbox/spritestudio/internal/config"
	"github.com/Faultbox/spritestudio/internal/logger"
	"github.com/Faultbox/spritestudio/pkg/compositor"
	"github.com/Faultbox/spritestudio/pkg/imaging"
	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/project"
	"github.com/Faultbox/spritestudio/pkg/rotation"
	"github.com/Faultbox/spritestudio/pkg/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "resolve", "wheel":
		cmdResolve(args)
	case "frame":
		cmdFrame(args)
	case "export", "x":
		cmdExport(args)
	case "export-all":
		cmdExportAll(args)
	case "watch":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`spritec - pixel-art character compositor and spritesheet exporter

Usage:
  spritec <command> [options] <project>

Commands:
  info <project>                   Show characters, parts and animations
  resolve <project>                Show the rotation wheel of every part state
  frame <project>                  Render one animation frame to an image
  export <project>                 Export selected animations into one atlas
  export-all <project>             Export one atlas per animation
  watch <project>                  Re-export every animation when the project changes

Common options (export, export-all, watch, frame):
  -config <file>    Config file (default $SPRITEC_CONFIG, ./spritec.yaml or the user config dir)
  -debug            Enable debug logging
  -workers <n>      Export worker count
  -columns <n>      Atlas columns, 0 = auto
  -format <fmt>     png or webp
  -out <dir>        Output directory

Examples:
  spritec info hero.sprite
  spritec resolve -part cape hero.sprite
  spritec frame -anim walk -t 350ms -o walk.png hero.sprite
  spritec export -anim walk -anim run -columns 4 hero.sprite
  spritec export -request sheets.yaml hero.sprite
  spritec watch -out build hero.sprite`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

func loadProject(path string) *project.Project {
	p, err := project.Load(path)
	if err != nil {
		fatalf("%v", err)
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return p
}

// setup loads config and starts logging for commands that take the common
// flags.
func setup(cf *config.Flags) *config.Config {
	cfg, err := config.Load(cf)
	if err != nil {
		fatalf("%v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatalf("init logger: %v", err)
	}
	return cfg
}

// newCompositor builds a compositor backed by the rotation and decode caches.
func newCompositor(cfg *config.Config) (*compositor.Compositor, func()) {
	images, err := imaging.NewCache(cfg.ImageCache())
	if err != nil {
		fatalf("%v", err)
	}
	return compositor.New(rotation.NewCache(), images), images.Close
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spritec info <project>")
		os.Exit(1)
	}

	p := loadProject(fs.Arg(0))
	seq := sequencer.New(model.DefaultFPS)

	fmt.Printf("Project:    %s (v%s)\n", p.Name, p.Version)
	if p.Migrated {
		fmt.Println("            migrated from a legacy file")
	}
	fmt.Printf("Characters: %d\n", len(p.Characters))
	for _, ch := range p.Characters {
		fmt.Println()
		fmt.Printf("%s  canvas %dx%d\n", ch.Name, ch.Canvas.X, ch.Canvas.Y)

		fmt.Println("  Parts:")
		for _, part := range ch.Parts() {
			fmt.Printf("    %-16s %-9s z=%d\n", part.Name, part.Resolution, part.DefaultZ)
			for _, st := range part.States() {
				missing := rotation.MissingAngles(st, part.Resolution)
				fmt.Printf("      %-14s %2d authored, %2d missing\n", st.Name, len(st.Authored()), len(missing))
			}
		}

		fmt.Println("  Animations:")
		for _, a := range ch.Animations {
			fmt.Printf("    %-16s %3d frames  %5.1f fps  loop %v\n",
				a.Name, a.FrameCount(), seq.FPS(a), seq.LoopDuration(a).Round(time.Millisecond))
		}
		if err := ch.Validate(); err != nil {
			fmt.Printf("  Problem: %v\n", err)
		}
	}
}

func cmdResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	charName := fs.String("character", "", "Character name (default: the only one)")
	partName := fs.String("part", "", "Only this part")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: spritec resolve [-character name] [-part name] <project>")
		os.Exit(1)
	}

	ch, err := loadProject(fs.Arg(0)).Lookup(*charName)
	if err != nil {
		fatalf("%v", err)
	}

	for _, part := range ch.Parts() {
		if *partName != "" && part.Name != *partName {
			continue
		}
		for _, st := range part.States() {
			fmt.Printf("%s/%s (%s)\n", part.Name, st.Name, part.Resolution)
			for _, slot := range rotation.Wheel(st, part.Resolution) {
				switch slot.Mode {
				case rotation.Direct:
					fmt.Printf("  %6s°  direct\n", slot.Angle)
				case rotation.Mirrored:
					fmt.Printf("  %6s°  mirror of %s°\n", slot.Angle, slot.Source)
				default:
					fmt.Printf("  %6s°  missing art for this angle\n", slot.Angle)
				}
			}
		}
	}
}

func cmdFrame(args []string) {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	cf := config.BindFlags(fs)
	charName := fs.String("character", "", "Character name (default: the only one)")
	animName := fs.String("anim", "", "Animation name")
	index := fs.Int("i", -1, "Frame index (overrides -t)")
	elapsed := fs.Duration("t", 0, "Playback time to sample")
	output := fs.String("o", "", "Output image (default <character>_<anim>_<frame>.<format>)")
	fs.Parse(args)

	if fs.NArg() < 1 || *animName == "" {
		fmt.Fprintln(os.Stderr, "Usage: spritec frame -anim name [-i index | -t 350ms] [-o out.png] <project>")
		os.Exit(1)
	}

	cfg := setup(cf)
	defer logger.Sync()

	ch, err := loadProject(fs.Arg(0)).Lookup(*charName)
	if err != nil {
		fatalf("%v", err)
	}
	anim := ch.Animation(*animName)
	if anim == nil {
		fatalf("%v: %q", model.ErrAnimationNotFound, *animName)
	}

	frame := *index
	if frame < 0 {
		frame = sequencer.New(float64(cfg.Export.DefaultFPS)).FrameAt(anim, *elapsed)
	}
	if frame == sequencer.NoFrame {
		fatalf("animation %q has no frames", anim.Name)
	}

	format, err := cfg.OutputFormat()
	if err != nil {
		fatalf("%v", err)
	}
	comp, closeCache := newCompositor(cfg)
	defer closeCache()

	img, err := comp.RenderFrame(ch, anim, frame)
	if err != nil {
		fatalf("%v", err)
	}

	path := *output
	if path == "" {
		path = fmt.Sprintf("%s_%s_%d%s", safeName(ch.Name), safeName(anim.Name), frame, format.Ext())
	}
	f, err := os.Create(path)
	if err != nil {
		fatalf("%v", err)
	}
	if err := imaging.Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		fatalf("%v", err)
	}
	if err := f.Close(); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Rendered %s frame %d -> %s\n", anim.Name, frame, path)
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
