package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/lib/version"
	"oss.terrastruct.com/m2/lib/xbrowser"
	"oss.terrastruct.com/m2/lib/xmain"
	"oss.terrastruct.com/m2/m2exporter"
	"oss.terrastruct.com/m2/m2lib"
	"oss.terrastruct.com/m2/m2scene"
	"oss.terrastruct.com/m2/m2tex"
)

func main() {
	xmain.Main(run)
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.Discard(ctx)

	targetFlag := ms.Opts.String("M2_TARGET", "target", "t", string(m2exporter.TargetBrowser), fmt.Sprintf("the tool the exported SVG is tuned for, one of %v", m2exporter.Targets))
	mathjaxFlag := ms.Opts.String("M2_MATHJAX", "mathjax", "", "", "path of the MathJax bundle used to typeset labels")
	trimFlag, err := ms.Opts.Float64("M2_TRIM", "trim", "", m2exporter.DEFAULT_MARKER_TRIM, "how far lines are shortened under an arrowhead")
	if err != nil {
		return err
	}
	watchFlag, err := ms.Opts.Bool("M2_WATCH", "watch", "w", false, "watch the input for changes and re-export")
	if err != nil {
		return err
	}
	browserFlag, err := ms.Opts.Bool("M2_BROWSER", "browser", "b", false, "open the exported file in the browser")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *debugFlag {
		ms.Env.Setenv("DEBUG", "1")
		ctx = log.Stderr(ctx, true)
	}

	args := ms.Opts.Flags.Args()
	if len(args) > 0 && args[0] == "version" {
		if len(args) > 1 {
			return xmain.UsageErrorf("version subcommand accepts no arguments")
		}
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if len(args) == 0 {
		if *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	target, err := m2exporter.ParseTarget(*targetFlag)
	if err != nil {
		return xmain.UsageErrorf("-t[arget]: %v", err)
	}

	inputPath := args[0]
	outputPath := defaultOutputPath(inputPath)
	if len(args) == 2 {
		outputPath = args[1]
	}

	c := &compiler{
		ms: ms,
		typesetter: &lazyTypesetter{
			ctx:  ctx,
			log:  ms.Log,
			opts: &m2tex.MathJaxOptions{Path: *mathjaxFlag},
		},
		exportOpts: &m2exporter.Options{
			Target:     target,
			MarkerTrim: trimFlag,
		},
		inputPath:  inputPath,
		outputPath: outputPath,
	}
	defer c.typesetter.close()

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		ms.Log.SetTS(true)
		w, err := newWatcher(ctx, ms, c, *browserFlag)
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	err = c.compile(ctx)
	if err != nil {
		return err
	}
	if outputPath != "-" {
		ms.Log.Success.Printf("successfully exported %v to %v", inputPath, outputPath)
		if *browserFlag {
			err = xbrowser.OpenFile(ctx, ms.Env, outputPath)
			if err != nil {
				ms.Log.Warn.Printf("failed to open %v in the browser: %v", outputPath, err)
			}
		}
	}
	return nil
}

// defaultOutputPath puts the export next to the input. An SVG input gets a distinct name
// so that it is never overwritten.
func defaultOutputPath(inputPath string) string {
	if inputPath == "-" {
		return "-"
	}
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if strings.EqualFold(ext, ".svg") {
		return base + ".export.svg"
	}
	return base + ".svg"
}

type compiler struct {
	ms         *xmain.State
	typesetter *lazyTypesetter
	exportOpts *m2exporter.Options

	inputPath  string
	outputPath string
}

// compile reads the input, builds its document and writes the export.
func (c *compiler) compile(ctx context.Context) (err error) {
	defer xdefer.Errorf(&err, "failed to export %v", c.inputPath)

	input, err := c.ms.ReadPath(c.inputPath)
	if err != nil {
		return err
	}

	var root *m2scene.Node
	if isSVG(c.inputPath, input) {
		root, err = m2scene.Parse(bytes.NewReader(input))
		if err != nil {
			return err
		}
	} else {
		scene, err := m2lib.Compile(ctx, input, &m2lib.CompileOptions{
			Typesetter: c.typesetter,
		})
		if err != nil {
			return err
		}
		root = scene.Root()
	}

	out, err := m2exporter.Bundle(ctx, root, c.exportOpts)
	if err != nil {
		return err
	}
	return c.ms.WritePath(c.outputPath, out)
}

// isSVG reports whether input is markup rather than a scene description. Stdin has no
// extension so its first byte decides.
func isSVG(inputPath string, input []byte) bool {
	if inputPath != "-" {
		return strings.EqualFold(filepath.Ext(inputPath), ".svg")
	}
	return bytes.HasPrefix(bytes.TrimSpace(input), []byte("<"))
}

// lazyTypesetter starts MathJax on the first label so that descriptions without labels
// neither pay for the engine nor warn about a missing bundle.
type lazyTypesetter struct {
	ctx  context.Context
	log  *cmdlog.Logger
	opts *m2tex.MathJaxOptions
	ts   m2tex.Typesetter
}

func (lt *lazyTypesetter) Typeset(tex string) (*m2tex.Tree, error) {
	if lt.ts == nil {
		lt.ts = m2tex.Load(lt.ctx, lt.opts)
		// The context logger is silent unless --debug is set.
		if u, ok := lt.ts.(m2tex.Unavailable); ok {
			lt.log.Warn.Printf("TeX labels will fail to render: %v", u.Err)
		}
	}
	return lt.ts.Typeset(tex)
}

func (lt *lazyTypesetter) close() {
	if mj, ok := lt.ts.(*m2tex.MathJax); ok {
		mj.Close()
	}
}
