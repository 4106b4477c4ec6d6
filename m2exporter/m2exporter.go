// Package m2exporter turns a scene into a standalone SVG document that renders the same
// without a live renderer: references are resolved, computed styles are inlined and
// markers become ordinary geometry.
package m2exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/m2/lib/log"
	"oss.terrastruct.com/m2/m2scene"
)

// Export runs the whole pipeline on root in place.
func Export(ctx context.Context, root *m2scene.Node, opts *Options) (err error) {
	defer xdefer.Errorf(&err, "failed to export")

	o, err := opts.withDefaults()
	if err != nil {
		return err
	}

	Flatten(root)
	err = EmbedMarkers(ctx, root, &o)
	if err != nil {
		return err
	}
	// Marker definitions are unreferenced now.
	Flatten(root)
	InlineStyles(ctx, root, o.Target)
	return nil
}

// Bundle exports a copy of root and serializes it. root is not modified.
func Bundle(ctx context.Context, root *m2scene.Node, opts *Options) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to bundle")

	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	doc := root.Clone()
	err = Export(ctx, doc, &o)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if !o.NoXMLTag {
		buf.WriteString(m2scene.XMLHeader)
	}
	err = doc.Render(buf)
	if err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	log.Debug(ctx, "bundled document", slog.F("target", o.Target), slog.F("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Save bundles root into filename. .svg is appended to names without an extension.
func Save(ctx context.Context, filename string, root *m2scene.Node, opts *Options) (err error) {
	defer xdefer.Errorf(&err, "failed to save %q", filename)

	out, err := Bundle(ctx, root, opts)
	if err != nil {
		return err
	}
	if filepath.Ext(filename) == "" {
		filename += ".svg"
	}
	return os.WriteFile(filename, out, 0644)
}
