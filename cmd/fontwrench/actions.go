package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"fontwrench/boundary"
	"fontwrench/document"
	"fontwrench/fonts"
	"fontwrench/state"
)

// prepareDocument loads the page document named by the first positional
// argument into the in-memory host and installs the configured catalog into
// it, so the host can answer availability and load requests.
func prepareDocument(ctx context.Context, cmd *cli.Command) (*state.LocalEnv, error) {
	env := state.EnvFromContext(ctx)

	path := cmd.Args().Get(0)
	if len(path) == 0 {
		return nil, fmt.Errorf("no document specified")
	}
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many documents", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	catalog, err := env.Cfg.Catalog.Prepare(env.Log)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare font catalog: %w", err)
	}
	env.Catalog = catalog
	env.Log.Debug("Font catalog prepared", zap.Int("entries", catalog.Len()))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read document '%s': %w", path, err)
	}
	env.Rpt.StoreData(fmt.Sprintf("document/%s", filepath.Base(path)), data)

	doc, err := document.ReadXML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to load document '%s': %w", path, err)
	}
	doc.InstallCatalog(catalog)
	env.Doc = doc
	return env, nil
}

// saveDocument writes the possibly modified document out when requested via
// --out or --overwrite.
func saveDocument(env *state.LocalEnv, cmd *cli.Command) error {
	dst := cmd.String("out")
	if len(dst) == 0 && cmd.Bool("overwrite") {
		dst = cmd.Args().Get(0)
	}
	if len(dst) == 0 {
		env.Log.Warn("No destination requested, document changes are discarded (use --out or --overwrite)")
		return nil
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination '%s': %w", dst, err)
	}
	defer f.Close()
	if err := env.Doc.WriteXML(f); err != nil {
		return err
	}
	env.Log.Info("Document saved", zap.String("file", dst))
	return nil
}

// consoleAdapter builds a boundary adapter whose responses are rendered for
// a terminal: notifications to stdout, scan results as YAML, progress to the
// debug log.
func consoleAdapter(env *state.LocalEnv, scanOut *os.File) *boundary.Adapter {
	return boundary.New(env.Doc, env.Log, func(msg any) {
		switch m := msg.(type) {
		case boundary.Notification:
			fmt.Println(m.Message)
		case boundary.ScanResult:
			if scanOut == nil {
				return
			}
			data, err := yaml.Marshal(m.Result)
			if err != nil {
				env.Log.Error("Unable to render scan result", zap.Error(err))
				return
			}
			env.Rpt.StoreData("scan-result.yaml", data)
			if _, err := scanOut.Write(data); err != nil {
				env.Log.Error("Unable to write scan result", zap.Error(err))
			}
		case boundary.Progress:
			env.Log.Debug("Replacement progress", zap.Int("current", m.Current), zap.Int("total", m.Total), zap.String("font", m.FontName))
		}
	})
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareDocument(ctx, cmd)
	if err != nil {
		return err
	}

	out := os.Stdout
	if fname := cmd.String("out"); len(fname) > 0 {
		if out, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	return consoleAdapter(env, out).Handle(ctx, boundary.Request{Type: boundary.ReqScanLayers})
}

func runReplace(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareDocument(ctx, cmd)
	if err != nil {
		return err
	}
	adapter := consoleAdapter(env, nil)
	err = adapter.Handle(ctx, boundary.Request{
		Type:    boundary.ReqReplaceFont,
		OldFont: cmd.String("from"),
		NewFont: cmd.String("to"),
	})
	if err != nil {
		return err
	}
	return saveDocument(env, cmd)
}

func runReplaceStyle(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareDocument(ctx, cmd)
	if err != nil {
		return err
	}
	adapter := consoleAdapter(env, nil)
	err = adapter.Handle(ctx, boundary.Request{
		Type:     boundary.ReqReplaceFontWeight,
		Family:   cmd.String("family"),
		OldStyle: cmd.String("from"),
		NewStyle: cmd.String("to"),
	})
	if err != nil {
		return err
	}
	return saveDocument(env, cmd)
}

func runReplaceSize(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareDocument(ctx, cmd)
	if err != nil {
		return err
	}
	adapter := consoleAdapter(env, nil)
	err = adapter.Handle(ctx, boundary.Request{
		Type:    boundary.ReqReplaceFontSize,
		Family:  cmd.String("family"),
		OldSize: cmd.Float("from"),
		NewSize: cmd.Float("to"),
	})
	if err != nil {
		return err
	}
	return saveDocument(env, cmd)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	env, err := prepareDocument(ctx, cmd)
	if err != nil {
		return err
	}
	env.Log.Info("Serving requests", zap.String("document", cmd.Args().Get(0)))
	return boundary.Serve(ctx, env.Doc, env.Log, os.Stdin, os.Stdout)
}

func runCatalog(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	catalog, err := env.Cfg.Catalog.Prepare(env.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare font catalog: %w", err)
	}
	env.Log.Info("Font catalog prepared", zap.Int("entries", catalog.Len()), zap.Int("families", len(catalog.Families())))

	if fname := cmd.String("save-cache"); len(fname) > 0 {
		if err := fonts.SaveCache(fname, catalog); err != nil {
			return err
		}
		env.Log.Info("Font cache saved", zap.String("file", fname))
		return nil
	}

	data, err := yaml.Marshal(catalog.StyleNames())
	if err != nil {
		return fmt.Errorf("unable to render catalog: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
