package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/fetch"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

// pageSource says where a command reads its page from.
type pageSource struct {
	path   string
	url    string
	render bool
}

// load reads the page from a file, stdin ("-") or a URL.
func (s pageSource) load(ctx context.Context, cfg *config.Config, stdin io.Reader) (*dom.Document, error) {
	switch {
	case s.url != "" && s.path != "":
		return nil, fmt.Errorf("give a file or --url, not both")
	case s.url != "":
		opts := fetch.DefaultOptions()
		opts.Render = s.render || cfg.Browser.Enabled
		opts.Timeout = cfg.Browser.Timeout
		res, err := fetch.Page(ctx, s.url, opts)
		if err != nil {
			return nil, err
		}
		doc, err := dom.Load(bytes.NewReader(res.HTML), res.ContentType)
		if err != nil {
			return nil, err
		}
		return doc.WithURL(s.url), nil
	case s.path == "-":
		return dom.Load(stdin, "")
	case s.path != "":
		f, err := os.Open(s.path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dom.Load(f, "")
	}
	return nil, fmt.Errorf("a page file or --url is required")
}

func readSnapshot(path string) (*types.ClipboardSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap types.ClipboardSnapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", clipboard.ErrInvalidSnapshot, err)
	}
	return &snap, nil
}

// writeJSON writes v indented to path, or to w when path is "" or "-".
func writeJSON(w io.Writer, path string, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return writeOut(w, path, data)
}

func writeOut(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
