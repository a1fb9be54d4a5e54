package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/scriptorium/apparatus"
	"github.com/ByLCY/scriptorium/config"
	"github.com/ByLCY/scriptorium/diag"
	"github.com/ByLCY/scriptorium/edition"
	"github.com/ByLCY/scriptorium/layout"
	"github.com/ByLCY/scriptorium/linebreak"
	"github.com/ByLCY/scriptorium/renderer"
	canvasrenderer "github.com/ByLCY/scriptorium/renderer/canvas"
	"github.com/ByLCY/scriptorium/style"
)

// reload selects what a run reads from disk again.
type reload int

const (
	reloadEdition reload = iota
	reloadAll
)

// builder keeps one session across runs so that the watch command only
// rebuilds what changed.
type builder struct {
	cfg    *config.Config
	logger *slog.Logger
	diags  *diag.Collector

	session *apparatus.Session
	proof   *canvasrenderer.Proof
	breaker *linebreak.Breaker
}

type result struct {
	pdfPath     string
	pages       int
	diagnostics []diag.Diagnostic
}

// debugDump is the JSON written next to the PDF for inspection.
type debugDump struct {
	Document    *layout.Document  `json:"document"`
	Pages       []renderer.Page   `json:"pages"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

func loadConfig(path, output, debug string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if output != "" {
		cfg.Output.PDF = output
	}
	if debug != "" {
		cfg.Output.Debug = debug
	}
	return cfg, nil
}

func newBuilder(cfg *config.Config, logger *slog.Logger) *builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &builder{cfg: cfg, logger: logger, diags: diag.NewCollector(logger)}
}

// setup loads the style sheet and fonts and starts a new session.
func (b *builder) setup() error {
	sheet := style.Default()
	baseDir := b.cfg.Dir()
	if b.cfg.Stylesheet != "" {
		path := b.cfg.Path(b.cfg.Stylesheet)
		s, err := style.LoadFile(path)
		if err != nil {
			return fmt.Errorf("加载样式表失败: %w", err)
		}
		sheet, baseDir = s, filepath.Dir(path)
	}
	var fallback canvasrenderer.Resource
	if b.cfg.FallbackFont != "" {
		fallback.Path = b.cfg.Path(b.cfg.FallbackFont)
	}
	m := canvasrenderer.NewMeasurer(canvasrenderer.Options{
		BaseDir:  baseDir,
		Fonts:    canvasrenderer.FontsFromSheet(sheet.Fonts()),
		Fallback: fallback,
	})
	pg := b.cfg.Page
	b.proof = canvasrenderer.NewProof(m, canvasrenderer.ProofOptions{
		PageWidth:  pg.Width,
		PageHeight: pg.Height,
		Margin:     pg.Margin,
		NoteWidth:  pg.NoteWidth,
		Styles:     sheet,
	})
	width := b.cfg.Linebreak.Width
	if width <= 0 {
		width = b.proof.TextWidth()
	}
	b.breaker = linebreak.New(linebreak.Options{
		LineWidth:    width,
		LinesPerPage: b.cfg.Linebreak.LinesPerPage,
		MergeBoxes:   b.cfg.Linebreak.Merge,
		Logger:       b.logger,
	})
	b.session = apparatus.NewSession(sheet, m, apparatus.Options{
		Reporter: b.diags,
		Logger:   b.logger,
	})
	return nil
}

// run 串联加载、编译、断行、校勘记装配与渲染。
func (b *builder) run(what reload) (*result, error) {
	if b.session == nil || what == reloadAll {
		if err := b.setup(); err != nil {
			return nil, err
		}
	}
	b.diags.Reset()

	ed, err := edition.LoadFile(b.cfg.Path(b.cfg.Edition))
	if err != nil {
		return nil, fmt.Errorf("加载校勘本失败: %w", err)
	}
	list, err := b.session.CompileMainText(ed)
	if err != nil {
		return nil, fmt.Errorf("编译正文失败: %w", err)
	}
	doc, err := b.breaker.Typeset(list)
	if err != nil {
		return nil, fmt.Errorf("断行失败: %w", err)
	}
	b.session.SetPagination(doc)

	pages, err := b.assemble(doc)
	if err != nil {
		return nil, err
	}
	res := &result{pdfPath: b.cfg.Path(b.cfg.Output.PDF), pages: len(pages)}
	res.diagnostics = b.diags.All()

	if b.cfg.Output.Debug != "" {
		if err := writeDebug(debugDump{Document: doc, Pages: pages, Diagnostics: res.diagnostics}, b.cfg.Path(b.cfg.Output.Debug)); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(res.pdfPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := b.proof.Render(pages)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(res.pdfPath, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	b.logger.Info("edition laid out",
		"pages", len(pages),
		"epoch", b.session.Epoch(),
		"diagnostics", len(res.diagnostics),
		"pdf", res.pdfPath)
	return res, nil
}

// assemble attaches to every page the apparatus and margin notes of its lines.
func (b *builder) assemble(doc *layout.Document) ([]renderer.Page, error) {
	ed := b.session.Edition()
	pages := make([]renderer.Page, 0, len(doc.Pages))
	for _, pg := range doc.Pages {
		out := renderer.Page{Number: pg.Number, Items: pg.Items}
		first, last, ok := lineWindow(pg)
		if ok {
			for i := range ed.Apparatuses {
				app := &ed.Apparatuses[i]
				if app.IsMarginalia() {
					continue
				}
				items, err := b.session.AssembleApparatus(app, first, last, b.cfg.Window.RelativeNumbers)
				if err != nil {
					return nil, fmt.Errorf("第 %d 页校勘记 %s 装配失败: %w", pg.Number, app.Type, err)
				}
				if len(items) > 0 {
					out.Apparatus = append(out.Apparatus, renderer.Block{Type: app.Type, Items: items})
				}
			}
			notes, err := b.session.MarginaliaInRange(first, last)
			if err != nil {
				return nil, fmt.Errorf("第 %d 页边注装配失败: %w", pg.Number, err)
			}
			out.Marginalia = notes
		}
		pages = append(pages, out)
	}
	return pages, nil
}

// lineWindow returns the first and last line numbers on a page.
func lineWindow(pg layout.Page) (first, last int, ok bool) {
	for _, it := range pg.Items {
		n := it.LineNumber()
		if !it.IsLine() || n == 0 {
			continue
		}
		if !ok {
			first, ok = n, true
		}
		last = n
	}
	return first, last, ok
}

func writeDebug(v any, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(v, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
