package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boolean-maybe/richprompt/expand"
	"github.com/boolean-maybe/richprompt/internal/logger"
	"github.com/boolean-maybe/richprompt/loaders"
	"github.com/boolean-maybe/richprompt/richprompt"
	rptview "github.com/boolean-maybe/richprompt/richprompt/tview"
)

const (
	pageMain = "main"
	pageHelp = "help"

	defaultSavePath = "prompt.txt"
)

// editorApp is the interactive editor: prompt, expansion pane and status bar.
type editorApp struct {
	app       *tview.Application
	pages     *tview.Pages
	view      *rptview.PromptView
	output    *tview.TextView
	status    *tview.TextView
	help      *rptview.HelpView
	refresher *loaders.Refresher

	ctx     context.Context
	path    string
	seed    uint64
	message string
}

func runEditor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	path := firstArg(args)
	text := expand.DefaultPrompt
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text = string(data)
		case os.IsNotExist(err):
			text = ""
		default:
			return fmt.Errorf("failed to read file: %w", err)
		}
	}

	a := newEditorApp(ctx, path)
	a.view.SetText(text)
	go a.refresher.Run(ctx)

	logger.L(ctx).Info("editor started", zap.String("file", path), zap.String("wildcards", cfg.WildcardDir))
	if err := a.app.SetRoot(a.pages, true).EnableMouse(true).EnablePaste(true).Run(); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}

func newEditorApp(ctx context.Context, path string) *editorApp {
	a := &editorApp{
		app:  tview.NewApplication(),
		ctx:  ctx,
		path: path,
		seed: uint64(time.Now().UnixNano()),
	}
	client := &http.Client{Timeout: cfg.Preview.Timeout}

	catalog := richprompt.NewCatalog(nil)
	editor := richprompt.NewEditor(richprompt.EditorOptions{
		Highlighter: richprompt.NewHighlighter(cfg.Palette),
		Names:       catalog,
	})

	a.view = rptview.NewPromptView(editor).
		SetQueue(func(f func()) { a.app.QueueUpdateDraw(f) }).
		SetZoom(richprompt.NewZoom(cfg.Zoom.Min, cfg.Zoom.Max)).
		SetPreviewScheduling(richprompt.RealClock(), cfg.Preview.Delay).
		SetSubmitHandler(func(*rptview.PromptView) { a.expand() })
	a.view.SetBorder(true).SetTitle(" prompt ")

	a.refresher = loaders.NewRefresher(catalog, tagSource(client), cfg.WildcardDir, loaders.RefresherOptions{
		Interval: cfg.RefreshInterval,
		Watch:    true,
		OnChange: func() { a.app.QueueUpdateDraw(a.view.Refresh) },
	})

	previews := loaders.NewCachedPreviewProvider(&loaders.MultiPreviewProvider{
		Tags:      &loaders.HTTPPreviewProvider{BaseURL: cfg.Preview.URL, Client: client},
		Wildcards: &loaders.WildcardPreviewProvider{Dir: a.refresher.WildcardDir},
	}, cfg.Preview.CacheTTL)
	a.view.SetPreviewProvider(previews, cfg.Preview.Timeout)

	a.output = tview.NewTextView()
	a.output.SetDynamicColors(true).SetWordWrap(true)
	a.output.SetBorder(true).SetTitle(" expanded (Ctrl+Enter) ")

	a.status = tview.NewTextView()
	a.status.SetDynamicColors(true)
	a.status.SetTextAlign(tview.AlignLeft)

	a.help = rptview.NewHelpView(80)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.view, 0, 3, true).
		AddItem(a.output, 0, 1, false).
		AddItem(a.status, 1, 0, false)

	a.pages = tview.NewPages().
		AddPage(pageMain, flex, true, true).
		AddPage(pageHelp, a.help, true, false)

	a.app.SetInputCapture(a.captureKey)
	a.app.SetMouseCapture(func(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
		if x, y := event.Position(); !a.view.InRect(x, y) {
			a.view.Leave()
		}
		return event, action
	})
	a.app.SetBeforeDrawFunc(func(tcell.Screen) bool {
		a.updateStatusBar()
		return false
	})
	return a
}

func (a *editorApp) captureKey(event *tcell.EventKey) *tcell.EventKey {
	helpShown := a.helpVisible()
	switch event.Key() {
	case tcell.KeyCtrlQ:
		a.app.Stop()
		return nil
	case tcell.KeyF1:
		a.toggleHelp(!helpShown)
		return nil
	case tcell.KeyEscape:
		if helpShown {
			a.toggleHelp(false)
			return nil
		}
	case tcell.KeyCtrlS:
		a.save()
		return nil
	}
	return event
}

func (a *editorApp) helpVisible() bool {
	name, _ := a.pages.GetFrontPage()
	return name == pageHelp
}

func (a *editorApp) toggleHelp(show bool) {
	if show {
		a.view.Leave()
		a.pages.ShowPage(pageHelp)
		a.app.SetFocus(a.help)
		return
	}
	a.pages.HidePage(pageHelp)
	a.app.SetFocus(a.view)
}

// save writes the prompt back to its file.
func (a *editorApp) save() {
	path := a.path
	if path == "" {
		path = defaultSavePath
	}
	if err := os.WriteFile(path, []byte(a.view.Editor().Text()), 0o644); err != nil {
		logger.L(a.ctx).Warn("save failed", zap.String("file", path), zap.Error(err))
		a.message = "[red]save failed: " + tview.Escape(err.Error()) + "[-]"
		return
	}
	a.path = path
	a.message = "[green]saved[-]"
}

// expand resolves the prompt off the UI goroutine; reading wildcard files may
// take a while on a large collection.
func (a *editorApp) expand() {
	text := a.view.Editor().Text()
	seed := a.seed
	a.seed++
	e := expand.New(expand.DirSource{Dir: a.refresher.WildcardDir()}, cfg.Expand)

	a.message = "expanding..."
	go func() {
		out, err := e.Expand(a.ctx, text, seed)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.message = "[red]" + tview.Escape(err.Error()) + "[-]"
				return
			}
			a.output.SetText(tview.Escape(out))
			a.output.ScrollToBeginning()
			a.message = fmt.Sprintf("seed %d", seed)
		})
	}()
}

// updateStatusBar refreshes the status bar with the editor state.
func (a *editorApp) updateStatusBar() {
	editor := a.view.Editor()
	fileName := filepath.Base(a.path)
	if a.path == "" {
		fileName = "untitled"
	}
	line, col := lineCol(editor.Text(), editor.CaretOffset())

	keyColor := "gray"
	status := fmt.Sprintf(" [yellow]%s[-] | Ln %d, Col %d | Zoom %d%% | Undo:", tview.Escape(fileName), line, col,
		int(a.view.Zoom().Level()*100+0.5))
	status += indicator(editor.CanUndo(), "◀")
	status += " Redo:" + indicator(editor.CanRedo(), "▶")
	status += fmt.Sprintf(" | Expand:[%s]Ctrl+Enter[-] Save:[%s]Ctrl+S[-] Help:[%s]F1[-] Quit:[%s]Ctrl+Q[-]",
		keyColor, keyColor, keyColor, keyColor)
	if a.message != "" {
		status += " | " + a.message
	}
	a.status.SetText(status)
}

func indicator(active bool, symbol string) string {
	if active {
		return "[white]" + symbol + "[-]"
	}
	return "[gray]" + symbol + "[-]"
}

// lineCol returns the 1-based line and column of a rune offset.
func lineCol(text string, offset int) (line, col int) {
	line, col = 1, 1
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}
	return line, col
}
