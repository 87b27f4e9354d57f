// Package ui  Setup for the Showcase Application
package ui

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"showcase/internal/catalog"
	"showcase/internal/config"
	"showcase/internal/history"
	"showcase/internal/input"
	"showcase/internal/present"
	"showcase/internal/registry"
	"showcase/internal/service"
	"showcase/internal/transition"
	"showcase/internal/viewer"
)

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app     fyne.App
	UI      UI
	cfg     *config.Config
	version string

	source      catalog.Source
	closeSource func() error
	records     catalog.Records
	loaded      bool
	loadErr     error
	views       *service.ViewManager

	registry   *registry.Registry
	viewer     *viewer.Viewer
	dispatcher *input.Dispatcher
	presenter  *present.Presenter
	lightbox   *Lightbox
	keymap     *input.Keymap

	images       *service.ImageService
	thumbnails   *ThumbnailManager
	trail        *history.Trail
	logUIManager *LogUIManager
}

// UI holds the main window widgets.
type UI struct {
	MainWin    fyne.Window
	mainModKey fyne.KeyModifier

	pageScroll  *container.Scroll
	backBtn     *widget.Button
	forwardBtn  *widget.Button
	filterEntry *widget.Entry

	statusLabel      *widget.Label
	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

// asyncSaver runs downloads off the UI goroutine. Failures are reported
// through log once the copy ends.
type asyncSaver struct {
	d   *service.Downloader
	log func(string)
}

func (s asyncSaver) Save(src, filename string) error {
	go func() {
		if err := s.d.Save(src, filename); err != nil {
			s.log("Download failed: " + err.Error())
		}
	}()
	return nil
}

// addLogMessage adds a message to the UI log display.
func (a *App) addLogMessage(message string) {
	if a.logUIManager != nil {
		a.logUIManager.AddLogMessage(message)
		return
	}
	log.Printf("LogUIManager not ready, console log: %s", message)
}

// asyncLog is addLogMessage for callers off the UI goroutine.
func (a *App) asyncLog(message string) {
	fyne.Do(func() { a.addLogMessage(message) })
}

// updateStatusBar updates the text of the status bar.
func (a *App) updateStatusBar() {
	if a.UI.statusLabel == nil {
		return
	}
	text := "Loading catalog..."
	switch {
	case a.loadErr != nil:
		text = "Catalog unavailable"
	case a.loaded:
		text = fmt.Sprintf("%d programs", len(a.records))
		if q := a.views.Query(); q != "" {
			text = fmt.Sprintf("%d of %d programs match %q", a.views.Count(), len(a.records), q)
		}
	}
	if p, ok := a.trail.Current(); ok && !p.IsLanding() {
		text += "  |  " + p.RecordID
	}
	a.UI.statusLabel.SetText(text)
}

// reload fetches the catalog in the background and re-renders on arrival.
func (a *App) reload() {
	a.loaded, a.loadErr = false, nil
	a.render()

	timeout := a.cfg.FetchTimeout()
	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		records, err := a.source.Fetch(ctx)
		fyne.Do(func() { a.catalogLoaded(records, err) })
	}()
}

func (a *App) catalogLoaded(records catalog.Records, err error) {
	if err != nil {
		a.loadErr = err
		a.addLogMessage(fmt.Sprintf("Catalog %s: %v", a.cfg.Source, err))
		// a failed fetch always lands on the catalog page
		a.trail.Visit(history.Landing)
		a.render()
		return
	}
	a.records = records
	a.loaded = true
	a.views.SetRecords(records)
	a.addLogMessage(fmt.Sprintf("Loaded %d programs from %s", len(records), a.cfg.Source))
	a.render()
}

func (a *App) applyFilter(query string) {
	a.views.ApplyFilter(query)
	if p, ok := a.trail.Current(); ok && p.IsLanding() {
		a.render()
		return
	}
	a.updateStatusBar()
}

func (a *App) lockPageScroll(locked bool) {
	if locked {
		a.UI.pageScroll.Direction = container.ScrollNone
	} else {
		a.UI.pageScroll.Direction = container.ScrollVerticalOnly
	}
	a.UI.pageScroll.Refresh()
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.UI.statusLabel = widget.NewLabel("")
	a.UI.statusLogLabel = widget.NewLabel("")
	a.UI.statusLogLabel.Truncation = fyne.TextTruncateEllipsis
	a.UI.statusLogUpBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		a.logUIManager.ShowPreviousLogMessage()
	})
	a.UI.statusLogDownBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		a.logUIManager.ShowNextLogMessage()
	})
	a.logUIManager = NewLogUIManager(a.UI.statusLogLabel, a.UI.statusLogUpBtn, a.UI.statusLogDownBtn, DefaultMaxLogMessages)
	a.logUIManager.UpdateLogDisplay()

	return container.NewBorder(nil, nil, a.UI.statusLabel,
		container.NewHBox(a.UI.statusLogUpBtn, a.UI.statusLogDownBtn),
		a.UI.statusLogLabel)
}

func (a *App) buildToolbar() fyne.CanvasObject {
	a.UI.backBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.goBack)
	a.UI.forwardBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.goForward)
	home := widget.NewButtonWithIcon("", theme.HomeIcon(), func() { a.showPage(history.Landing) })
	refresh := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), a.reload)

	a.UI.filterEntry = widget.NewEntry()
	a.UI.filterEntry.SetPlaceHolder("Filter programs")
	a.UI.filterEntry.OnChanged = a.applyFilter

	return container.NewBorder(nil, nil,
		container.NewHBox(a.UI.backBtn, a.UI.forwardBtn, home, refresh),
		nil,
		a.UI.filterEntry)
}

func (a *App) showLog() {
	msgs := a.logUIManager.Messages()
	win := a.app.NewWindow("Log")
	list := widget.NewList(
		func() int { return len(msgs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(msgs[id])
		},
	)
	win.SetContent(list)
	win.Resize(fyne.NewSize(700, 400))
	win.Show()
}

func (a *App) buildMainUI() fyne.CanvasObject {
	a.UI.MainWin.SetMaster()
	// set main mod key to super on darwin hosts, else set it to ctrl
	if runtime.GOOS == "darwin" {
		a.UI.mainModKey = fyne.KeyModifierSuper
	} else {
		a.UI.mainModKey = fyne.KeyModifierControl
	}

	toolbar := a.buildToolbar()
	status := a.buildStatusBar()
	a.UI.pageScroll = container.NewVScroll(widget.NewLabel(""))

	about := NewAbout(a.UI.MainWin, "About Showcase", a.version, a.cfg.Source)
	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Reload Catalog", a.reload),
			fyne.NewMenuItem("Show Log", a.showLog),
		),
		fyne.NewMenu("View",
			fyne.NewMenuItem("Catalog", func() { a.showPage(history.Landing) }),
			fyne.NewMenuItem("Back", a.goBack),
			fyne.NewMenuItem("Forward", a.goForward),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
			fyne.NewMenuItem("About", about.Show),
		),
	)
	a.UI.MainWin.SetMainMenu(mainMenu)
	a.buildKeyboardShortcuts()

	return container.NewBorder(
		toolbar, // Top
		status,  // Bottom
		nil,
		nil,
		container.NewStack(a.UI.pageScroll, a.lightbox),
	)
}

// CreateApplication is the GUI entrypoint. startID, when set, opens that
// program's page once the catalog has loaded.
func CreateApplication(cfg *config.Config, version, startID string) error {
	keymap, err := cfg.Keymap()
	if err != nil {
		return fmt.Errorf("keybindings: %w", err)
	}
	settings, err := cfg.InputSettings()
	if err != nil {
		return fmt.Errorf("zoom modifiers: %w", err)
	}

	a := app.NewWithID("io.github.showcase")
	a.Settings().SetTheme(NewShowcaseTheme(a.Settings().Theme()))

	ui := &App{
		app:      a,
		cfg:      cfg,
		version:  version,
		keymap:   keymap,
		registry: registry.New(),
		viewer:   viewer.New(cfg.ViewerOptions()...),
		views:    service.NewViewManager(nil),
		trail:    history.NewTrail(cfg.HistorySize),
	}

	// the window does not exist yet, so store messages go to the console
	storeLog := func(msg string) { log.Printf("catalog store: %s", msg) }
	ui.source, ui.closeSource, err = service.OpenSource(cfg.Source, cfg.FetchTimeout(), storeLog)
	if err != nil {
		return err
	}

	ui.images = service.NewImageService(service.SourceBaseDir(cfg.Source), cfg.FetchTimeout())
	ui.thumbnails = NewThumbnailManager(ui.images, ui.addLogMessage)
	downloader := service.NewDownloader(ui.images, cfg.DownloadDir, ui.asyncLog)

	ps := cfg.PresentSettings()
	ui.lightbox = NewLightbox(ui.images, ps.FadeOut, ui.addLogMessage)
	ui.presenter = present.NewPresenter(ui.lightbox, transition.NewTimerScheduler(fyne.Do), ps)
	ui.dispatcher = input.NewDispatcher(ui.viewer, ui.registry, ui.presenter,
		input.WithKeymap(keymap),
		input.WithSettings(settings),
		input.WithSaver(asyncSaver{d: downloader, log: ui.asyncLog}),
		input.WithLogger(ui.addLogMessage),
	)
	ui.lightbox.SetDispatcher(ui.dispatcher)
	ui.lightbox.OnLockScroll = ui.lockPageScroll
	ui.lightbox.OnImageLoaded = ui.presenter.Fit

	ui.UI.MainWin = a.NewWindow("Showcase")
	ui.UI.MainWin.SetCloseIntercept(func() {
		if err := ui.closeSource(); err != nil {
			log.Printf("Error closing catalog source: %v", err)
		}
		ui.UI.MainWin.Close()
	})
	ui.UI.MainWin.SetContent(ui.buildMainUI())
	ui.UI.MainWin.Resize(fyne.NewSize(1200, 800))
	ui.UI.MainWin.CenterOnScreen()

	ui.trail.Visit(history.Landing)
	if startID != "" {
		ui.trail.Visit(history.Page{RecordID: startID})
	}
	ui.reload()

	ui.UI.MainWin.ShowAndRun()
	return nil
}
