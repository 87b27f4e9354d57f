package ui

import (
	"context"
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"showcase/internal/catalog"
	"showcase/internal/history"
	"showcase/internal/input"
	"showcase/internal/service"
)

var (
	cardSize    = fyne.NewSize(280, 250)
	iconSize    = fyne.NewSize(64, 64)
	galleryItem = fyne.NewSize(service.ThumbnailWidth, service.ThumbnailHeight)
)

// parseURL returns nil unless link is an absolute http(s) URL.
func parseURL(link string) *url.URL {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	return u
}

// thumbnail returns a tappable image showing ref's thumbnail once it loads.
func (a *App) thumbnail(ref string, size fyne.Size, onTapped func()) *tappableImage {
	ti := newTappableImage(theme.FileImageIcon(), size, onTapped)
	if ref != "" {
		ti.SetResource(a.thumbnails.GetThumbnail(ref, ti.SetResource))
	}
	return ti
}

func (a *App) buildLandingPage() fyne.CanvasObject {
	switch {
	case a.loadErr != nil:
		msg := widget.NewLabel(a.loadErr.Error())
		msg.Wrapping = fyne.TextWrapWord
		return container.NewVBox(
			widget.NewLabelWithStyle("The catalog could not be loaded.", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			msg,
			widget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), a.reload),
		)
	case !a.loaded:
		return container.NewVBox(widget.NewLabel("Loading catalog..."), widget.NewProgressBarInfinite())
	}

	list := a.views.GetCurrentList()
	if len(list) == 0 {
		if a.views.Query() != "" {
			return widget.NewLabel(fmt.Sprintf("No programs match %q.", a.views.Query()))
		}
		return widget.NewLabel("The catalog is empty.")
	}
	cards := make([]fyne.CanvasObject, 0, len(list))
	for _, rec := range list {
		cards = append(cards, a.programCard(rec))
	}
	return container.NewGridWrap(cardSize, cards...)
}

func (a *App) programCard(rec catalog.Record) fyne.CanvasObject {
	page := history.Page{RecordID: rec.ID}
	open := func() { a.showPage(page) }

	var icon *tappableImage
	if rec.Icon != "" {
		icon = a.thumbnail(rec.Icon, iconSize, open)
	} else {
		icon = newTappableImage(theme.ComputerIcon(), iconSize, open)
	}
	desc := widget.NewLabel(rec.Description)
	desc.Wrapping = fyne.TextWrapWord
	details := widget.NewButtonWithIcon("Details", theme.InfoIcon(), open)

	return widget.NewCard(rec.Title, "", container.NewBorder(icon, details, nil, nil, desc))
}

// buildDetailsPage renders one program and registers it so its gallery
// clicks resolve.
func (a *App) buildDetailsPage(rec *catalog.Record) fyne.CanvasObject {
	a.registry.Register(rec)

	icon := a.thumbnail(rec.Icon, iconSize, nil)
	if rec.Icon == "" {
		icon.SetResource(theme.ComputerIcon())
	}
	title := widget.NewLabelWithStyle(rec.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	body := widget.NewLabel(rec.LongDescription)
	body.Wrapping = fyne.TextWrapWord

	var download fyne.CanvasObject = widget.NewLabel("")
	if u := parseURL(rec.DownloadLink); u != nil {
		download = widget.NewHyperlink("Download "+rec.Title, u)
	} else if rec.DownloadLink != "" {
		download = widget.NewLabel("Download: " + rec.DownloadLink)
	}

	var gallery fyne.CanvasObject = widget.NewLabel("No screenshots.")
	if len(rec.Screenshots) > 0 {
		items := make([]fyne.CanvasObject, 0, len(rec.Screenshots))
		for _, shot := range rec.Screenshots {
			click := input.ClickEvent{Target: input.TargetGalleryItem, ImageSource: shot, RecordID: rec.ID}
			items = append(items, a.thumbnail(shot, galleryItem, func() { a.dispatcher.HandleClick(click) }))
		}
		gallery = container.NewGridWrap(galleryItem, items...)
	}

	return container.NewVBox(
		container.NewBorder(nil, nil, icon, nil, title),
		body,
		download,
		widget.NewSeparator(),
		widget.NewLabelWithStyle(fmt.Sprintf("Screenshots (%d)", len(rec.Screenshots)), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		gallery,
	)
}

// showPage visits p and renders it.
func (a *App) showPage(p history.Page) {
	a.trail.Visit(p)
	a.render()
}

func (a *App) goBack() {
	if _, ok := a.trail.Back(); ok {
		a.render()
	}
}

func (a *App) goForward() {
	if _, ok := a.trail.Forward(); ok {
		a.render()
	}
}

// render draws the current page. A details page whose program is not in the
// loaded catalog falls back to the landing page.
func (a *App) render() {
	a.closeViewer()

	p, _ := a.trail.Current()
	var content fyne.CanvasObject
	if p.IsLanding() || !a.loaded {
		content = a.buildLandingPage()
	} else {
		rec, err := catalog.Find(context.Background(), a.records, p.RecordID)
		if err != nil {
			a.addLogMessage(fmt.Sprintf("%v, returning to the catalog", err))
			a.trail.Forget(p.RecordID)
			a.showPage(history.Landing)
			return
		}
		content = a.buildDetailsPage(rec)
	}

	a.UI.pageScroll.Content = content
	a.UI.pageScroll.Refresh()
	a.UI.pageScroll.ScrollToTop()
	a.updateNavigation()
	a.updateStatusBar()
}

func (a *App) closeViewer() {
	if a.viewer.IsOpen() {
		a.dispatcher.Execute(input.ActionClose)
	}
}

func (a *App) updateNavigation() {
	if a.UI.backBtn == nil {
		return
	}
	if a.trail.CanBack() {
		a.UI.backBtn.Enable()
	} else {
		a.UI.backBtn.Disable()
	}
	if a.trail.CanForward() {
		a.UI.forwardBtn.Enable()
	} else {
		a.UI.forwardBtn.Disable()
	}
}
