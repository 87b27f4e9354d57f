package ui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"showcase/internal/service"
)

// ThumbnailManager handles generation and caching of icon and screenshot
// thumbnails.
type ThumbnailManager struct {
	cache      map[string]fyne.Resource
	pending    map[string][]func(fyne.Resource)
	cacheMutex sync.Mutex
	images     *service.ImageService
	logger     func(string)
}

// NewThumbnailManager creates a new thumbnail manager.
func NewThumbnailManager(images *service.ImageService, logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		cache:   make(map[string]fyne.Resource),
		pending: make(map[string][]func(fyne.Resource)),
		images:  images,
		logger:  logger,
	}
}

// GetThumbnail returns the cached thumbnail for ref, or a placeholder while
// it is generated; onComplete then receives the real resource on the UI
// goroutine. Concurrent requests for the same ref share one load.
func (tm *ThumbnailManager) GetThumbnail(ref string, onComplete func(fyne.Resource)) fyne.Resource {
	tm.cacheMutex.Lock()
	if res, ok := tm.cache[ref]; ok {
		tm.cacheMutex.Unlock()
		return res
	}
	waiting, loading := tm.pending[ref]
	tm.pending[ref] = append(waiting, onComplete)
	tm.cacheMutex.Unlock()

	if !loading {
		go tm.load(ref)
	}
	return theme.FileImageIcon()
}

func (tm *ThumbnailManager) load(ref string) {
	res, err := tm.generate(ref)

	tm.cacheMutex.Lock()
	callbacks := tm.pending[ref]
	delete(tm.pending, ref)
	if err == nil {
		tm.cache[ref] = res
	}
	tm.cacheMutex.Unlock()

	if err != nil {
		if tm.logger != nil {
			fyne.Do(func() { tm.logger("Thumbnail error for " + ref + ": " + err.Error()) })
		}
		return
	}
	fyne.Do(func() {
		for _, cb := range callbacks {
			if cb != nil {
				cb(res)
			}
		}
	})
}

func (tm *ThumbnailManager) generate(ref string) (fyne.Resource, error) {
	_, img, err := tm.images.Load(context.Background(), ref)
	if err != nil {
		return nil, err
	}
	thumb := tm.images.Thumbnail(img, service.ThumbnailWidth, service.ThumbnailHeight)
	data, err := service.EncodePNG(thumb)
	if err != nil {
		return nil, err
	}
	return fyne.NewStaticResource(ref, data), nil
}
