// Package ui  Shortcuts for keyboard actions
package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"showcase/internal/input"
)

// fyneKeys maps Fyne key names onto the names used in keybindings.
var fyneKeys = map[fyne.KeyName]string{
	fyne.KeyEscape:    "Escape",
	fyne.KeyReturn:    "Enter",
	fyne.KeyEnter:     "Enter",
	fyne.KeySpace:     "Space",
	fyne.KeyTab:       "Tab",
	fyne.KeyBackspace: "Backspace",
	fyne.KeyDelete:    "Delete",
	fyne.KeyHome:      "Home",
	fyne.KeyEnd:       "End",
	fyne.KeyPageUp:    "PageUp",
	fyne.KeyPageDown:  "PageDown",
	fyne.KeyUp:        "ArrowUp",
	fyne.KeyDown:      "ArrowDown",
	fyne.KeyLeft:      "ArrowLeft",
	fyne.KeyRight:     "ArrowRight",
	fyne.KeyF1:        "F1",
	fyne.KeyF2:        "F2",
	fyne.KeyF3:        "F3",
	fyne.KeyF4:        "F4",
	fyne.KeyF5:        "F5",
	fyne.KeyF6:        "F6",
	fyne.KeyF7:        "F7",
	fyne.KeyF8:        "F8",
	fyne.KeyF9:        "F9",
	fyne.KeyF10:       "F10",
	fyne.KeyF11:       "F11",
	fyne.KeyF12:       "F12",
}

// namedKey translates a Fyne key name. Printable keys report false; they
// arrive through the typed rune callback instead.
func namedKey(name fyne.KeyName) (string, bool) {
	k, ok := fyneKeys[name]
	return k, ok
}

// fyneKeyName is the reverse of namedKey, used to register shortcuts.
// Character keys map onto Fyne's upper-case letter names.
func fyneKeyName(key string) fyne.KeyName {
	for fk, k := range fyneKeys {
		if k == key && fk != fyne.KeyEnter {
			return fk
		}
	}
	return fyne.KeyName(strings.ToUpper(key))
}

func modifiersFrom(m fyne.KeyModifier) input.Modifier {
	var mods input.Modifier
	if m&fyne.KeyModifierShift != 0 {
		mods |= input.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		mods |= input.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		mods |= input.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		mods |= input.ModSuper
	}
	return mods
}

func fyneModifiers(m input.Modifier) fyne.KeyModifier {
	var mods fyne.KeyModifier
	if m&input.ModShift != 0 {
		mods |= fyne.KeyModifierShift
	}
	if m&input.ModCtrl != 0 {
		mods |= fyne.KeyModifierControl
	}
	if m&input.ModAlt != 0 {
		mods |= fyne.KeyModifierAlt
	}
	if m&input.ModSuper != 0 {
		mods |= fyne.KeyModifierSuper
	}
	return mods
}

// currentModifiers asks the desktop driver which modifiers are held.
func currentModifiers() input.Modifier {
	app := fyne.CurrentApp()
	if app == nil {
		return 0
	}
	if drv, ok := app.Driver().(desktop.Driver); ok {
		return modifiersFrom(drv.CurrentKeyModifiers())
	}
	return 0
}

// chordBindings returns the bindings that need a Ctrl, Alt or Super modifier.
// Those never produce a typed rune and must be registered as shortcuts.
func chordBindings(km *input.Keymap) []input.KeyCombination {
	var chords []input.KeyCombination
	for _, a := range input.Actions() {
		for _, k := range km.Bindings()[a.Name] {
			kc, err := input.ParseKeyString(k)
			if err != nil {
				continue
			}
			if kc.Modifiers&(input.ModCtrl|input.ModAlt|input.ModSuper) != 0 {
				chords = append(chords, kc)
			}
		}
	}
	return chords
}

func (a *App) buildKeyboardShortcuts() {
	c := a.UI.MainWin.Canvas()

	// ctrl+q to quit application
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	for _, kc := range chordBindings(a.keymap) {
		ev := input.KeyEvent{Key: kc.Key, Modifiers: kc.Modifiers}
		c.AddShortcut(&desktop.CustomShortcut{
			KeyName:  fyneKeyName(kc.Key),
			Modifier: fyneModifiers(kc.Modifiers),
		}, func(_ fyne.Shortcut) { a.dispatcher.HandleKey(ev) })
	}

	c.SetOnTypedKey(func(key *fyne.KeyEvent) {
		name, ok := namedKey(key.Name)
		if !ok {
			return
		}
		if a.dispatcher.HandleKey(input.KeyEvent{Key: name, Modifiers: currentModifiers()}) {
			return
		}
		// page navigation while the lightbox is closed
		if currentModifiers()&input.ModAlt == 0 {
			return
		}
		switch key.Name {
		case fyne.KeyLeft:
			a.goBack()
		case fyne.KeyRight:
			a.goForward()
		}
	})

	c.SetOnTypedRune(func(r rune) {
		a.dispatcher.HandleKey(input.KeyEvent{Key: string(r)})
	})
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}
	return falseVal
}

func (a *App) showShortcuts() {
	actions := input.Actions()
	bindings := a.keymap.Bindings()
	shortcuts := make([]string, 0, len(actions)+2)
	descriptions := make([]string, 0, len(actions)+2)
	for _, act := range actions {
		descriptions = append(descriptions, act.Description)
		shortcuts = append(shortcuts, strings.Join(bindings[act.Name], ", "))
	}
	descriptions = append(descriptions, "Back / Forward", "Quit Application")
	shortcuts = append(shortcuts, "Alt+ArrowLeft, Alt+ArrowRight", "Ctrl+Q")

	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(descriptions) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			dataRowIndex := id.Row - 1

			if id.Col == 0 {
				label.SetText(ternary(isHeader, "Description", ternaryRow(descriptions, dataRowIndex)))
			} else {
				label.SetText(ternary(isHeader, "Shortcut", ternaryRow(shortcuts, dataRowIndex)))
			}
			label.TextStyle.Bold = isHeader
		},
	)
	table.SetColumnWidth(0, 250)
	table.SetColumnWidth(1, 250)
	win.SetContent(table)
	win.Resize(fyne.NewSize(500, 400))
	win.Show()
}

// ternaryRow guards the header row, where the data index is -1.
func ternaryRow(rows []string, i int) string {
	if i < 0 || i >= len(rows) {
		return ""
	}
	return rows[i]
}
