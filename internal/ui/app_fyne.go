//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"skinforge/internal/assets"
	"skinforge/internal/canvas"
	"skinforge/internal/config"
	"skinforge/internal/crash"
	"skinforge/internal/editor"
	"skinforge/internal/export"
	"skinforge/internal/library"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
)

// Run starts the Fyne-based desktop editor. An optional skin path is opened
// immediately; otherwise the File menu offers Open.
func Run(skinPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	var h *skin.Handle
	defer func() { crash.Recover(h) }()

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}

	fyneApp := app.NewWithID("skinforge")
	w := fyneApp.NewWindow("SkinForge")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("")
	sc := NewSkinCanvas()
	sc.nudgeStep = cfg.Editor.NudgeStep

	repSelect := widget.NewSelect(nil, nil)

	loadRepresentation := func(name string) {
		if h == nil {
			return
		}
		repCfg, err := h.Representation(name)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		scene := canvas.NewScene()
		loader := assets.NewLoader(h.Source(), cfg.Editor.PDFRenderer)
		rep, err := editor.New(scene, loader, editor.StatusFunc(func(text string) {
			status.SetText(text)
		}), repCfg)
		if err != nil {
			l.Error("representation load failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		rep.SetNudgeStep(cfg.Editor.NudgeStep)
		sc.SetScene(scene, rep)
		w.Canvas().Focus(sc)
	}

	openSkin := func(path string) {
		nh, err := skin.Open(path)
		if err != nil {
			l.Error("open failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		h = nh
		w.SetTitle(fmt.Sprintf("SkinForge — %s", h.Skin.Name))
		names := h.RepresentationNames()
		repSelect.Options = names
		repSelect.Refresh()
		if len(names) > 0 {
			repSelect.SetSelected(names[0])
		}
		recordInLibrary(l, h)
	}

	repSelect.OnChanged = loadRepresentation

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() {
			dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
				if err != nil || lu == nil {
					return
				}
				openSkin(lu.Path())
			}, w)
		}),
		fyne.NewMenuItem("Save", func() {
			if h == nil {
				return
			}
			if err := skin.Save(h); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Saved.")
		}),
		fyne.NewMenuItem("Export PDF Proof…", func() {
			if h == nil {
				return
			}
			dialog.ShowFileSave(func(wr fyne.URIWriteCloser, err error) {
				if err != nil || wr == nil {
					return
				}
				out := wr.URI().Path()
				_ = wr.Close()
				loader := assets.NewLoader(h.Source(), cfg.Editor.PDFRenderer)
				if err := export.ProofPDF(h, loader, out,
					export.ProofOptions{IncludeBackground: true, Labels: true}); err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported " + filepath.Base(out))
			}, w)
		}),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	top := container.NewHBox(widget.NewLabel("Representation:"), repSelect)
	content := container.NewBorder(top, status, nil, nil, container.NewScroll(sc))
	w.SetContent(content)

	if skinPath != "" {
		openSkin(skinPath)
	}

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	w.ShowAndRun()
	return nil
}

func recordInLibrary(l *slog.Logger, h *skin.Handle) {
	path, err := library.DefaultPath()
	if err != nil {
		return
	}
	cat, err := library.Open(path)
	if err != nil {
		l.Warn("library open failed", slog.Any("err", err))
		return
	}
	defer cat.Close()
	if err := cat.Record(context.Background(), h); err != nil {
		l.Warn("library record failed", slog.Any("err", err))
	}
}

// SkinCanvas mirrors the editor's display list into Fyne objects and
// forwards pointer and keyboard events to the interaction engine.
type SkinCanvas struct {
	widget.BaseWidget

	scene *canvas.Scene
	rep   *editor.Representation

	shiftDown bool
	nudgeStep int
}

func NewSkinCanvas() *SkinCanvas {
	sc := &SkinCanvas{nudgeStep: 1}
	sc.ExtendBaseWidget(sc)
	return sc
}

// SetScene swaps in a freshly loaded representation.
func (sc *SkinCanvas) SetScene(scene *canvas.Scene, rep *editor.Representation) {
	sc.scene = scene
	sc.rep = rep
	sc.Refresh()
}

// PreferredSize reports the background size, or a default while empty.
func (sc *SkinCanvas) PreferredSize() fyne.Size {
	if sc.rep != nil {
		ms := sc.rep.MappingSize()
		return fyne.NewSize(float32(ms.Width), float32(ms.Height))
	}
	return fyne.NewSize(640, 480)
}

func (sc *SkinCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &skinCanvasRenderer{sc: sc}
	r.rebuild()
	return r
}

// Tapped selects the region under the pointer.
func (sc *SkinCanvas) Tapped(e *fyne.PointEvent) {
	if sc.rep == nil {
		return
	}
	sc.rep.SelectRegion(int(e.Position.X), int(e.Position.Y))
	sc.Refresh()
}

// TappedSecondary clears the selection.
func (sc *SkinCanvas) TappedSecondary(_ *fyne.PointEvent) {
	if sc.rep == nil {
		return
	}
	sc.rep.DeselectRegion()
	sc.Refresh()
}

func (sc *SkinCanvas) Dragged(e *fyne.DragEvent) {
	if sc.rep == nil {
		return
	}
	sc.rep.Drag(int(e.Position.X), int(e.Position.Y))
	sc.Refresh()
}

func (sc *SkinCanvas) DragEnd() {
	if sc.rep == nil {
		return
	}
	sc.rep.DragStop()
}

// Keyboard: arrows move or resize depending on the interaction mode; shift
// is tracked across KeyDown/KeyUp.
func (sc *SkinCanvas) KeyDown(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyLeftShift, fyne.KeyRightShift:
		sc.shiftDown = true
	}
}

func (sc *SkinCanvas) KeyUp(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyLeftShift, fyne.KeyRightShift:
		sc.shiftDown = false
	}
}

func (sc *SkinCanvas) TypedKey(e *fyne.KeyEvent) {
	if sc.rep == nil {
		return
	}
	var dir editor.Direction
	switch e.Name {
	case fyne.KeyUp:
		dir = editor.DirUp
	case fyne.KeyDown:
		dir = editor.DirDown
	case fyne.KeyLeft:
		dir = editor.DirLeft
	case fyne.KeyRight:
		dir = editor.DirRight
	case fyne.KeyEscape:
		sc.rep.DeselectRegion()
		sc.Refresh()
		return
	default:
		return
	}
	var mods editor.Modifier
	if sc.shiftDown {
		mods |= editor.ModShift
	}
	sc.rep.ArrowKey(dir, mods)
	sc.Refresh()
}

func (sc *SkinCanvas) TypedRune(_ rune) {}
func (sc *SkinCanvas) FocusGained()     {}
func (sc *SkinCanvas) FocusLost()       { sc.shiftDown = false }

type skinCanvasRenderer struct {
	sc      *SkinCanvas
	objects []fyne.CanvasObject
}

func (r *skinCanvasRenderer) Destroy()                     {}
func (r *skinCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *skinCanvasRenderer) MinSize() fyne.Size           { return r.sc.PreferredSize() }
func (r *skinCanvasRenderer) Layout(_ fyne.Size)           {}

func (r *skinCanvasRenderer) Refresh() {
	r.rebuild()
	fcanvas.Refresh(r.sc)
}

// rebuild recreates the object list from the display list so draw order and
// geometry always match the engine's view of the scene.
func (r *skinCanvasRenderer) rebuild() {
	if r.sc.scene == nil {
		r.objects = nil
		return
	}
	items := r.sc.scene.Items()
	objs := make([]fyne.CanvasObject, 0, len(items))
	for _, it := range items {
		if it.Image != nil {
			img := fcanvas.NewImageFromImage(it.Image)
			img.FillMode = fcanvas.ImageFillStretch
			img.Move(fyne.NewPos(float32(it.Rect.X), float32(it.Rect.Y)))
			img.Resize(fyne.NewSize(float32(it.Rect.W), float32(it.Rect.H)))
			objs = append(objs, img)
			continue
		}
		rect := fcanvas.NewRectangle(it.Style.Fill)
		rect.Move(fyne.NewPos(float32(it.Rect.X), float32(it.Rect.Y)))
		rect.Resize(fyne.NewSize(float32(it.Rect.W), float32(it.Rect.H)))
		objs = append(objs, rect)
	}
	r.objects = objs
}
