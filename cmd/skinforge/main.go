/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"skinforge/internal/assets"
	"skinforge/internal/config"
	"skinforge/internal/crash"
	"skinforge/internal/export"
	"skinforge/internal/library"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
	"skinforge/internal/telemetry"
	"skinforge/internal/ui"
	"skinforge/internal/version"
)

func usage() {
	fmt.Println("SkinForge — controller skin editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  skinforge version|-v|--version              Show version")
	fmt.Println("  skinforge open <path>                        Open a skin (dir or .deltaskin) and print a summary")
	fmt.Println("  skinforge validate <path>                    Check a skin manifest against the schema")
	fmt.Println("  skinforge export <path> [flags]              Render layout proofs (see export -h)")
	fmt.Println("  skinforge library [list|search <term>|remove <path>]")
	fmt.Println("  skinforge edit [<path>]                      Launch desktop editor (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var h *skin.Handle
	defer func() { crash.Recover(h) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("SkinForge — controller skin editor")
			fmt.Println(version.String())
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <path>")
				usage()
				os.Exit(2)
			}
			h = openSkin(l, args[2])
			fmt.Printf("Opened skin: %s\n", h.Skin.Name)
			fmt.Printf("Identifier: %s\n", h.Skin.Identifier)
			fmt.Printf("Representations: %d\n", len(h.Skin.Representations))
			for _, name := range h.RepresentationNames() {
				rep := h.Skin.Representations[name]
				fmt.Printf("  %s: %dx%d, %d items\n", name,
					rep.MappingSize.Width, rep.MappingSize.Height, len(rep.Items))
			}
			recordInLibrary(l, h)
			return
		case "validate":
			if len(args) < 3 {
				fmt.Println("validate requires <path>")
				usage()
				os.Exit(2)
			}
			h = openSkin(l, args[2])
			issues, err := skin.Validate(h)
			if err != nil {
				l.Error("validate failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(issues) == 0 {
				fmt.Println("Manifest is valid.")
				return
			}
			for _, iss := range issues {
				fmt.Println("  -", iss)
			}
			os.Exit(1)
		case "export":
			runExport(l, args[2:])
			return
		case "library":
			runLibrary(l, args[2:])
			return
		case "edit":
			var path string
			if len(args) >= 3 {
				path = args[2]
			}
			telemetry.Event("edit", nil)
			if err := ui.Run(path); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// openSkin opens a document or exits with a message.
func openSkin(l *slog.Logger, path string) *skin.Handle {
	abs, _ := filepath.Abs(path)
	l.Info("open skin", slog.String("path", abs))
	h, err := skin.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}

// recordInLibrary is best-effort; a broken catalog never blocks opening.
func recordInLibrary(l *slog.Logger, h *skin.Handle) {
	path, err := library.DefaultPath()
	if err != nil {
		l.Warn("library path unresolved", slog.Any("err", err))
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

func runExport(l *slog.Logger, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "pdf", "proof format: pdf or png")
	out := fs.String("out", "", "output file (pdf) or directory (png); defaults next to the skin")
	background := fs.Bool("background", true, "render the background asset into the proof")
	labels := fs.Bool("labels", false, "draw input labels (pdf only)")
	rep := fs.String("rep", "", "restrict to one representation")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("export requires <path>")
		usage()
		os.Exit(2)
	}

	h := openSkin(l, fs.Arg(0))
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	loader := assets.NewLoader(h.Source(), cfg.Editor.PDFRenderer)

	opt := export.ProofOptions{IncludeBackground: *background, Labels: *labels}
	if *rep != "" {
		opt.Representations = []string{*rep}
	}

	switch *format {
	case "pdf":
		dst := *out
		if dst == "" {
			dst = filepath.Join(filepath.Dir(h.Path), "proof.pdf")
		}
		if err := export.ProofPDF(h, loader, dst, opt); err != nil {
			l.Error("export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", dst)
	case "png":
		dst := *out
		if dst == "" {
			dst = filepath.Dir(h.Path)
		}
		if err := export.ProofPNG(h, loader, dst, opt); err != nil {
			l.Error("export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote proofs to", dst)
	default:
		fmt.Println("unknown format:", *format)
		os.Exit(2)
	}
	telemetry.Event("export", map[string]any{"format": *format})
}

func runLibrary(l *slog.Logger, args []string) {
	path, err := library.DefaultPath()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	cat, err := library.Open(path)
	if err != nil {
		l.Error("library open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer cat.Close()
	ctx := context.Background()

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		entries, err := cat.List(ctx)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		printEntries(entries)
	case "search":
		if len(args) < 2 {
			fmt.Println("library search requires <term>")
			os.Exit(2)
		}
		entries, err := cat.Search(ctx, args[1])
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		printEntries(entries)
	case "remove":
		if len(args) < 2 {
			fmt.Println("library remove requires <path>")
			os.Exit(2)
		}
		if err := cat.Remove(ctx, args[1]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Removed", args[1])
	default:
		fmt.Println("unknown library subcommand:", sub)
		os.Exit(2)
	}
}

func printEntries(entries []library.Entry) {
	if len(entries) == 0 {
		fmt.Println("Library is empty.")
		return
	}
	for _, e := range entries {
		kind := "dir"
		if e.Archive {
			kind = "archive"
		}
		fmt.Printf("%s\t%s\t%s\t%d reps\t%s\topened %d times\n",
			e.Name, e.Identifier, kind, e.Representations,
			e.LastOpened.Format("2006-01-02 15:04"), e.OpenCount)
	}
}
