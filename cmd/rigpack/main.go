// rigpack packs rig files into GRF archives and inspects the rigs inside them.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-anim/internal/rig"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/grf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "pack":
		err = cmdPack(args)
	case "list", "ls":
		err = cmdList(args)
	case "inspect", "i":
		err = cmdInspect(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rigpack - rig archive utility

Usage:
  rigpack <command> [options]

Commands:
  pack [-prefix dir] <out.grf> <file>...  Pack rig and model files into an archive
  list <file.grf> [pattern]               List entries (optional glob pattern)
  inspect <rig>                           Show the skeleton and tracks of a rig

Examples:
  rigpack pack -prefix data/rig rigs.grf walker.yaml wave.rsm
  rigpack list rigs.grf "*.rsm"
  rigpack inspect rigs.grf#data/rig/walker.yaml`)
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	prefix := fs.String("prefix", "data/rig", "Archive directory for packed files")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: rigpack pack [-prefix dir] <out.grf> <file>...")
	}

	files := make([]grf.File, 0, fs.NArg()-1)
	for _, path := range fs.Args()[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.Trim(*prefix, "/") + "/" + filepath.Base(path)
		files = append(files, grf.File{Name: strings.TrimPrefix(name, "/"), Data: data})
	}

	out, err := os.Create(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := grf.Write(out, files); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	for _, f := range files {
		fmt.Printf("Packed: %s (%d bytes)\n", f.Name, len(f.Data))
	}
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: rigpack list <file.grf> [pattern]")
	}

	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		entry, _ := archive.Stat(f)
		fmt.Printf("%-48s %8d\n", f, entry.UncompressedSize)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rigpack inspect <rig>")
	}

	r, err := rig.Load(args[0], nil)
	if err != nil {
		return err
	}
	h, err := r.Hierarchy()
	if err != nil {
		return err
	}

	fmt.Printf("Rig:    %s\n", r.Name)
	fmt.Printf("Joints: %d (%d skinned)\n", h.Len(), h.BoneCount())
	fmt.Println()
	printJoint(r.Skeleton, 0)

	fmt.Println()
	fmt.Println("Tracks:")
	for _, tr := range r.Tracks {
		a := anim.NewAnimator(h.Clone(), tr)
		fmt.Printf("  %-20s %6.2fs  %3d keyframes  %3d joints  pos=%s rot=%s\n",
			tr.Name, a.Duration(), len(tr.Keyframes()), len(tr.JointIDs()),
			tr.PositionInterp, tr.RotationInterp)
	}
	return nil
}

func printJoint(j anim.JointSpec, depth int) {
	skin := "-"
	if j.SkinIndex != anim.NoSkin {
		skin = fmt.Sprint(j.SkinIndex)
	}
	t := j.BindLocal.Translation()
	fmt.Printf("%s%s [skin %s] (%.3f, %.3f, %.3f)\n",
		strings.Repeat("  ", depth), j.ID, skin, t.X, t.Y, t.Z)
	for _, c := range j.Children {
		printJoint(c, depth+1)
	}
}
