package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/stepcost/internal/config"
	"github.com/verte-zerg/stepcost/internal/layout"
	"github.com/verte-zerg/stepcost/internal/layoutfile"
)

var (
	layoutFormat string
	layoutOut    string
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect, check and export keyboard layouts",
	}

	exportCmd := &cobra.Command{
		Use:   "export [layout]",
		Short: "Write a layout description (default: the --layout in use)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLayoutExportCmd,
	}
	exportCmd.Flags().StringVar(&layoutFormat, "format", "", "yaml, toml or json (default: from --out, else yaml)")
	exportCmd.Flags().StringVar(&layoutOut, "out", "", "output file (default: stdout)")

	checkCmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate layout files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLayoutCheckCmd,
	}

	showCmd := &cobra.Command{
		Use:   "show [layout]",
		Short: "List the sections and keys of a layout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLayoutShowCmd,
	}

	cmd.AddCommand(exportCmd, checkCmd, showCmd)
	return cmd
}

func loadLayout(ref string) (*layout.Layout, error) {
	l, err := layoutfile.Open(ref, config.DefaultLayoutDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	return l, nil
}

func layoutRef(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return scoring.LayoutPath
}

func exportFormat(format, out string) (layoutfile.Format, error) {
	if format != "" {
		return layoutfile.ParseFormat(format)
	}
	if out != "" {
		return layoutfile.FormatFromPath(out)
	}
	return layoutfile.YAML, nil
}

func runLayoutExportCmd(cmd *cobra.Command, args []string) error {
	l, err := loadLayout(layoutRef(args))
	if err != nil {
		return err
	}
	format, err := exportFormat(layoutFormat, layoutOut)
	if err != nil {
		return err
	}
	desc := layoutfile.Describe(l)
	if layoutOut == "" {
		return layoutfile.Encode(cmd.OutOrStdout(), desc, format)
	}
	f, err := os.Create(layoutOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", layoutOut, err)
	}
	if err := layoutfile.Encode(f, desc, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", layoutOut, err)
	}
	logErrf("Wrote %s\n", layoutOut)
	return nil
}

func runLayoutCheckCmd(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		l, err := layoutfile.Load(path)
		if err != nil {
			failed++
			logErrf("%v\n", err)
			continue
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, %d sections, %d keys)\n", path, l.Name(), l.SectionCount(), l.TargetCount()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d layout files are invalid", failed, len(args))
	}
	return nil
}

func runLayoutShowCmd(cmd *cobra.Command, args []string) error {
	l, err := loadLayout(layoutRef(args))
	if err != nil {
		return err
	}
	return renderLayout(cmd.OutOrStdout(), l)
}

func renderLayout(w io.Writer, l *layout.Layout) error {
	size := l.Size()
	if _, err := fmt.Fprintf(w, "%s (%.1f x %.1f cm)\n", l.Name(), size.Width, size.Height); err != nil {
		return err
	}
	home := map[int]string{l.HomeLeft(): "home left", l.HomeRight(): "home right"}
	for i := 0; i < l.SectionCount(); i++ {
		s := l.Section(i)
		keys := make([]string, 0, len(s.Targets))
		for _, idx := range s.Targets {
			if t := l.Target(idx); !t.Twin {
				keys = append(keys, layout.Label(t.Name))
			}
		}
		note := ""
		if h, ok := home[i]; ok {
			note = " [" + h + "]"
		}
		if _, err := fmt.Fprintf(w, "  %-16s %-5s (%5.1f, %5.1f)%s\n    %s\n",
			s.Name, s.Hand, s.Center.X, s.Center.Y, note, strings.Join(keys, " ")); err != nil {
			return err
		}
	}
	for _, r := range l.DuplicateRules() {
		if _, err := fmt.Fprintf(w, "  duplicate %s: %s near %s, else %s\n",
			r.Name, r.Preferred, strings.Join(r.NearSections, ", "), r.Default); err != nil {
			return err
		}
	}
	return nil
}
