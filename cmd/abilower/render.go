package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/llir/llvm/ir"
	"github.com/mattn/go-runewidth"

	"abilower/internal/abi"
	"abilower/internal/driver"
)

var (
	headerColor     = color.New(color.Bold)
	nameColor       = color.New(color.FgCyan, color.Bold)
	indirectColor   = color.New(color.FgYellow)
	bitcastColor    = color.New(color.FgGreen)
	longDoubleColor = color.New(color.FgMagenta)
	flagColor       = color.New(color.Faint)
	plainColor      = color.New(color.Reset)
)

// maxCellWidth truncates long low-level types in the pretty table.
const maxCellWidth = 40

func renderJSON(w io.Writer, b *driver.Batch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

func renderLLVM(w io.Writer, out *driver.Output) error {
	m := ir.NewModule()
	m.TargetTriple = out.Program.Target.Triple
	for _, sig := range out.Program.Signatures {
		abi.Declare(m, sig)
	}
	_, err := io.WriteString(w, m.String())
	return err
}

func renderPretty(w io.Writer, b *driver.Batch) error {
	if _, err := fmt.Fprintf(w, "%s %s (%s)\n\n", headerColor.Sprint("target"), b.Triple, b.ABI); err != nil {
		return err
	}
	for i := range b.Signatures {
		if err := renderSignature(w, &b.Signatures[i]); err != nil {
			return err
		}
	}
	return nil
}

func renderSignature(w io.Writer, s *driver.SignatureResult) error {
	var flags []string
	flags = append(flags, "extern("+s.Linkage+")")
	if s.Variadic != abi.VariadicNone.String() {
		flags = append(flags, "variadic="+s.Variadic)
	}
	if s.SRet {
		flags = append(flags, "sret")
	}
	if s.ThisBeforeSRet && s.HasThis {
		flags = append(flags, "this-before-sret")
	}
	if s.ReverseParams {
		flags = append(flags, "reversed")
	}
	flags = append(flags, fmt.Sprintf("stack=%d", s.StackSize))
	if _, err := fmt.Fprintf(w, "%s  %s\n", nameColor.Sprint(s.Name), flagColor.Sprint(strings.Join(flags, " "))); err != nil {
		return err
	}

	rows := [][]string{{"slot", "type", "strategy", "ltype", "attrs"}}
	ret := s.Ret
	retStrategy := strategyLabel(ret)
	if s.SRet {
		retStrategy = "sret"
	}
	loc := s.ReturnLocation
	if loc == "" {
		loc = "-"
	}
	rows = append(rows, []string{"ret", refLabel(ret), retStrategy, ret.LType + " @" + loc, ret.Attrs})
	for i, p := range s.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		rows = append(rows, []string{name, refLabel(p), strategyLabel(p), p.LType, p.Attrs})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}
	for r, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for c, cell := range row {
			cell = runewidth.Truncate(cell, maxCellWidth, "…")
			padded := runewidth.FillRight(cell, widths[c])
			switch {
			case r == 0:
				padded = headerColor.Sprint(padded)
			case c == 2:
				padded = strategyColor(cell).Sprint(padded)
			}
			line.WriteString(padded)
			if c < len(row)-1 {
				line.WriteString("  ")
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}

	var phys []string
	for _, p := range s.Physical {
		phys = append(phys, fmt.Sprintf("%s=%s", p.Name, p.Location))
	}
	if len(phys) > 0 {
		if _, err := fmt.Fprintf(w, "  %s %s\n", headerColor.Sprint("call:"), strings.Join(phys, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func refLabel(s driver.SlotResult) string {
	if s.ByRef {
		return "ref " + s.Type
	}
	return s.Type
}

func strategyLabel(s driver.SlotResult) string {
	switch s.Strategy {
	case abi.StrategyIndirectCopy.String():
		return fmt.Sprintf("indirect(align=%d)", s.Align)
	case abi.StrategyIntegerBitcast.String():
		return fmt.Sprintf("bitcast(i%d)", s.Width)
	default:
		return s.Strategy
	}
}

func strategyColor(label string) *color.Color {
	switch {
	case strings.HasPrefix(label, abi.StrategyIndirectCopy.String()), label == "sret":
		return indirectColor
	case strings.HasPrefix(label, abi.StrategyIntegerBitcast.String()):
		return bitcastColor
	case label == abi.StrategyLongDouble.String():
		return longDoubleColor
	default:
		return plainColor
	}
}
