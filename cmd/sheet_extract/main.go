package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/rollkeeper/rollkeeper/internal/sheet"
	"github.com/rollkeeper/rollkeeper/internal/sheet/pipeline"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	aliasOverlay = flag.String("aliases", "", "Optional YAML file with extra field aliases")
	verbose      = flag.Bool("verbose", false, "Enable debug logging")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *help {
		printHelp()
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(pdfPath string) error {
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", pdfPath, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	aliases := sheet.DefaultAliasTable()
	if *aliasOverlay != "" {
		if err := aliases.MergeOverlayFile(*aliasOverlay); err != nil {
			return fmt.Errorf("load alias overlay: %w", err)
		}
	}

	pipe, err := pipeline.New(logger, aliases)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	rec, err := pipe.Run(context.Background(), pdfBytes)
	if err != nil {
		return fmt.Errorf("extract sheet: %w", err)
	}

	switch *outputFormat {
	case "json":
		return outputJSON(rec)
	case "text":
		return outputText(os.Stdout, rec)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(rec *sheet.Record) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rec)
}

func outputText(w io.Writer, rec *sheet.Record) error {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)
	missing := color.New(color.Faint)

	header.Fprintln(w, "Identity")
	printField(w, label, missing, "Name", rec.CharacterName)
	printField(w, label, missing, "Class & Level", rec.ClassLevel)
	printField(w, label, missing, "Race", rec.Race)
	printField(w, label, missing, "Background", rec.Background)
	printField(w, label, missing, "Alignment", rec.Alignment)
	fmt.Fprintln(w)

	header.Fprintln(w, "Combat")
	printField(w, label, missing, "AC", rec.AC)
	printField(w, label, missing, "Max HP", rec.MaxHP)
	printField(w, label, missing, "Current HP", rec.CurrentHP)
	printField(w, label, missing, "Speed", rec.Speed)
	printField(w, label, missing, "Initiative", rec.Initiative)
	fmt.Fprintln(w)

	if len(rec.AbilityScores) > 0 {
		header.Fprintln(w, "Ability Scores")
		for _, name := range []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"} {
			if score, ok := rec.AbilityScores[name]; ok {
				printField(w, label, missing, name, score)
			}
		}
		fmt.Fprintln(w)
	}

	if len(rec.Skills) > 0 {
		header.Fprintf(w, "Skills (%d)\n", len(rec.Skills))
		fmt.Fprintln(w)
	}
	if len(rec.Spells) > 0 || len(rec.Cantrips) > 0 {
		header.Fprintln(w, "Spellcasting")
		printField(w, label, missing, "Ability", string(rec.SpellcastingAbility))
		fmt.Fprintf(w, "  %s: %d  %s: %d\n", label.Sprint("Cantrips"), len(rec.Cantrips), label.Sprint("Spells"), len(rec.Spells))
		fmt.Fprintln(w)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	header.Fprintln(w, "Full record")
	fmt.Fprintln(w, string(data))
	return nil
}

func printField(w io.Writer, label, missing *color.Color, name, value string) {
	if value == "" {
		fmt.Fprintf(w, "  %s: %s\n", label.Sprint(name), missing.Sprint("(not found)"))
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label.Sprint(name), value)
}

func printHelp() {
	fmt.Println("Sheet Extract - extract a character record from a fillable sheet PDF")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format    Output format: text (default), json")
	fmt.Println("  -aliases   Optional YAML file with extra field aliases")
	fmt.Println("  -verbose   Enable debug logging")
	fmt.Println("  -help      Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  sheet_extract character.pdf")
	fmt.Println("  sheet_extract -format json character.pdf")
	fmt.Println("  sheet_extract -aliases extra.yaml character.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  sheet_extract [OPTIONS] <pdf_file>")
}
